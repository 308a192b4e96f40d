package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/example/damagemark/internal/device"
)

// classifyCmd prints the layout class for a user agent and width.
type classifyCmd struct {
	userAgent string
	width     int
	rule      string
	detail    bool
	out       io.Writer
	*root
	fs *flag.FlagSet
}

func (c *classifyCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseClassifyCmd(args []string, r *root) (*classifyCmd, error) {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	c := &classifyCmd{root: r.subcommand("classify"), fs: fs, out: os.Stdout}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.userAgent, "user-agent", "", "user agent string to classify")
	fs.IntVar(&c.width, "width", 0, "viewport width in pixels (defaults to the primary display)")
	fs.StringVar(&c.rule, "rule", c.cfg().DeviceRule, "wide-screen rule: width (default) or ua")
	fs.BoolVar(&c.detail, "detail", false, "also print the parsed device kind")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 && c.userAgent == "" {
		c.userAgent = fs.Arg(0)
	}
	return c, nil
}

func (c *classifyCmd) Run() error {
	rule, err := device.ParseRule(c.rule)
	if err != nil {
		return err
	}
	width := c.width
	if width <= 0 {
		w, err := device.DisplayWidth()
		if err != nil {
			return fmt.Errorf("no -width given and the display width is unknown: %w", err)
		}
		width = w
	}
	cat := device.Classify(c.userAgent, width, rule)
	if c.detail {
		kind := device.ParseKind(c.userAgent)
		if kind == device.KindUnknown {
			kind = "unknown"
		}
		fmt.Fprintf(c.out, "%s\twidth=%d kind=%s rule=%s\n", cat, width, kind, rule)
		return nil
	}
	fmt.Fprintln(c.out, cat)
	return nil
}
