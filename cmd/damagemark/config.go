package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/example/damagemark/internal/config"
)

type configCmd struct {
	*root
	fs  *flag.FlagSet
	out io.Writer
}

func (c *configCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	c := &configCmd{root: r.subcommand("config"), fs: fs, out: os.Stdout}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *configCmd) Run() error {
	args := c.fs.Args()
	if len(args) < 1 {
		return &UsageError{of: c}
	}

	switch args[0] {
	case "print":
		return c.runPrint()
	case "save":
		return c.runSave()
	case "path":
		return c.runPath()
	default:
		return fmt.Errorf("unknown config command: %s", args[0])
	}
}

func (c *configCmd) runPrint() error {
	_, err := io.WriteString(c.out, c.cfg().String())
	return err
}

func (c *configCmd) runSave() error {
	// Save next to the loaded file, or to the XDG location for a first save.
	path := config.NewLoader(version, configPathOverride).GetConfigPath()
	if path == "" {
		path = config.DefaultPath()
	}
	if err := config.Save(c.cfg(), path); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Configuration saved to %s\n", path)
	return nil
}

func (c *configCmd) runPath() error {
	path := config.NewLoader(version, configPathOverride).GetConfigPath()
	if path == "" {
		fmt.Fprintf(c.out, "%s (not created)\n", config.DefaultPath())
		return nil
	}
	fmt.Fprintln(c.out, path)
	return nil
}
