package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/example/damagemark/internal/editor"
)

// tagsCmd lists the palette, the damage tags and the sub-tools.
type tagsCmd struct {
	out io.Writer
	*root
	fs *flag.FlagSet
}

func (c *tagsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseTagsCmd(args []string, r *root) (*tagsCmd, error) {
	fs := flag.NewFlagSet("tags", flag.ExitOnError)
	c := &tagsCmd{root: r.subcommand("tags"), fs: fs, out: os.Stdout}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *tagsCmd) Run() error {
	tk, err := c.loadToolkit()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "colors:")
	initial := tk.Initial()
	for _, col := range tk.Palette {
		marker := " "
		if col.Hex == initial {
			marker = "*"
		}
		fmt.Fprintf(c.out, "%s %-8s %s (text %s)\n", marker, col.Name, col.Hex, tk.ContrastText(col.Hex))
	}
	fmt.Fprintln(c.out, "tags:")
	for i, tag := range tk.Tags {
		fmt.Fprintf(c.out, "  tag-%d  %s\n", i+1, tag)
	}
	fmt.Fprintln(c.out, "tools:")
	for _, name := range editor.New(editor.WithToolkit(tk)).ToolNames() {
		fmt.Fprintf(c.out, "  %s\n", name)
	}
	return nil
}
