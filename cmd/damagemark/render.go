package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/example/damagemark/internal/clipboard"
	"github.com/example/damagemark/internal/editor"
	"github.com/example/damagemark/internal/render"
)

// copyImageFn is swapped out by tests.
var copyImageFn = clipboard.WriteImageData

// renderCmd writes the annotated photo to a file.
type renderCmd struct {
	image       string
	output      string
	format      string
	stdout      bool
	toClipboard bool
	out         io.Writer
	*root
	fs *flag.FlagSet
}

func (c *renderCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	c := &renderCmd{root: r.subcommand("render"), fs: fs, out: os.Stdout}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.image, "image", "", "photo the annotations belong to (defaults to the stored one)")
	fs.StringVar(&c.output, "output", editor.DownloadName, "output file path")
	fs.StringVar(&c.format, "format", "", "image format (jpeg, png, webp); defaults to the output extension")
	fs.BoolVar(&c.stdout, "stdout", false, "write the image to standard output")
	fs.BoolVar(&c.toClipboard, "to-clipboard", false, "copy the rendering to the clipboard as PNG")
	fs.BoolVar(&c.toClipboard, "to-clip", false, "copy the rendering to the clipboard (alias)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	if c.stdout && c.toClipboard {
		return nil, fmt.Errorf("-stdout cannot be combined with -to-clipboard")
	}
	return c, nil
}

func (c *renderCmd) Run() error {
	format, err := exportFormat(c.cfg(), c.output, c.format)
	if err != nil {
		return err
	}
	if c.toClipboard {
		format = render.PNG
	}
	st, err := c.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	s, err := c.newSurface(context.Background(), st, c.image, sessionOptions{})
	if err != nil {
		return fmt.Errorf("failed to open annotations: %w", err)
	}

	var buf bytes.Buffer
	if err := s.Export(&buf, format); err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}
	switch {
	case c.stdout:
		_, err = c.out.Write(buf.Bytes())
		return err
	case c.toClipboard:
		if err := copyImageFn(buf.Bytes()); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		c.notifier.Copy("rendering")
		fmt.Fprintln(os.Stderr, "rendering copied to clipboard")
		return nil
	}
	if err := os.WriteFile(c.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.output, err)
	}
	c.notifier.Export(c.output)
	fmt.Fprintf(os.Stderr, "saved to %s\n", c.output)
	return nil
}
