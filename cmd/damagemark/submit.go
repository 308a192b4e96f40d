package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/example/damagemark/internal/editor"
	"github.com/example/damagemark/internal/upload"
)

// submitCmd sends the stored annotations and their rendering to the upload
// endpoint.
type submitCmd struct {
	image string
	url   string
	local bool
	*root
	fs *flag.FlagSet
}

func (c *submitCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseSubmitCmd(args []string, r *root) (*submitCmd, error) {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	c := &submitCmd{root: r.subcommand("submit"), fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.image, "image", "", "photo the annotations belong to (defaults to the stored one)")
	fs.StringVar(&c.url, "url", "", "endpoint receiving the submission (overrides upload_url)")
	fs.BoolVar(&c.local, "local", false, "record the submission in the local store instead of posting it")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	if c.local && c.url != "" {
		return nil, fmt.Errorf("-local cannot be combined with -url")
	}
	return c, nil
}

func (c *submitCmd) Run() error {
	st, err := c.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var sub upload.Submitter
	switch {
	case c.local:
		sub = upload.StoreSubmitter{Store: st}
	case c.url == "" && c.cfg().UploadURL == "":
		return fmt.Errorf("no upload endpoint: set upload_url, DAMAGEMARK_UPLOAD_URL or -url, or use -local")
	default:
		sub = c.submitter(c.url)
	}

	ctx := context.Background()
	s, err := c.newSurface(ctx, st, c.image, sessionOptions{submitter: sub})
	if err != nil {
		return fmt.Errorf("failed to open annotations: %w", err)
	}
	if err := s.Save(ctx); err != nil {
		return fmt.Errorf("failed to submit annotations: %w", err)
	}
	c.notifier.Save(editor.ImageName, nil)
	fmt.Fprintf(os.Stderr, "submitted %d annotation(s)\n", s.Canvas().Len())
	return nil
}
