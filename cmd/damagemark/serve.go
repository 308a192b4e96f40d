package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/damagemark/internal/server"
)

// serveCmd runs the submission server.
type serveCmd struct {
	listen    string
	maxUpload int
	*root
	fs *flag.FlagSet
}

func (c *serveCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseServeCmd(args []string, r *root) (*serveCmd, error) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	c := &serveCmd{root: r.subcommand("serve"), fs: fs}
	fs.Usage = usageFunc(c)
	cfg := c.cfg()
	fs.StringVar(&c.listen, "listen", cfg.Server.Listen, "address to listen on")
	fs.IntVar(&c.maxUpload, "max-upload-mb", cfg.Server.MaxUploadMB, "largest accepted submission in megabytes")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	if c.maxUpload <= 0 {
		return nil, fmt.Errorf("-max-upload-mb must be positive")
	}
	return c, nil
}

func (c *serveCmd) Run() error {
	st, err := c.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	srv := server.New(st,
		server.WithLogger(c.log()),
		server.WithMaxUploadMB(c.maxUpload),
	)
	return srv.ListenAndServe(ctx, c.listen)
}
