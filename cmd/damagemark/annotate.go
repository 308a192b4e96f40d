package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/example/damagemark/internal/appstate"
	"github.com/example/damagemark/internal/config"
	"github.com/example/damagemark/internal/editor"
	"github.com/example/damagemark/internal/render"
)

// annotateCmd opens the annotation window.
type annotateCmd struct {
	image  string
	output string
	format string
	view   bool
	width  int
	height int
	upload string
	*root
	fs *flag.FlagSet
}

func (a *annotateCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	fs := flag.NewFlagSet("annotate", flag.ExitOnError)
	a := &annotateCmd{root: r.subcommand("annotate"), fs: fs}
	fs.Usage = usageFunc(a)
	fs.StringVar(&a.image, "image", "", "photo to annotate: path, http(s) URL, data: URL or clipboard:")
	fs.StringVar(&a.output, "output", editor.DownloadName, "file written by the export action")
	fs.StringVar(&a.format, "format", "", "export format (jpeg, png, webp); defaults to the output extension")
	fs.BoolVar(&a.view, "view", false, "open read-only; press e to start editing")
	fs.IntVar(&a.width, "width", 1113, "window width in pixels")
	fs.IntVar(&a.height, "height", 860, "window height in pixels")
	fs.StringVar(&a.upload, "upload-url", "", "endpoint receiving saved annotations (overrides upload_url)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		a.image = fs.Arg(0)
	}
	if a.width <= 0 || a.height <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %dx%d", a.width, a.height)
	}
	return a, nil
}

func (a *annotateCmd) Run() error {
	format, err := exportFormat(a.cfg(), a.output, a.format)
	if err != nil {
		return err
	}
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	s, err := a.newSurface(ctx, st, a.image, sessionOptions{
		editing:     !a.view,
		windowWidth: a.width,
		submitter:   a.submitter(a.upload),
	})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", describeSource(a.image, a.cfg().Image), err)
	}
	state := appstate.New(s,
		appstate.WithTheme(a.activeTheme),
		appstate.WithNotifier(a.notifier),
		appstate.WithLogger(a.log()),
		appstate.WithOutput(a.output),
		appstate.WithFormat(format),
		appstate.WithWindowSize(a.width, a.height),
	)
	state.Run()
	return nil
}

func describeSource(src, fallback string) string {
	switch {
	case src != "":
		return src
	case fallback != "":
		return fallback
	}
	return "the saved annotations"
}

// exportFormat picks the explicit format, then the output extension, then
// the configured default.
func exportFormat(cfg *config.Config, output, explicit string) (render.Format, error) {
	if explicit != "" {
		return render.ParseFormat(explicit)
	}
	def, err := render.ParseFormat(cfg.Format)
	if err != nil {
		return "", err
	}
	return render.FormatFor(output, def), nil
}
