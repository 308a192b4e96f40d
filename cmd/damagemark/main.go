package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/gg"

	"github.com/example/damagemark/internal/config"
	"github.com/example/damagemark/internal/notify"
	"github.com/example/damagemark/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs           *flag.FlagSet
	program      string
	notifier     *notify.Notifier
	config       *config.Config
	logger       *slog.Logger
	saveAlerts   bool
	exportAlerts bool
	copyAlerts   bool
	themeName    string
	storePath    string
	verbose      bool
	activeTheme  *theme.Theme
}

func (r *root) Program() string {
	return r.program
}

func (r *root) subcommand(name string) *root {
	if r == nil {
		return &root{program: "damagemark " + name}
	}
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &root{
		program:      program,
		notifier:     r.notifier,
		config:       r.config,
		logger:       r.logger,
		saveAlerts:   r.saveAlerts,
		exportAlerts: r.exportAlerts,
		copyAlerts:   r.copyAlerts,
		themeName:    r.themeName,
		storePath:    r.storePath,
		verbose:      r.verbose,
		activeTheme:  r.activeTheme,
	}
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	// Precedence: CLI > Env > Config > Default
	cfg.ApplyEnv(os.Getenv)

	r := &root{
		fs:       flag.NewFlagSet("damagemark", flag.ExitOnError),
		program:  "damagemark",
		notifier: notify.New(notify.LoadPreferences(os.Getenv)),
		config:   cfg,
	}
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving annotations")
	r.fs.BoolVar(&r.exportAlerts, "notify-export", cfg.Notify.Export, "show a desktop notification after exporting a rendering")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.StringVar(&r.themeName, "theme", cfg.Theme, "color theme to use (default, dark, high_contrast, hotdog)")
	r.fs.StringVar(&r.storePath, "store", cfg.Store, "annotation database (default "+config.DefaultStorePath()+")")
	r.fs.BoolVar(&r.verbose, "v", false, "log debug output")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	r.notifier.Configure(config.Notify{Save: r.saveAlerts, Export: r.exportAlerts, Copy: r.copyAlerts})
	r.logger = newLogger(r.verbose)
	slog.SetDefault(r.logger)
	gg.SetLogger(r.logger)
	r.notifier.WithLogger(r.logger)

	r.config.Theme = r.themeName
	t, err := r.config.ResolveTheme(theme.NewLoader())
	if err != nil {
		if r.themeName != "" && r.themeName != "default" {
			fmt.Fprintf(os.Stderr, "warning: failed to load theme '%s': %v. using default.\n", r.themeName, err)
		}
		t = theme.Default()
	}
	r.activeTheme = t

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var cmd runnable
	switch cmdName {
	case "annotate":
		cmd, err = parseAnnotateCmd(subArgs, r)
	case "draw":
		cmd, err = parseDrawCmd(subArgs, r)
	case "render":
		cmd, err = parseRenderCmd(subArgs, r)
	case "submit":
		cmd, err = parseSubmitCmd(subArgs, r)
	case "serve":
		cmd, err = parseServeCmd(subArgs, r)
	case "classify":
		cmd, err = parseClassifyCmd(subArgs, r)
	case "tags":
		cmd, err = parseTagsCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{root: r.subcommand("version")}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	log.SetFlags(0)
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
