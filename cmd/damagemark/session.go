package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/example/damagemark/internal/canvas"
	"github.com/example/damagemark/internal/clipboard"
	"github.com/example/damagemark/internal/config"
	"github.com/example/damagemark/internal/device"
	"github.com/example/damagemark/internal/editor"
	"github.com/example/damagemark/internal/imagesource"
	"github.com/example/damagemark/internal/store"
	"github.com/example/damagemark/internal/toolkit"
	"github.com/example/damagemark/internal/upload"
)

// largest photo kept at full resolution
const (
	maxPhotoWidth  = 4096
	maxPhotoHeight = 4096
)

// sessionOptions describe the surface a subcommand works on.
type sessionOptions struct {
	editing     bool
	windowWidth int
	userAgent   string
	submitter   upload.Submitter
}

func (r *root) cfg() *config.Config {
	if r == nil || r.config == nil {
		return config.New()
	}
	return r.config
}

func (r *root) log() *slog.Logger {
	if r == nil || r.logger == nil {
		return slog.Default()
	}
	return r.logger
}

func (r *root) openStore() (*store.Store, error) {
	path := ""
	if r != nil {
		path = r.storePath
	}
	if path == "" {
		path = config.DefaultStorePath()
	}
	if path != store.MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	st, err := store.Open(path, r.log())
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	return st, nil
}

func (r *root) loadToolkit() (*toolkit.Toolkit, error) {
	path := r.cfg().Toolkit
	if path == "" {
		return toolkit.Default(), nil
	}
	tk, err := toolkit.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("toolkit %s: %w", path, err)
	}
	return tk, nil
}

// category returns the configured device class, or classifies userAgent at
// width when the configuration leaves it to auto detection.
func (r *root) category(userAgent string, width int) (device.Category, error) {
	cfg := r.cfg()
	if cfg.Device != "" && cfg.Device != "auto" {
		return device.ParseCategory(cfg.Device)
	}
	rule, err := device.ParseRule(cfg.DeviceRule)
	if err != nil {
		return device.Desktop, err
	}
	if width <= 0 {
		if w, err := device.DisplayWidth(); err == nil {
			width = w
		} else {
			r.log().Debug("display width unavailable", "err", err)
			return device.Desktop, nil
		}
	}
	return device.Classify(userAgent, width, rule), nil
}

func (r *root) submitter(url string) upload.Submitter {
	if url == "" {
		url = r.cfg().UploadURL
	}
	if url == "" {
		return upload.Nop{}
	}
	return upload.NewHTTP(url, upload.WithLogger(r.log()))
}

func (r *root) imageLoader() *imagesource.Loader {
	return imagesource.New(
		imagesource.WithLogger(r.log()),
		imagesource.WithClipboard(clipboard.ReadImageData),
		imagesource.WithClipboardText(clipboard.ReadText),
		imagesource.WithMaxSize(maxPhotoWidth, maxPhotoHeight),
	)
}

// newSurface builds an editor over st and loads src with the stored
// annotations. An empty src reuses the photo the stored document names.
func (r *root) newSurface(ctx context.Context, st *store.Store, src string, opts sessionOptions) (*editor.Surface, error) {
	cfg := r.cfg()
	if cfg.Font != "" {
		if err := canvas.LoadFont(cfg.Font); err != nil {
			return nil, fmt.Errorf("font %s: %w", cfg.Font, err)
		}
	}
	tk, err := r.loadToolkit()
	if err != nil {
		return nil, err
	}
	cat, err := r.category(opts.userAgent, opts.windowWidth)
	if err != nil {
		return nil, err
	}
	sub := opts.submitter
	if sub == nil {
		sub = upload.Nop{}
	}
	s := editor.New(
		editor.WithToolkit(tk),
		editor.WithImageLoader(r.imageLoader()),
		editor.WithStore(st),
		editor.WithSubmitter(sub),
		editor.WithLogger(r.log()),
		editor.WithDevice(cat),
		editor.WithWindowWidth(opts.windowWidth),
		editor.WithEditing(opts.editing),
		editor.WithDoubleClickWindow(time.Duration(cfg.Editor.DoubleClickMS)*time.Millisecond),
		editor.WithZoomFactor(cfg.Editor.ZoomFactor),
		editor.WithJPEGQuality(cfg.JPEGQuality),
	)
	if src == "" {
		src = cfg.Image
	}
	if err := s.LoadSaved(ctx, src); err != nil {
		return nil, err
	}
	return s, nil
}
