package appstate

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/damagemark/internal/editor"
	"github.com/example/damagemark/internal/notify"
	"github.com/example/damagemark/internal/render"
	"github.com/example/damagemark/internal/theme"
)

const (
	defaultWidth  = 1113
	defaultHeight = 860
)

// AppState holds application configuration for the UI.
type AppState struct {
	surface  *editor.Surface
	theme    *theme.Theme
	notifier *notify.Notifier
	logger   *slog.Logger
	output   string
	format   render.Format
	width    int
	height   int

	updateCh chan struct{}

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithTheme sets the window colours.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.theme = t } }

// WithNotifier sends desktop notifications after saving, exporting and copying.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.notifier = n } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(a *AppState) { a.logger = l } }

// WithOutput sets the file written by the export action.
func WithOutput(out string) Option { return func(a *AppState) { a.output = out } }

// WithFormat sets the export image format.
func WithFormat(f render.Format) Option { return func(a *AppState) { a.format = f } }

// WithWindowSize sets the initial window size in pixels.
func WithWindowSize(w, h int) Option {
	return func(a *AppState) {
		if w > 0 && h > 0 {
			a.width, a.height = w, h
		}
	}
}

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState around s.
func New(s *editor.Surface, opts ...Option) *AppState {
	a := &AppState{
		surface:  s,
		theme:    theme.Default(),
		logger:   slog.Default(),
		output:   editor.DownloadName,
		format:   render.JPEG,
		width:    defaultWidth,
		height:   defaultHeight,
		updateCh: make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// NotifyChanged requests a repaint of the UI after the canvas changed
// outside the event loop.
func (a *AppState) NotifyChanged() {
	if a.updateCh == nil {
		return
	}
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

func (a *AppState) Main(s screen.Screen) {
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: a.width, Height: a.height, Title: "Damagemark"})
	if err != nil {
		a.logger.Error("new window", "error", err)
		return
	}
	defer w.Release()
	defer a.notifyClose()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-a.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()
	unsubscribe := a.surface.Loading().Subscribe(func(bool) { a.NotifyChanged() })
	defer unsubscribe()

	c := newController(ctx, a)
	c.resize(a.width, a.height)

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			pctx, pcancel := context.WithCancel(ctx)
			paintMu.Lock()
			paintCancel = pcancel
			paintMu.Unlock()
			drawFrame(pctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if pctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			pcancel()
		}
	}()
	stopPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPaint()
				return
			}
		case size.Event:
			if e.WidthPx > 0 && e.HeightPx > 0 {
				c.resize(e.WidthPx, e.HeightPx)
			}
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := c.snapshot()
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			if c.mouse(e) {
				w.Send(paint.Event{})
			}
		case key.Event:
			if c.key(e) {
				w.Send(paint.Event{})
			}
		case error:
			a.logger.Error("window", "error", e)
		}
		if c.quit {
			stopPaint()
			return
		}
	}
}
