// Package editor drives one annotation canvas: it loads the photo and any
// saved annotations, handles selection, text editing, colour, stacking, pan
// and zoom, and saves the result.
//
// A Surface is not safe for concurrent use. The window front end and the CLI
// drive it from a single goroutine; only the loading flag it exposes may be
// observed from elsewhere.
package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/example/damagemark/internal/canvas"
	"github.com/example/damagemark/internal/device"
	"github.com/example/damagemark/internal/loading"
	"github.com/example/damagemark/internal/toolkit"
	"github.com/example/damagemark/internal/upload"
)

// ErrNoCanvas is returned by operations that need a loaded photo.
var ErrNoCanvas = errors.New("editor: no canvas loaded")

const (
	// StorageKey is the key under which the document is kept locally.
	StorageKey = "damage"
	// ImageName is the file name of the submitted rendering.
	ImageName = "canvas_image.jpeg"
	// DownloadName is the suggested name for exported renderings.
	DownloadName = "canvas-image.jpeg"

	desktopChrome = 113
	touchChrome   = 303
	// CompactWidth is the window width below which handles grow for touch.
	CompactWidth = 900
)

// ImageLoader fetches the photo being annotated.
type ImageLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// Store is the local key-value storage holding the last saved document.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Surface owns one canvas and the editing state around it.
type Surface struct {
	canvas    *canvas.Canvas
	kit       *toolkit.Toolkit
	loading   *loading.Flag
	loader    ImageLoader
	store     Store
	submitter upload.Submitter
	logger    *slog.Logger

	category    device.Category
	windowWidth int
	editing     bool
	src         string

	groupEditing bool
	textEditing  *canvas.Object
	editPair     *canvas.Object
	editGroup    groupIdentity
	selectAll    bool

	selectedColor string
	zoomFactor    float64
	zoomPercent   int
	zoomPoint     canvas.Point
	clicks        *clickDetector
	quality       int

	onLoaded         func(bool)
	onEditingChanged func(bool)
	onZoomChanged    func(float64)
}

// Option configures a Surface.
type Option func(*Surface)

// WithToolkit replaces the built-in palette and tags.
func WithToolkit(tk *toolkit.Toolkit) Option { return func(s *Surface) { s.kit = tk } }

// WithLoading shares a loading flag with the caller.
func WithLoading(f *loading.Flag) Option { return func(s *Surface) { s.loading = f } }

// WithImageLoader sets how photos are fetched.
func WithImageLoader(l ImageLoader) Option { return func(s *Surface) { s.loader = l } }

// WithStore sets the local document storage.
func WithStore(st Store) Option { return func(s *Surface) { s.store = st } }

// WithSubmitter sets the collaborator that receives saved annotations.
func WithSubmitter(sub upload.Submitter) Option { return func(s *Surface) { s.submitter = sub } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(s *Surface) { s.logger = l } }

// WithDevice sets the device category of the host.
func WithDevice(c device.Category) Option { return func(s *Surface) { s.category = c } }

// WithWindowWidth sets the window width used for layout.
func WithWindowWidth(w int) Option { return func(s *Surface) { s.windowWidth = w } }

// WithEditing starts the surface in editing mode.
func WithEditing(v bool) Option { return func(s *Surface) { s.editing = v } }

// WithOnLoaded registers a callback fired after Init succeeds.
func WithOnLoaded(fn func(bool)) Option { return func(s *Surface) { s.onLoaded = fn } }

// WithOnEditingChanged registers a callback fired when editing mode toggles.
func WithOnEditingChanged(fn func(bool)) Option {
	return func(s *Surface) { s.onEditingChanged = fn }
}

// WithOnZoomChanged registers a callback fired with the new zoom on desktop.
func WithOnZoomChanged(fn func(float64)) Option { return func(s *Surface) { s.onZoomChanged = fn } }

// WithClock replaces the time source of the double-click detector.
func WithClock(now func() time.Time) Option { return func(s *Surface) { s.clicks.now = now } }

// WithDoubleClickWindow sets how long a first click stays armed.
func WithDoubleClickWindow(d time.Duration) Option {
	return func(s *Surface) {
		if d > 0 {
			s.clicks.window = d
		}
	}
}

// WithZoomFactor sets the scale given to new objects at zoom 1.
func WithZoomFactor(f float64) Option {
	return func(s *Surface) {
		if f > 0 {
			s.zoomFactor = f
		}
	}
}

// WithJPEGQuality sets the quality of saved renderings.
func WithJPEGQuality(q int) Option {
	return func(s *Surface) {
		if q > 0 && q <= 100 {
			s.quality = q
		}
	}
}

// New returns a Surface with no photo loaded.
func New(opts ...Option) *Surface {
	s := &Surface{
		category:    device.Desktop,
		zoomPercent: 100,
		clicks:      newClickDetector(),
		quality:     92,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.kit == nil {
		s.kit = toolkit.Default()
	}
	if s.loading == nil {
		s.loading = loading.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.submitter == nil {
		s.submitter = upload.Nop{}
	}
	if s.zoomFactor == 0 {
		s.zoomFactor = s.kit.ZoomFactor
	}
	s.selectedColor = s.kit.Initial()
	return s
}

// Canvas returns the loaded canvas or nil.
func (s *Surface) Canvas() *canvas.Canvas { return s.canvas }

// Loading returns the flag raised while saving.
func (s *Surface) Loading() *loading.Flag { return s.loading }

// Toolkit returns the palette and tags in use.
func (s *Surface) Toolkit() *toolkit.Toolkit { return s.kit }

// Desktop reports whether the host is a desktop.
func (s *Surface) Desktop() bool { return s.category == device.Desktop }

// Editing reports whether objects can be manipulated.
func (s *Surface) Editing() bool { return s.editing }

// GroupEditing reports whether a tag or text group is opened for editing.
func (s *Surface) GroupEditing() bool { return s.groupEditing }

// TextEditing returns the text object being edited or nil.
func (s *Surface) TextEditing() *canvas.Object { return s.textEditing }

// SelectedColor is the colour given to the next new object.
func (s *Surface) SelectedColor() string { return s.selectedColor }

// Compact reports whether handles use the large touch layout.
func (s *Surface) Compact() bool {
	return s.category.Touch() || (s.windowWidth > 0 && s.windowWidth < CompactWidth)
}

// ControlLayout returns the handle geometry for the current device.
func (s *Surface) ControlLayout() canvas.ControlLayout {
	if s.Compact() {
		return canvas.TouchControls
	}
	return canvas.DesktopControls
}

// Init loads the photo at src and either the annotations in doc or a blank
// canvas. Any previous canvas is discarded.
func (s *Surface) Init(ctx context.Context, src string, doc *canvas.Document) error {
	if s.loader == nil {
		return fmt.Errorf("init %s: no image loader", src)
	}
	img, err := s.loader.Load(ctx, src)
	if err != nil {
		return fmt.Errorf("load image %s: %w", src, err)
	}
	b := img.Bounds()
	c := canvas.New(float64(b.Dx()), float64(b.Dy()))
	c.SetBackgroundImage(src, img)
	if doc != nil && len(doc.Objects) > 0 {
		if err := c.Load(doc); err != nil {
			return fmt.Errorf("load annotations: %w", err)
		}
		c.Background.Image = img
		for _, o := range c.Objects() {
			s.configureLoaded(o)
		}
	}
	s.canvas = c
	s.src = src
	s.groupEditing = false
	s.textEditing = nil
	s.editPair = nil
	s.editGroup = groupIdentity{}
	s.selectAll = false
	s.clicks.reset()
	s.logger.Debug("canvas loaded", "src", src, "width", c.Width, "height", c.Height, "objects", c.Len())
	if s.windowWidth > 0 {
		s.Resize(s.windowWidth)
	} else {
		s.ResetZoom()
	}
	if s.onLoaded != nil {
		s.onLoaded(true)
	}
	return nil
}

// LoadSaved initialises the surface from src and the document kept in the
// store, falling back to a blank canvas when nothing was saved.
func (s *Surface) LoadSaved(ctx context.Context, src string) error {
	doc, err := s.storedDocument(ctx)
	if err != nil {
		return err
	}
	if src == "" && doc != nil && doc.Background != nil {
		src = doc.Background.Src
	}
	return s.Init(ctx, src, doc)
}

// Cancel drops unsaved changes by reloading the last stored document over the
// current photo.
func (s *Surface) Cancel(ctx context.Context) error {
	if s.canvas == nil {
		return ErrNoCanvas
	}
	s.EndTextEdit()
	doc, err := s.storedDocument(ctx)
	if err != nil {
		return err
	}
	if doc == nil {
		doc = &canvas.Document{Version: canvas.DocumentVersion}
	}
	if err := s.canvas.Load(doc); err != nil {
		return fmt.Errorf("reload annotations: %w", err)
	}
	for _, o := range s.canvas.Objects() {
		s.configureLoaded(o)
	}
	s.ResetZoom()
	return nil
}

// SetEditing toggles whether objects respond to the pointer. Entering
// editing on a desktop re-lays out the canvas.
func (s *Surface) SetEditing(v bool) {
	if s.editing == v {
		return
	}
	if !v {
		s.EndTextEdit()
	}
	s.editing = v
	if s.canvas != nil {
		interactive := s.interactive()
		for _, o := range s.canvas.Objects() {
			o.Selectable = interactive
			o.Evented = interactive
		}
		if !interactive {
			s.canvas.DiscardActive()
		}
		if v && s.Desktop() && s.windowWidth > 0 {
			s.Resize(s.windowWidth)
		}
	}
	if s.onEditingChanged != nil {
		s.onEditingChanged(v)
	}
}

func (s *Surface) interactive() bool { return s.editing || !s.Desktop() }

// selectionStyle is the decoration given to every top-level object.
func (s *Surface) selectionStyle() canvas.SelectionStyle {
	corner := 30.0
	if s.windowWidth > 0 && s.windowWidth < CompactWidth {
		corner = 80
	}
	return canvas.SelectionStyle{
		CornerSize:        corner,
		Padding:           60,
		BorderColor:       colorCyan,
		CornerColor:       colorWhite,
		BorderScaleFactor: 3,
		BorderDash:        []float64{5},
	}
}

// controlsFor returns handle visibility: corners and rotation shown, middle
// handles only on rectangles.
func controlsFor(o *canvas.Object) map[canvas.Control]bool {
	middle := o.Type == canvas.TypeRect
	return map[canvas.Control]bool{
		canvas.ControlTL:     true,
		canvas.ControlTR:     true,
		canvas.ControlBL:     true,
		canvas.ControlBR:     true,
		canvas.ControlMT:     middle,
		canvas.ControlMB:     middle,
		canvas.ControlML:     middle,
		canvas.ControlMR:     middle,
		canvas.ControlRotate: true,
		canvas.ControlDelete: true,
	}
}

func (s *Surface) configure(o *canvas.Object) {
	o.Style = s.selectionStyle()
	o.Controls = controlsFor(o)
}

func (s *Surface) configureLoaded(o *canvas.Object) {
	s.configure(o)
	o.LockScalingFlip = o.Type != canvas.TypePath
	o.Selectable = s.interactive()
	o.Evented = s.interactive()
}

const (
	colorCyan  = "#01FFD7"
	colorWhite = "#FFFFFF"
)
