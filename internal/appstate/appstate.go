// Package appstate runs the desktop window around an editor.Surface.
package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"
	"time"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/mobile/event/key"

	"github.com/example/damagemark/assets"
	"github.com/example/damagemark/internal/render"
	"github.com/example/damagemark/internal/theme"
	"github.com/example/damagemark/internal/toolkit"
)

const (
	tabHeight    = 24
	bottomHeight = 24
	buttonHeight = 28
	iconSize     = 20
	swatchSize   = 18
	swatchGap    = 4
)

var toolbarWidth = 104

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

// messageDuration is how long a status message stays on screen.
const messageDuration = 2 * time.Second

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
	StateDisabled
)

// Button represents an interactive UI element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton wraps another Button and caches its rendered states.
// It delegates all interface methods to the wrapped Button while
// caching the result of Draw for each state.
type CacheButton struct {
	Button
	cache [4]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	if cb.cache[state] == nil {
		rect := cb.Button.Rect()
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Src)
}

func (cb *CacheButton) Rect() image.Rectangle { return cb.Button.Rect() }

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [4]*image.RGBA{}
	}
}

func (cb *CacheButton) Activate() { cb.Button.Activate() }

// buttonColors picks the fill and text colour for state.
func buttonColors(th *theme.Theme, state ButtonState) (fill, text color.RGBA) {
	switch state {
	case StateHover:
		return th.ButtonBackgroundHover, th.ButtonText
	case StatePressed:
		return th.ButtonBackgroundActive, th.ButtonText
	case StateDisabled:
		return th.ButtonBackground, th.ButtonTextDisabled
	}
	return th.ButtonBackground, th.ButtonText
}

// Shortcut is a clickable hint in the bottom bar.
type Shortcut struct {
	label  string
	action func()
	rect   image.Rectangle
	theme  *theme.Theme
}

func (s *Shortcut) Draw(dst *image.RGBA, state ButtonState) {
	fill, text := buttonColors(s.theme, state)
	draw.Draw(dst, s.rect, &image.Uniform{fill}, image.Point{}, draw.Src)
	drawRect(dst, s.rect, s.theme.ButtonBorder, 1)
	drawLabel(dst, s.rect.Min.X+2, s.rect.Min.Y+14, s.label, text)
}

func (s *Shortcut) Rect() image.Rectangle { return s.rect }

func (s *Shortcut) SetRect(r image.Rectangle) {
	if r != s.rect {
		s.rect = r
	}
}

func (s *Shortcut) Activate() {
	if s.action != nil {
		s.action()
	}
}

// ToolButton adds one sub-tool to the canvas. The icon previews the shape
// in the selected colour.
type ToolButton struct {
	label string
	tool  string
	icon  *image.RGBA
	rect  image.Rectangle
	theme *theme.Theme
	// onSelect is called when the button is activated.
	onSelect func()
}

func (tb *ToolButton) Draw(dst *image.RGBA, state ButtonState) {
	fill, text := buttonColors(tb.theme, state)
	draw.Draw(dst, tb.rect, &image.Uniform{fill}, image.Point{}, draw.Src)
	x := tb.rect.Min.X + 4
	if tb.icon != nil {
		top := tb.rect.Min.Y + (tb.rect.Dy()-iconSize)/2
		ir := image.Rect(x, top, x+iconSize, top+iconSize)
		draw.Draw(dst, ir, tb.icon, image.Point{}, draw.Over)
		x += iconSize + 4
	}
	drawLabel(dst, x, tb.rect.Min.Y+tb.rect.Dy()/2+5, tb.label, text)
}

func (tb *ToolButton) Rect() image.Rectangle { return tb.rect }

func (tb *ToolButton) SetRect(r image.Rectangle) {
	if r != tb.rect {
		tb.rect = r
	}
}

func (tb *ToolButton) Activate() {
	if tb.onSelect != nil {
		tb.onSelect()
	}
}

// ActionButton runs a command such as zooming or saving.
type ActionButton struct {
	label      string
	rect       image.Rectangle
	theme      *theme.Theme
	onActivate func()
}

func (ab *ActionButton) Draw(dst *image.RGBA, state ButtonState) {
	fill, text := buttonColors(ab.theme, state)
	draw.Draw(dst, ab.rect, &image.Uniform{fill}, image.Point{}, draw.Src)
	drawRect(dst, ab.rect, ab.theme.ButtonBorder, 1)
	drawLabel(dst, ab.rect.Min.X+6, ab.rect.Min.Y+ab.rect.Dy()/2+5, ab.label, text)
}

func (ab *ActionButton) Rect() image.Rectangle { return ab.rect }

func (ab *ActionButton) SetRect(r image.Rectangle) {
	if r != ab.rect {
		ab.rect = r
	}
}

func (ab *ActionButton) Activate() {
	if ab.onActivate != nil {
		ab.onActivate()
	}
}

// swatch is one palette entry in the toolbar.
type swatch struct {
	name string
	hex  string
	col  color.RGBA
	rect image.Rectangle
}

func newSwatches(tk *toolkit.Toolkit) []swatch {
	out := make([]swatch, 0, len(tk.Palette))
	for _, p := range tk.Palette {
		rgba, err := toolkit.ParseHex(p.Hex)
		if err != nil {
			continue
		}
		out = append(out, swatch{name: p.Name, hex: p.Hex, col: color.RGBA{rgba[0], rgba[1], rgba[2], rgba[3]}})
	}
	return out
}

// toolLabel is the toolbar caption of a sub-tool. Tags are numbered since
// the toolbar font only covers ASCII.
func toolLabel(name string) string {
	var n int
	switch {
	case name == "text-bg":
		return "Label"
	case name == "text-no-bg":
		return "Text"
	case scanTool(name, "draw-%d", &n):
		return fmt.Sprintf("Mark %d", n)
	case scanTool(name, "tag-%d", &n):
		return fmt.Sprintf("Tag %d", n)
	}
	return name
}

func scanTool(name, format string, n *int) bool {
	_, err := fmt.Sscanf(name, format, n)
	return err == nil
}

// toolIcon renders the toolbar preview of a sub-tool filled with hex.
func toolIcon(name, hex string, col color.RGBA) *image.RGBA {
	var n int
	shape := name
	switch {
	case name == "draw-5":
		img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
		drawRect(img, img.Bounds().Inset(2), col, 2)
		return img
	case scanTool(name, "tag-%d", &n):
		shape = "tag"
	case name == "text-bg":
		img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
		draw.Draw(img, img.Bounds().Inset(2), &image.Uniform{col}, image.Point{}, draw.Src)
		drawCentred(img, img.Bounds(), "A", basicfont.Face7x13, contrast(col))
		return img
	case name == "text-no-bg":
		img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
		drawCentred(img, img.Bounds(), "A", basicfont.Face7x13, col)
		return img
	}
	data, err := assets.ToolSVG(shape, hex)
	if err != nil {
		return nil
	}
	img, err := render.RasterizeSVG(data, iconSize, iconSize)
	if err != nil {
		slog.Debug("tool icon", "tool", name, "error", err)
		return nil
	}
	return img
}

// contrast returns black or white, whichever reads better on c.
func contrast(c color.RGBA) color.RGBA {
	brightness := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	if brightness < 128 {
		return color.RGBA{255, 255, 255, 255}
	}
	return color.RGBA{0, 0, 0, 255}
}

func setThickPixel(img *image.RGBA, x, y, thick int, col color.Color) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			px := x + dx
			py := y + dy
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	drawLine(img, rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Min.Y, col, thick)
	drawLine(img, rect.Max.X-1, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1, col, thick)
	drawLine(img, rect.Max.X-1, rect.Max.Y-1, rect.Min.X, rect.Max.Y-1, col, thick)
	drawLine(img, rect.Min.X, rect.Max.Y-1, rect.Min.X, rect.Min.Y, col, thick)
}

// paintState is everything drawFrame needs, captured on the event loop.
type paintState struct {
	width, height int
	theme         *theme.Theme
	view          *image.RGBA
	status        string
	buttons       []*CacheButton
	buttonStates  []ButtonState
	swatches      []swatch
	selected      string
	hoverSwatch   int
	shortcuts     []Shortcut
	hoverShortcut int
	message       string
	messageUntil  time.Time
	loading       bool
}

func drawTitleBar(dst *image.RGBA, st paintState) {
	th := st.theme
	draw.Draw(dst, image.Rect(0, 0, st.width, tabHeight), &image.Uniform{th.ToolbarBackground}, image.Point{}, draw.Src)
	drawLabel(dst, 4, 16, "Damagemark", th.Foreground)
	if st.status != "" {
		drawLabel(dst, st.width-labelWidth(st.status)-6, 16, st.status, th.Foreground)
	}
}

func drawToolbar(dst *image.RGBA, st paintState) {
	th := st.theme
	draw.Draw(dst, image.Rect(0, tabHeight, toolbarWidth, st.height-bottomHeight),
		&image.Uniform{th.ToolbarBackground}, image.Point{}, draw.Src)
	for i, cb := range st.buttons {
		cb.Draw(dst, st.buttonStates[i])
	}
	for i, sw := range st.swatches {
		draw.Draw(dst, sw.rect, &image.Uniform{sw.col}, image.Point{}, draw.Src)
		drawRect(dst, sw.rect, th.SwatchBorder, 1)
		if i == st.hoverSwatch {
			draw.Draw(dst, sw.rect, &image.Uniform{color.RGBA{255, 255, 255, 80}}, image.Point{}, draw.Over)
		}
		if sw.hex == st.selected {
			drawRect(dst, sw.rect.Inset(-2), th.Foreground, 2)
		}
	}
}

func drawShortcuts(dst *image.RGBA, st paintState) {
	rect := image.Rect(0, st.height-bottomHeight, st.width, st.height)
	draw.Draw(dst, rect, &image.Uniform{st.theme.ToolbarBackground}, image.Point{}, draw.Src)
	for i := range st.shortcuts {
		state := StateDefault
		if i == st.hoverShortcut {
			state = StateHover
		}
		st.shortcuts[i].Draw(dst, state)
	}
}

// drawOverlay dims the window and writes text in the middle.
func drawOverlay(dst *image.RGBA, st paintState, text string) {
	b := dst.Bounds()
	draw.Draw(dst, b, &image.Uniform{st.theme.Overlay}, image.Point{}, draw.Over)
	drawCentred(dst, b, text, messageFace, st.theme.OverlayText)
}

func drawMessage(dst *image.RGBA, st paintState) {
	th := st.theme
	w := labelWidth(st.message) + 24
	x := (st.width - w) / 2
	y := st.height - bottomHeight - 48
	rect := image.Rect(x, y, x+w, y+28)
	draw.Draw(dst, rect, &image.Uniform{th.ButtonBackground}, image.Point{}, draw.Over)
	drawRect(dst, rect, th.ButtonBorder, 2)
	drawCentred(dst, rect, st.message, basicfont.Face7x13, th.ButtonText)
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		slog.Error("new buffer", "error", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()

	draw.Draw(dst, dst.Bounds(), &image.Uniform{st.theme.Background}, image.Point{}, draw.Src)
	if st.view != nil {
		o := canvasOrigin()
		area := canvasArea(st.width, st.height)
		r := st.view.Bounds().Add(o).Intersect(area)
		draw.Draw(dst, r, st.view, r.Min.Sub(o), draw.Src)
	}
	if ctx.Err() != nil {
		return
	}

	drawTitleBar(dst, st)
	drawToolbar(dst, st)
	drawShortcuts(dst, st)
	if ctx.Err() != nil {
		return
	}

	if st.message != "" && time.Now().Before(st.messageUntil) {
		drawMessage(dst, st)
	}
	if st.loading {
		drawOverlay(dst, st, "Loading…")
	}
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
