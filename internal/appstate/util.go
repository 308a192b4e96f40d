package appstate

import (
	"image"
	"unicode"

	"golang.org/x/mobile/event/key"

	"github.com/example/damagemark/internal/canvas"
	"github.com/example/damagemark/internal/editor"
)

// canvasOrigin is the window position of the top-left corner of the canvas.
func canvasOrigin() image.Point { return image.Pt(toolbarWidth, tabHeight) }

// canvasArea returns the window rectangle available to the canvas.
func canvasArea(winW, winH int) image.Rectangle {
	r := image.Rect(toolbarWidth, tabHeight, winW, winH-bottomHeight)
	if r.Empty() {
		return image.Rectangle{}
	}
	return r
}

// toCanvas converts a window position into canvas pixels.
func toCanvas(c *canvas.Canvas, x, y float32) canvas.Point {
	o := canvasOrigin()
	d := canvas.Point{X: float64(x) - float64(o.X), Y: float64(y) - float64(o.Y)}
	if c == nil {
		return d
	}
	return c.FromDisplay(d)
}

// inCanvas reports whether a window position lies on the displayed canvas.
func inCanvas(c *canvas.Canvas, winW, winH int, x, y float32) bool {
	if c == nil {
		return false
	}
	o := canvasOrigin()
	shown := image.Rect(o.X, o.Y, o.X+int(c.DisplayWidth), o.Y+int(c.DisplayHeight))
	return image.Pt(int(x), int(y)).In(shown.Intersect(canvasArea(winW, winH)))
}

// editorKey maps a key press onto an editor command.
func editorKey(e key.Event) (editor.Key, bool) {
	switch e.Code {
	case key.CodeDeleteForward:
		return editor.KeyDelete, true
	case key.CodeDeleteBackspace:
		return editor.KeyBackspace, true
	case key.CodeReturnEnter, key.CodeKeypadEnter:
		return editor.KeyEnter, true
	case key.CodeEscape:
		return editor.KeyEscape, true
	case key.CodeS:
		if e.Modifiers&key.ModControl != 0 {
			return editor.KeySave, true
		}
	}
	return 0, false
}

// shortcutFor normalises a key event for lookup in the shortcut table.
func shortcutFor(e key.Event) KeyShortcut {
	r := unicode.ToLower(e.Rune)
	if r < 0 || e.Modifiers&key.ModControl != 0 {
		r = 0
	}
	code := e.Code
	if r != 0 {
		code = key.CodeUnknown
	}
	return KeyShortcut{Rune: r, Code: code, Modifiers: e.Modifiers &^ key.ModShift}
}

// typedText returns the printable text carried by e, if any.
func typedText(e key.Event) (string, bool) {
	if e.Modifiers&(key.ModControl|key.ModAlt|key.ModMeta) != 0 {
		return "", false
	}
	if e.Rune <= 0 || !unicode.IsPrint(e.Rune) {
		return "", false
	}
	return string(e.Rune), true
}
