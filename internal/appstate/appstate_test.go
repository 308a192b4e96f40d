package appstate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/damagemark/internal/canvas"
	"github.com/example/damagemark/internal/editor"
	"github.com/example/damagemark/internal/render"
	"github.com/example/damagemark/internal/store"
)

type fakeLoader struct{}

func (fakeLoader) Load(ctx context.Context, src string) (image.Image, error) {
	if src == "" {
		return nil, errors.New("empty source")
	}
	return image.NewRGBA(image.Rect(0, 0, 800, 600)), nil
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// newTestController builds a controller for an 800×600 photo in a
// 1113×860 window, which shows the canvas at 1000×750.
func newTestController(t *testing.T, opts ...editor.Option) *controller {
	t.Helper()
	base := []editor.Option{editor.WithImageLoader(fakeLoader{}), editor.WithEditing(true), editor.WithLogger(quiet)}
	s := editor.New(append(base, opts...)...)
	if err := s.Init(context.Background(), "photo.jpg", nil); err != nil {
		t.Fatalf("init: %v", err)
	}
	out := filepath.Join(t.TempDir(), "export.png")
	a := New(s, WithLogger(quiet), WithOutput(out), WithFormat(render.PNG))
	c := newController(context.Background(), a)
	c.resize(1113, 860)
	return c
}

// screenPoint maps a logical canvas point to window coordinates.
func screenPoint(c *controller, p canvas.Point) (float32, float32) {
	cv := c.surface.Canvas()
	d := cv.Viewport().Apply(p)
	s := cv.DisplayScale()
	o := canvasOrigin()
	return float32(d.X*s) + float32(o.X), float32(d.Y*s) + float32(o.Y)
}

func click(c *controller, x, y float32) bool {
	c.mouse(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	return c.mouse(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirRelease})
}

func press(c *controller, r rune, code key.Code, mods key.Modifiers) bool {
	return c.key(key.Event{Rune: r, Code: code, Modifiers: mods, Direction: key.DirPress})
}

func centre(r image.Rectangle) (float32, float32) {
	return float32(r.Min.X+r.Dx()/2), float32(r.Min.Y+r.Dy()/2)
}

func TestResizeShowsCanvasBesideToolbar(t *testing.T) {
	c := newTestController(t)
	cv := c.surface.Canvas()
	if cv.DisplayWidth != 1000 || cv.DisplayHeight != 750 {
		t.Fatalf("display %vx%v", cv.DisplayWidth, cv.DisplayHeight)
	}
	x, y := screenPoint(c, canvas.Point{X: 400, Y: 300})
	if x != 604 || y != 399 {
		t.Fatalf("centre on screen at %v,%v", x, y)
	}
	if got := toCanvas(cv, x, y); got != (canvas.Point{X: 400, Y: 300}) {
		t.Fatalf("toCanvas = %+v", got)
	}
	if inCanvas(cv, c.width, c.height, 50, 100) {
		t.Errorf("toolbar counted as canvas")
	}
}

func TestToolbarButtonAddsTool(t *testing.T) {
	c := newTestController(t)
	idx := -1
	for i, cb := range c.buttons {
		if tb, ok := cb.Button.(*ToolButton); ok && tb.tool == "draw-2" {
			idx = i
		}
	}
	if idx < 0 {
		t.Fatal("no draw-2 button")
	}
	bx, by := centre(c.buttons[idx].Rect())
	if !click(c, bx, by) {
		t.Fatalf("click did not request a repaint")
	}
	cv := c.surface.Canvas()
	if cv.Len() != 1 || cv.Active() == nil || cv.Active().Name != "draw-2" {
		t.Fatalf("objects %d active %+v", cv.Len(), cv.Active())
	}
}

func TestViewerOnlyOffersEditing(t *testing.T) {
	c := newTestController(t, editor.WithEditing(false))
	if _, ok := c.actions["tool:draw-1"]; ok {
		t.Fatalf("viewer registered drawing tools")
	}
	if len(c.swatches) != 0 {
		t.Fatalf("viewer shows palette")
	}
	if !press(c, 'e', key.CodeE, 0) || !c.surface.Editing() {
		t.Fatalf("E did not enter edit mode")
	}
	if _, ok := c.actions["tool:draw-1"]; !ok {
		t.Fatalf("tools missing after entering edit mode")
	}
}

func TestNumberKeysAndDelete(t *testing.T) {
	c := newTestController(t)
	press(c, '1', key.Code1, 0)
	press(c, '3', key.Code3, 0)
	cv := c.surface.Canvas()
	if cv.Len() != 2 || cv.Active().Name != "draw-3" {
		t.Fatalf("objects %d", cv.Len())
	}
	if !press(c, -1, key.CodeDeleteForward, 0) {
		t.Fatalf("delete not handled")
	}
	if cv.Len() != 1 {
		t.Fatalf("objects after delete %d", cv.Len())
	}
	if press(c, -1, key.CodeDeleteForward, 0) {
		t.Fatalf("delete without selection reported a change")
	}
}

func TestDragMovesSelection(t *testing.T) {
	c := newTestController(t)
	press(c, '1', key.Code1, 0)
	o := c.surface.Canvas().Active()
	left := o.Left
	x, y := screenPoint(c, o.Center())
	c.mouse(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	if c.drag.kind != dragMove {
		t.Fatalf("drag kind %v", c.drag.kind)
	}
	c.mouse(mouse.Event{X: x + 25, Y: y, Direction: mouse.DirNone})
	c.mouse(mouse.Event{X: x + 25, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirRelease})
	if d := o.Left - left; d < 19.999 || d > 20.001 {
		t.Fatalf("moved %v, want 20", d)
	}
	if c.drag.kind != dragNone {
		t.Fatalf("drag not finished")
	}
}

func TestTypingIntoText(t *testing.T) {
	c := newTestController(t)
	press(c, 't', key.CodeT, 0)
	txt := c.surface.Canvas().Active()
	x, y := screenPoint(c, txt.Center())
	click(c, x, y)
	click(c, x, y)
	if c.surface.TextEditing() == nil {
		t.Fatalf("double click did not start editing")
	}
	press(c, 'O', key.CodeO, key.ModShift)
	press(c, 'k', key.CodeK, 0)
	if txt.Text != "Ok" {
		t.Fatalf("text %q", txt.Text)
	}
	press(c, -1, key.CodeDeleteBackspace, 0)
	press(c, -1, key.CodeReturnEnter, 0)
	if c.surface.TextEditing() != nil {
		t.Fatalf("enter did not finish editing")
	}
	if txt.Text != "O" {
		t.Fatalf("text after backspace %q", txt.Text)
	}
}

func TestSwatchSetsColour(t *testing.T) {
	c := newTestController(t)
	var target swatch
	for _, sw := range c.swatches {
		if sw.hex != c.surface.SelectedColor() {
			target = sw
			break
		}
	}
	if target.hex == "" {
		t.Fatal("palette has a single colour")
	}
	tx, ty := centre(target.rect)
	click(c, tx, ty)
	if c.surface.SelectedColor() != target.hex {
		t.Fatalf("colour %s, want %s", c.surface.SelectedColor(), target.hex)
	}
}

func TestZoomKeysUpdateHint(t *testing.T) {
	c := newTestController(t)
	press(c, '+', key.CodeEqualSign, key.ModShift)
	if c.surface.ZoomPercent() <= 100 {
		t.Fatalf("zoom %d", c.surface.ZoomPercent())
	}
	want := fmt.Sprintf("+/-:zoom (%d%%)", c.surface.ZoomPercent())
	found := false
	for _, sc := range c.shortcuts {
		found = found || sc.label == want
	}
	if !found {
		t.Errorf("zoom hint %q not shown", want)
	}
	press(c, '0', key.Code0, 0)
	if c.surface.ZoomPercent() != 100 {
		t.Fatalf("fit left zoom at %d", c.surface.ZoomPercent())
	}
}

func TestSaveShortcutStores(t *testing.T) {
	st, err := store.Open(store.MemoryPath, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	c := newTestController(t, editor.WithStore(st))
	press(c, '2', key.Code2, 0)
	if !press(c, 's', key.CodeS, key.ModControl) {
		t.Fatalf("ctrl+s not handled")
	}
	data, err := st.Get(context.Background(), editor.StorageKey)
	if err != nil {
		t.Fatalf("stored document: %v", err)
	}
	doc, err := canvas.ParseDocument(data)
	if err != nil || len(doc.Objects) != 1 {
		t.Fatalf("doc %+v, %v", doc, err)
	}
	if c.message != "annotations saved" {
		t.Errorf("message %q", c.message)
	}
}

func TestExportAndCopy(t *testing.T) {
	c := newTestController(t)
	press(c, '1', key.Code1, 0)
	if !press(c, 'e', key.CodeE, key.ModControl) {
		t.Fatalf("ctrl+e not handled")
	}
	f, err := os.Open(c.output)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil || cfg.Width != 800 || cfg.Height != 600 {
		t.Fatalf("exported %+v, %v", cfg, err)
	}

	var copied image.Image
	c.copyImg = func(img image.Image) error { copied = img; return nil }
	press(c, 'c', key.CodeC, key.ModControl)
	if copied == nil || copied.Bounds().Dx() != 800 {
		t.Fatalf("clipboard got %v", copied)
	}
}

func TestSnapshotRendersView(t *testing.T) {
	c := newTestController(t)
	press(c, '1', key.Code1, 0)
	st := c.snapshot()
	if st.view == nil || st.view.Bounds().Dx() != 1000 || st.view.Bounds().Dy() != 750 {
		t.Fatalf("view %v", st.view)
	}
	if len(st.buttonStates) != len(st.buttons) {
		t.Fatalf("%d states for %d buttons", len(st.buttonStates), len(st.buttons))
	}
	if st.status != "editing  100%" {
		t.Errorf("status %q", st.status)
	}
	c.snapshot()
	if again := c.snapshot(); again.view == nil {
		t.Fatalf("repeated snapshot has no view")
	}
}

func TestShortcutFor(t *testing.T) {
	tests := []struct {
		name string
		e    key.Event
		want KeyShortcut
	}{
		{"letter", key.Event{Rune: 'F', Code: key.CodeF, Modifiers: key.ModShift}, KeyShortcut{Rune: 'f'}},
		{"plus", key.Event{Rune: '+', Code: key.CodeEqualSign, Modifiers: key.ModShift}, KeyShortcut{Rune: '+'}},
		{"control", key.Event{Rune: 's', Code: key.CodeS, Modifiers: key.ModControl}, KeyShortcut{Code: key.CodeS, Modifiers: key.ModControl}},
		{"arrow", key.Event{Rune: -1, Code: key.CodeLeftArrow}, KeyShortcut{Code: key.CodeLeftArrow}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shortcutFor(tt.e); got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEditorKey(t *testing.T) {
	if k, ok := editorKey(key.Event{Code: key.CodeDeleteBackspace}); !ok || k != editor.KeyBackspace {
		t.Errorf("backspace -> %v %v", k, ok)
	}
	if k, ok := editorKey(key.Event{Code: key.CodeS, Modifiers: key.ModControl}); !ok || k != editor.KeySave {
		t.Errorf("ctrl+s -> %v %v", k, ok)
	}
	if _, ok := editorKey(key.Event{Rune: 's', Code: key.CodeS}); ok {
		t.Errorf("plain s mapped to a command")
	}
	if _, ok := typedText(key.Event{Rune: 'x', Modifiers: key.ModControl}); ok {
		t.Errorf("control chord typed text")
	}
}
