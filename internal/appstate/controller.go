package appstate

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/damagemark/internal/canvas"
	"github.com/example/damagemark/internal/clipboard"
	"github.com/example/damagemark/internal/editor"
	"github.com/example/damagemark/internal/notify"
	"github.com/example/damagemark/internal/render"
	"github.com/example/damagemark/internal/theme"
)

const (
	wheelZoom = 1.1
	wheelPan  = 30
	arrowStep = 4
)

type dragKind int

const (
	dragNone dragKind = iota
	dragMove
	dragRotate
	dragScale
	dragPan
)

type dragState struct {
	kind    dragKind
	control canvas.Control
	last    canvas.Point
}

// controller turns window input into editor commands. It runs on the event
// loop and never touches the screen.
type controller struct {
	ctx      context.Context
	surface  *editor.Surface
	theme    *theme.Theme
	notifier *notify.Notifier
	logger   *slog.Logger
	output   string
	format   render.Format
	copyImg  func(image.Image) error
	now      func() time.Time
	photo    *render.PhotoCache

	width, height int

	buttons   []*CacheButton
	swatches  []swatch
	shortcuts []Shortcut
	actions   map[string]func()
	keys      map[KeyShortcut]string

	hoverButton   int
	hoverSwatch   int
	hoverShortcut int
	drag          dragState

	message      string
	messageUntil time.Time
	quit         bool
}

func newController(ctx context.Context, a *AppState) *controller {
	c := &controller{
		ctx:           ctx,
		surface:       a.surface,
		theme:         a.theme,
		notifier:      a.notifier,
		logger:        a.logger,
		output:        a.output,
		format:        a.format,
		copyImg:       clipboard.WriteImage,
		now:           time.Now,
		hoverButton:   -1,
		hoverSwatch:   -1,
		hoverShortcut: -1,
		photo:         &render.PhotoCache{},
	}
	c.configure()
	return c
}

// register binds an action name to fn and its keyboard shortcuts.
func (c *controller) register(name string, keys KeyboardShortcuts, fn func()) {
	c.actions[name] = fn
	if keys != nil {
		for _, sc := range keys.KeyboardShortcuts() {
			c.keys[sc] = name
		}
	}
}

// run triggers a registered action.
func (c *controller) run(name string) bool {
	fn, ok := c.actions[name]
	if ok {
		fn()
	}
	return ok
}

func (c *controller) flash(format string, args ...any) {
	c.message = fmt.Sprintf(format, args...)
	c.messageUntil = c.now().Add(messageDuration)
	c.logger.Info(c.message)
}

// configure rebuilds the toolbar, the bottom bar and the key table for the
// current mode.
func (c *controller) configure() {
	c.actions = map[string]func(){}
	c.keys = map[KeyShortcut]string{}
	c.buttons = nil
	c.swatches = nil
	c.shortcuts = nil
	c.hoverButton, c.hoverSwatch, c.hoverShortcut = -1, -1, -1
	s := c.surface

	action := func(label, name string) {
		c.buttons = append(c.buttons, &CacheButton{Button: &ActionButton{label: label, theme: c.theme, onActivate: func() { c.run(name) }}})
	}
	hint := func(label, name string) {
		c.shortcuts = append(c.shortcuts, Shortcut{label: label, theme: c.theme, action: func() { c.run(name) }})
	}

	view := func(fn func()) func() {
		return func() {
			fn()
			c.configure()
		}
	}
	c.register("zoomin", shortcutList{{Rune: '+'}, {Rune: '='}}, view(s.ZoomIn))
	c.register("zoomout", shortcutList{{Rune: '-'}}, view(s.ZoomOut))
	c.register("fit", shortcutList{{Rune: '0'}}, view(s.FitToScreen))
	c.register("export", shortcutList{{Code: key.CodeE, Modifiers: key.ModControl}}, c.export)
	c.register("copy", shortcutList{{Code: key.CodeC, Modifiers: key.ModControl}}, c.copy)
	c.register("edit", shortcutList{{Rune: 'e'}}, func() {
		s.SetEditing(!s.Editing())
		c.configure()
	})
	c.register("quit", shortcutList{{Rune: 'q'}}, func() { c.quit = true })

	if !s.Editing() && s.Desktop() {
		action("Edit", "edit")
		action("Zoom+", "zoomin")
		action("Zoom-", "zoomout")
		action("Fit", "fit")
		hint("E:edit", "edit")
		hint(fmt.Sprintf("+/-:zoom (%d%%)", s.ZoomPercent()), "zoomin")
		hint("^E:export", "export")
		hint("^C:copy", "copy")
		hint("Q:quit", "quit")
		c.layout()
		return
	}

	hex := s.SelectedColor()
	sw := newSwatches(s.Toolkit())
	var selected swatch
	for _, p := range sw {
		if p.hex == hex {
			selected = p
		}
	}
	for i, name := range s.ToolNames() {
		tool := name
		c.register("tool:"+tool, toolKeys(tool, i), func() {
			if _, err := s.AddTool(tool); err != nil {
				c.flash("%s: %v", tool, err)
			}
		})
		c.buttons = append(c.buttons, &CacheButton{Button: &ToolButton{
			label:    toolLabel(tool),
			tool:     tool,
			icon:     toolIcon(tool, hex, selected.col),
			theme:    c.theme,
			onSelect: func() { c.run("tool:" + tool) },
		}})
	}
	for _, p := range sw {
		hex := p.hex
		c.register("color:"+hex, nil, func() {
			s.SetColor(hex)
			c.configure()
		})
	}
	c.swatches = sw

	c.register("front", shortcutList{{Rune: 'f'}}, s.BringToFront)
	c.register("back", shortcutList{{Rune: 'b'}}, s.SendToBack)
	c.register("delete", nil, func() { s.DeleteActive() })
	c.register("clear", nil, s.Clear)
	c.register("save", shortcutList{{Code: key.CodeS, Modifiers: key.ModControl}}, c.save)
	c.register("cancel", shortcutList{{Code: key.CodeZ, Modifiers: key.ModControl}}, func() {
		if err := s.Cancel(c.ctx); err != nil {
			c.flash("revert: %v", err)
			return
		}
		c.configure()
	})

	action("Front", "front")
	action("Back", "back")
	action("Zoom+", "zoomin")
	action("Zoom-", "zoomout")
	action("Fit", "fit")
	action("Clear", "clear")
	action("Save", "save")
	if s.Desktop() {
		action("Done", "edit")
	}
	action("Revert", "cancel")

	hint("Del:delete", "delete")
	hint("^S:save", "save")
	hint("^E:export", "export")
	hint("^C:copy", "copy")
	hint(fmt.Sprintf("+/-:zoom (%d%%)", s.ZoomPercent()), "zoomin")
	hint("0:fit", "fit")
	hint("F/B:front/back", "front")
	hint("^Z:revert", "cancel")
	hint("Q:quit", "quit")
	c.layout()
}

// toolKeys gives the first sub-tools number keys and the text tools letters.
func toolKeys(name string, idx int) KeyboardShortcuts {
	switch {
	case name == editor.ToolTextBackground:
		return shortcutList{{Rune: 'l'}}
	case name == editor.ToolTextNoBackground:
		return shortcutList{{Rune: 't'}}
	case idx < 9:
		return shortcutList{{Rune: rune('1' + idx)}}
	}
	return nil
}

// layout positions every toolbar and bottom bar element for the window size.
func (c *controller) layout() {
	y := tabHeight + 4
	half := (toolbarWidth - 6) / 2
	col := 0
	for _, cb := range c.buttons {
		if _, ok := cb.Button.(*ActionButton); !ok {
			cb.SetRect(image.Rect(2, y, toolbarWidth-2, y+buttonHeight))
			y += buttonHeight + 2
			continue
		}
		x := 2 + col*(half+2)
		cb.SetRect(image.Rect(x, y, x+half, y+buttonHeight))
		if col++; col == 2 {
			col = 0
			y += buttonHeight + 2
		}
	}
	if col != 0 {
		y += buttonHeight + 2
	}
	y += 6
	x := 4
	for i := range c.swatches {
		if x+swatchSize > toolbarWidth-2 {
			x = 4
			y += swatchSize + swatchGap
		}
		c.swatches[i].rect = image.Rect(x, y, x+swatchSize, y+swatchSize)
		x += swatchSize + swatchGap
	}

	x = toolbarWidth + 4
	top := c.height - bottomHeight + 2
	for i := range c.shortcuts {
		w := labelWidth(c.shortcuts[i].label)
		c.shortcuts[i].SetRect(image.Rect(x-2, top, x+w+2, top+bottomHeight-4))
		x += w + 12
	}
}

// resize records the window size and fits the canvas to it.
func (c *controller) resize(w, h int) {
	c.width, c.height = w, h
	c.surface.Resize(w)
	c.layout()
}

func (c *controller) save() {
	used, err := c.surface.KeyDown(c.ctx, editor.KeySave)
	if err != nil {
		c.flash("save failed: %v", err)
		return
	}
	if !used {
		return
	}
	var preview image.Image
	if img, err := render.Rasterize(c.surface.Canvas(), render.Options{}); err == nil {
		preview = img
	}
	c.notifier.Save(editor.ImageName, preview)
	c.flash("annotations saved")
}

func (c *controller) export() {
	f, err := os.Create(c.output)
	if err != nil {
		c.flash("export: %v", err)
		return
	}
	if err := c.surface.Export(f, c.format); err != nil {
		f.Close()
		c.flash("export: %v", err)
		return
	}
	if err := f.Close(); err != nil {
		c.flash("export: %v", err)
		return
	}
	c.notifier.Export(c.output)
	c.flash("exported %s", c.output)
}

func (c *controller) copy() {
	cv := c.surface.Canvas()
	if cv == nil {
		return
	}
	img, err := render.Rasterize(cv, render.Options{})
	if err != nil {
		c.flash("copy: %v", err)
		return
	}
	if err := c.copyImg(img); err != nil {
		c.flash("copy: %v", err)
		return
	}
	c.notifier.Copy("")
	c.flash("image copied to clipboard")
}

// busy reports whether input should be ignored while a load or save runs.
func (c *controller) busy() bool {
	return c.surface.Loading().Visible()
}

// mouse handles a pointer event and reports whether the window needs a
// repaint.
func (c *controller) mouse(e mouse.Event) bool {
	if c.busy() {
		return false
	}
	if c.message != "" && c.now().Before(c.messageUntil) && e.Direction == mouse.DirPress {
		c.messageUntil = time.Time{}
		return true
	}
	if e.Button.IsWheel() {
		return c.wheel(e)
	}
	p := image.Pt(int(e.X), int(e.Y))
	press := e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress

	if c.drag.kind == dragNone {
		if p.Y >= c.height-bottomHeight {
			return c.hover(&c.hoverShortcut, c.shortcutIndex(p), press, func(i int) { c.shortcuts[i].Activate() })
		}
		if p.X < toolbarWidth && p.Y >= tabHeight {
			if i := c.buttonIndex(p); i >= 0 || c.hoverButton >= 0 {
				c.hoverSwatch = -1
				return c.hover(&c.hoverButton, i, press, func(i int) { c.buttons[i].Activate() })
			}
			return c.hover(&c.hoverSwatch, c.swatchIndex(p), press, func(i int) { c.run("color:" + c.swatches[i].hex) })
		}
	}
	c.hoverButton, c.hoverSwatch, c.hoverShortcut = -1, -1, -1

	cv := c.surface.Canvas()
	if cv == nil {
		return false
	}
	cp := toCanvas(cv, e.X, e.Y)
	switch {
	case press:
		if !inCanvas(cv, c.width, c.height, e.X, e.Y) {
			return false
		}
		c.pointerDown(cp)
		return true
	case e.Direction == mouse.DirRelease:
		if c.drag.kind == dragNone {
			return false
		}
		c.drag = dragState{}
		return true
	case e.Direction == mouse.DirNone && c.drag.kind != dragNone:
		c.dragTo(cp)
		return true
	}
	return false
}

func (c *controller) hover(cur *int, idx int, press bool, activate func(int)) bool {
	changed := *cur != idx
	*cur = idx
	if press && idx >= 0 {
		activate(idx)
		return true
	}
	return changed
}

func (c *controller) buttonIndex(p image.Point) int {
	for i, cb := range c.buttons {
		if p.In(cb.Rect()) {
			return i
		}
	}
	return -1
}

func (c *controller) swatchIndex(p image.Point) int {
	for i, sw := range c.swatches {
		if p.In(sw.rect) {
			return i
		}
	}
	return -1
}

func (c *controller) shortcutIndex(p image.Point) int {
	for i := range c.shortcuts {
		if p.In(c.shortcuts[i].rect) {
			return i
		}
	}
	return -1
}

func (c *controller) pointerDown(p canvas.Point) {
	cv := c.surface.Canvas()
	hit := c.surface.PointerDown(p)
	switch hit.Kind {
	case editor.HitControl:
		if hit.Object == nil {
			return
		}
		if hit.Control == canvas.ControlRotate {
			c.drag = dragState{kind: dragRotate, control: hit.Control}
			return
		}
		c.drag = dragState{kind: dragScale, control: hit.Control}
	case editor.HitObject:
		if hit.Object == c.surface.TextEditing() {
			return
		}
		c.drag = dragState{kind: dragMove, last: cv.ToLogical(p)}
	default:
		c.drag = dragState{kind: dragPan, last: p}
	}
}

func (c *controller) dragTo(p canvas.Point) {
	s := c.surface
	switch c.drag.kind {
	case dragMove:
		lp := s.Canvas().ToLogical(p)
		s.MoveActive(lp.X-c.drag.last.X, lp.Y-c.drag.last.Y)
		c.drag.last = lp
	case dragRotate:
		s.RotateActive(p)
	case dragScale:
		s.ScaleActive(c.drag.control, p)
	case dragPan:
		s.Pan(p.X-c.drag.last.X, p.Y-c.drag.last.Y)
		c.drag.last = p
	}
}

// wheel pans the zoomed view, or zooms around the pointer with Control held.
func (c *controller) wheel(e mouse.Event) bool {
	cv := c.surface.Canvas()
	if cv == nil || !inCanvas(cv, c.width, c.height, e.X, e.Y) {
		return false
	}
	if e.Modifiers&key.ModControl != 0 {
		switch e.Button {
		case mouse.ButtonWheelUp:
			c.surface.Zoom(wheelZoom, toCanvas(cv, e.X, e.Y))
		case mouse.ButtonWheelDown:
			c.surface.Zoom(1/wheelZoom, toCanvas(cv, e.X, e.Y))
		default:
			return false
		}
		c.configure()
		return true
	}
	switch e.Button {
	case mouse.ButtonWheelUp:
		c.surface.Pan(0, wheelPan)
	case mouse.ButtonWheelDown:
		c.surface.Pan(0, -wheelPan)
	case mouse.ButtonWheelLeft:
		c.surface.Pan(wheelPan, 0)
	case mouse.ButtonWheelRight:
		c.surface.Pan(-wheelPan, 0)
	}
	return true
}

// key handles a key press and reports whether the window needs a repaint.
func (c *controller) key(e key.Event) bool {
	if e.Direction == key.DirRelease || c.busy() {
		return false
	}
	s := c.surface
	if s.TextEditing() != nil {
		if k, ok := editorKey(e); ok && k != editor.KeySave {
			used, _ := s.KeyDown(c.ctx, k)
			return used
		}
		if text, ok := typedText(e); ok {
			s.InsertText(text)
			return true
		}
	}
	if k, ok := editorKey(e); ok {
		switch k {
		case editor.KeySave:
			return c.run("save")
		case editor.KeyEscape:
			if cv := s.Canvas(); cv != nil && cv.Active() != nil {
				cv.DiscardActive()
				return true
			}
			return false
		}
		used, err := s.KeyDown(c.ctx, k)
		if err != nil {
			c.flash("%v", err)
		}
		return used
	}
	if c.arrow(e.Code) {
		return true
	}
	name, ok := c.keys[shortcutFor(e)]
	if !ok {
		return false
	}
	return c.run(name)
}

// arrow nudges the selection, or pans the view when nothing is selected.
func (c *controller) arrow(code key.Code) bool {
	var dx, dy float64
	switch code {
	case key.CodeLeftArrow:
		dx = -1
	case key.CodeRightArrow:
		dx = 1
	case key.CodeUpArrow:
		dy = -1
	case key.CodeDownArrow:
		dy = 1
	default:
		return false
	}
	cv := c.surface.Canvas()
	if cv == nil {
		return false
	}
	if cv.Active() != nil {
		c.surface.MoveActive(dx*arrowStep, dy*arrowStep)
		return true
	}
	c.surface.Pan(-dx*wheelPan, -dy*wheelPan)
	return true
}

// snapshot renders the canvas and captures the chrome for drawFrame.
func (c *controller) snapshot() paintState {
	s := c.surface
	st := paintState{
		width:         c.width,
		height:        c.height,
		theme:         c.theme,
		status:        c.status(),
		buttons:       c.buttons,
		buttonStates:  c.buttonStates(),
		swatches:      c.swatches,
		selected:      s.SelectedColor(),
		hoverSwatch:   c.hoverSwatch,
		shortcuts:     c.shortcuts,
		hoverShortcut: c.hoverShortcut,
		message:       c.message,
		messageUntil:  c.messageUntil,
		loading:       c.busy(),
	}
	cv := s.Canvas()
	if cv == nil {
		return st
	}
	var sel *render.Selection
	if a := cv.Active(); a != nil {
		sel = &render.Selection{Object: a, Layout: s.ControlLayout(), Editing: s.TextEditing() != nil}
	}
	img, err := render.Rasterize(cv, render.Options{
		Viewport:   true,
		Scale:      cv.DisplayScale(),
		Background: c.theme.CanvasBackground,
		Selection:  sel,
		Photo:      c.photo,
	})
	if err != nil {
		c.logger.Error("render canvas", "error", err)
		return st
	}
	st.view = img
	return st
}

func (c *controller) status() string {
	s := c.surface
	mode := "viewing"
	if s.Editing() {
		mode = "editing"
	}
	if s.TextEditing() != nil {
		mode = "typing"
	}
	return fmt.Sprintf("%s  %d%%", mode, s.ZoomPercent())
}

func (c *controller) buttonStates() []ButtonState {
	s := c.surface
	out := make([]ButtonState, len(c.buttons))
	for i, cb := range c.buttons {
		switch {
		case i == c.hoverButton:
			out[i] = StateHover
		default:
			out[i] = StateDefault
		}
		ab, ok := cb.Button.(*ActionButton)
		if !ok {
			continue
		}
		switch ab.label {
		case "Front":
			if s.IsFront() {
				out[i] = StateDisabled
			}
		case "Back":
			if s.IsBack() {
				out[i] = StateDisabled
			}
		case "Edit":
			if s.Editing() {
				out[i] = StatePressed
			}
		}
	}
	return out
}
