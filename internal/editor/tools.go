package editor

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/example/damagemark/assets"
	"github.com/example/damagemark/internal/canvas"
)

const (
	frameWidth       = 153.102
	frameHeight      = 121.633
	frameStrokeWidth = 10
	textBoxWidth     = 61
	textBoxHeight    = 32
	textBoxRadius    = 5
	tagTextOffsetX   = 32
	tagTextOffsetY   = -2
)

// Tool names accepted by AddTool besides draw-N and tag-N.
const (
	ToolTextBackground   = "text-bg"
	ToolTextNoBackground = "text-no-bg"
)

// ToolNames lists every sub-tool in toolbar order.
func (s *Surface) ToolNames() []string {
	names := []string{"draw-1", "draw-2", "draw-3", "draw-4", "draw-5"}
	for i := range s.kit.Tags {
		names = append(names, fmt.Sprintf("tag-%d", i+1))
	}
	return append(names, ToolTextBackground, ToolTextNoBackground)
}

// AddTool places the named sub-tool in the middle of the view and selects it.
func (s *Surface) AddTool(name string) (*canvas.Object, error) {
	switch {
	case strings.HasPrefix(name, "draw-"):
		n, err := strconv.Atoi(strings.TrimPrefix(name, "draw-"))
		if err != nil {
			return nil, fmt.Errorf("unknown tool %q", name)
		}
		return s.AddDraw(n)
	case strings.HasPrefix(name, "tag-"):
		n, err := strconv.Atoi(strings.TrimPrefix(name, "tag-"))
		if err != nil {
			return nil, fmt.Errorf("unknown tool %q", name)
		}
		return s.AddTag(n)
	case name == ToolTextBackground:
		return s.AddText(true)
	case name == ToolTextNoBackground:
		return s.AddText(false)
	}
	return nil, fmt.Errorf("unknown tool %q", name)
}

// AddDraw adds one of the five drawing shapes: four arrows and lines filled
// with the selected colour, and a stroked frame.
func (s *Surface) AddDraw(n int) (*canvas.Object, error) {
	if s.canvas == nil {
		return nil, ErrNoCanvas
	}
	name := fmt.Sprintf("draw-%d", n)
	var o *canvas.Object
	switch {
	case n == 5:
		o = canvas.NewRect(frameWidth, frameHeight)
		o.Stroke = s.selectedColor
		o.StrokeWidth = frameStrokeWidth
		o.LockScalingFlip = true
	case n >= 1 && n < 5:
		shape, err := s.shape(name, s.selectedColor)
		if err != nil {
			return nil, err
		}
		o = shape
		o.LockScalingFlip = false
	default:
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	o.ID = uuid.NewString()
	o.Name = name
	s.place(o)
	return o, nil
}

// AddTag adds the n-th damage tag: an arrow-shaped label in the selected
// colour carrying the tag text.
func (s *Surface) AddTag(n int) (*canvas.Object, error) {
	if s.canvas == nil {
		return nil, ErrNoCanvas
	}
	label, err := s.kit.Tag(n)
	if err != nil {
		return nil, err
	}
	shape, err := s.shape("tag", s.selectedColor)
	if err != nil {
		return nil, err
	}
	shape.ID = uuid.NewString()
	text := canvas.NewText(canvas.TypeText, label, s.kit.FontSize, s.kit.ContrastText(s.selectedColor))
	text.Left = shape.Left - text.ScaledWidth()/2 + tagTextOffsetX
	text.Top = shape.Top + text.ScaledHeight()/2 + tagTextOffsetY
	g := canvas.NewGroup(shape, text)
	g.ID = uuid.NewString()
	g.Name = fmt.Sprintf("tag-%d", n)
	s.place(g)
	return g, nil
}

// AddText adds editable text, optionally on a rounded box in the selected
// colour.
func (s *Surface) AddText(background bool) (*canvas.Object, error) {
	if s.canvas == nil {
		return nil, ErrNoCanvas
	}
	id := uuid.NewString()
	if !background {
		text := canvas.NewText(canvas.TypeIText, s.kit.Placeholder, s.kit.FontSize, s.selectedColor)
		text.ID = id
		text.Name = ToolTextNoBackground
		s.place(text)
		return text, nil
	}
	box := canvas.NewRect(textBoxWidth, textBoxHeight)
	box.Rx, box.Ry = textBoxRadius, textBoxRadius
	box.Fill = s.selectedColor
	box.ID = id
	box.Selectable = false
	text := canvas.NewText(canvas.TypeIText, s.kit.Placeholder, s.kit.FontSize, s.kit.ContrastText(s.selectedColor))
	text.ID = id
	text.SetCenter(box.Center())
	g := canvas.NewGroup(box, text)
	g.ID = id
	g.Name = ToolTextBackground
	s.place(g)
	return g, nil
}

func (s *Surface) shape(name, fill string) (*canvas.Object, error) {
	src, err := assets.ToolSVG(name, fill)
	if err != nil {
		return nil, err
	}
	o, err := canvas.FromSVG(bytes.NewReader(src), fill)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return o, nil
}

// place scales a new object so it reads the same at any zoom, centres it in
// the view and selects it.
func (s *Surface) place(o *canvas.Object) {
	s.EndTextEdit()
	s.configure(o)
	o.Selectable = true
	o.Evented = true
	o.SetScale(s.zoomFactor / s.ZoomValue())
	s.canvas.DiscardActive()
	s.canvas.Add(o)
	s.canvas.ViewportCenterObject(o)
	s.canvas.SetActive(o)
	s.logger.Debug("object added", "name", o.Name, "id", o.ID)
}
