package editor

import (
	"context"
	"math"

	"github.com/example/damagemark/internal/canvas"
)

// HitKind says what a pointer press landed on.
type HitKind int

const (
	HitNone HitKind = iota
	HitObject
	HitControl
)

// Hit is the result of PointerDown.
type Hit struct {
	Kind    HitKind
	Object  *canvas.Object
	Control canvas.Control
}

// PointerDown handles a primary press at p, given in canvas pixels. It picks
// handles of the selected object first, then the top-most object under the
// pointer. Pressing outside the text being edited ends the edit, and a
// double click on editable text starts one.
func (s *Surface) PointerDown(p canvas.Point) Hit {
	if s.canvas == nil {
		return Hit{}
	}
	if a := s.canvas.Active(); a != nil && a != s.textEditing {
		if c, ok := canvas.ControlAt(a, s.canvas.Viewport(), s.ControlLayout(), p); ok {
			if c == canvas.ControlDelete {
				s.DeleteActive()
				return Hit{Kind: HitControl, Control: c}
			}
			return Hit{Kind: HitControl, Object: a, Control: c}
		}
	}
	hit := s.canvas.HitTest(p)
	if s.textEditing != nil && hit != s.textEditing {
		s.EndTextEdit()
		hit = s.canvas.HitTest(p)
	}
	if hit == nil || !hit.Selectable {
		s.canvas.DiscardActive()
		return Hit{}
	}
	s.canvas.SetActive(hit)
	if hit != s.textEditing && hit.Editable() && s.clicks.click(hit) {
		s.BeginTextEdit(hit)
		return Hit{Kind: HitObject, Object: s.textEditing}
	}
	return Hit{Kind: HitObject, Object: hit}
}

// MoveActive drags the selected object by (dx, dy) logical units and keeps
// its bounding box inside the canvas when it fits.
func (s *Surface) MoveActive(dx, dy float64) {
	if s.canvas == nil {
		return
	}
	o := s.canvas.Active()
	if o == nil || o == s.textEditing && s.groupEditing {
		return
	}
	o.Left += dx
	o.Top += dy
	s.keepInside(o)
}

func (s *Surface) keepInside(o *canvas.Object) {
	c := s.canvas
	b := o.BoundingRect(canvas.Identity)
	if b.Width > c.Width || b.Height > c.Height {
		return
	}
	if b.Top < 0 || b.Left < 0 {
		o.Top = math.Max(o.Top, o.Top-b.Top)
		o.Left = math.Max(o.Left, o.Left-b.Left)
		b = o.BoundingRect(canvas.Identity)
	}
	if b.Bottom() > c.Height || b.Right() > c.Width {
		o.Top = math.Min(o.Top, c.Height-b.Height+o.Top-b.Top)
		o.Left = math.Min(o.Left, c.Width-b.Width+o.Left-b.Left)
	}
}

// RotateActive turns the selected object so its top faces p, given in
// canvas pixels.
func (s *Surface) RotateActive(p canvas.Point) {
	if s.canvas == nil {
		return
	}
	o := s.canvas.Active()
	if o == nil {
		return
	}
	lp := s.canvas.ToLogical(p)
	c := o.Center()
	deg := math.Atan2(lp.Y-c.Y, lp.X-c.X)*180/math.Pi + 90
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	o.Angle = deg
}

const minScale = 0.05

// ScaleActive resizes the selected object about its centre by dragging
// handle ctl to p, given in canvas pixels. Corner handles scale uniformly.
func (s *Surface) ScaleActive(ctl canvas.Control, p canvas.Point) {
	if s.canvas == nil {
		return
	}
	o := s.canvas.Active()
	if o == nil || o.Width == 0 || o.Height == 0 {
		return
	}
	lp := s.canvas.ToLogical(p)
	center := o.Center()
	pad := o.Style.Padding / s.canvas.Zoom()
	rad := -o.Angle * math.Pi / 180
	dx, dy := lp.X-center.X, lp.Y-center.Y
	lx := math.Abs(dx*math.Cos(rad) - dy*math.Sin(rad))
	ly := math.Abs(dx*math.Sin(rad) + dy*math.Cos(rad))
	sx := math.Max(minScale, (lx-pad)/(o.Width/2))
	sy := math.Max(minScale, (ly-pad)/(o.Height/2))
	switch ctl {
	case canvas.ControlML, canvas.ControlMR:
		o.ScaleX = sx
	case canvas.ControlMT, canvas.ControlMB:
		o.ScaleY = sy
	case canvas.ControlTL, canvas.ControlTR, canvas.ControlBL, canvas.ControlBR:
		d := math.Max(0, math.Hypot(lx, ly)-pad)
		o.SetScale(math.Max(minScale, d/math.Hypot(o.Width/2, o.Height/2)))
	default:
		return
	}
	o.SetCenter(center)
}

// DeleteActive removes the selected object unless a group is open for
// editing. Groups go with their children.
func (s *Surface) DeleteActive() bool {
	if s.canvas == nil || s.groupEditing {
		return false
	}
	o := s.canvas.Active()
	if o == nil {
		return false
	}
	if o == s.textEditing {
		s.textEditing = nil
		s.selectAll = false
	}
	s.canvas.Remove(o)
	s.logger.Debug("object removed", "id", o.ID, "type", o.Type)
	return true
}

// Clear removes every object.
func (s *Surface) Clear() {
	if s.canvas == nil {
		return
	}
	s.groupEditing = false
	s.textEditing = nil
	s.editPair = nil
	s.selectAll = false
	s.clicks.reset()
	s.canvas.Clear()
}

// SetColor applies hex to the selection, or remembers it for the next new
// object when nothing is selected.
func (s *Surface) SetColor(hex string) {
	var active *canvas.Object
	if s.canvas != nil {
		active = s.canvas.Active()
	}
	if active == nil {
		s.selectedColor = hex
		return
	}
	switch active.Type {
	case canvas.TypeGroup:
		for _, child := range active.Objects {
			switch child.Type {
			case canvas.TypeText, canvas.TypeIText:
				child.Fill = s.kit.ContrastText(hex)
			case canvas.TypeRect, canvas.TypePath:
				child.Fill = hex
			}
		}
	case canvas.TypeRect:
		active.Stroke = hex
	case canvas.TypePath:
		active.Fill = hex
	case canvas.TypeIText:
		if s.groupEditing {
			if pair := s.pairOf(active); pair != nil {
				pair.Fill = hex
			}
			active.Fill = s.kit.ContrastText(hex)
			return
		}
		active.Fill = hex
	}
}

func (s *Surface) pairOf(text *canvas.Object) *canvas.Object {
	if s.editPair != nil && s.editPair.ID == text.ID {
		return s.editPair
	}
	return s.canvas.Find(text.ID, canvas.TypeRect)
}

// IsFront reports whether the selected object is top-most.
func (s *Surface) IsFront() bool {
	if s.canvas == nil || s.canvas.Active() == nil {
		return false
	}
	return s.canvas.IndexOf(s.canvas.Active()) == s.canvas.Len()-1
}

// IsBack reports whether the selected object is bottom-most.
func (s *Surface) IsBack() bool {
	if s.canvas == nil || s.canvas.Active() == nil {
		return false
	}
	return s.canvas.IndexOf(s.canvas.Active()) == 0
}

// BringToFront raises the selected object to the top and deselects it.
func (s *Surface) BringToFront() {
	if s.canvas == nil || s.canvas.Active() == nil || s.IsFront() {
		return
	}
	s.canvas.BringToFront(s.canvas.Active())
	s.canvas.DiscardActive()
}

// SendToBack lowers the selected object to the bottom and deselects it.
func (s *Surface) SendToBack() {
	if s.canvas == nil || s.canvas.Active() == nil || s.IsBack() {
		return
	}
	s.canvas.SendToBack(s.canvas.Active())
	s.canvas.DiscardActive()
}

// Key is an editor keyboard command.
type Key int

const (
	KeyDelete Key = iota
	KeyBackspace
	KeyEnter
	KeyEscape
	KeySave
)

// KeyDown handles a keyboard command and reports whether it was used.
func (s *Surface) KeyDown(ctx context.Context, k Key) (bool, error) {
	switch k {
	case KeyBackspace:
		if s.textEditing != nil {
			s.Backspace()
			return true, nil
		}
		return s.DeleteActive(), nil
	case KeyDelete:
		if s.textEditing != nil && !s.groupEditing {
			return false, nil
		}
		return s.DeleteActive(), nil
	case KeyEnter, KeyEscape:
		if s.textEditing == nil {
			return false, nil
		}
		s.EndTextEdit()
		return true, nil
	case KeySave:
		if !s.editing {
			return false, nil
		}
		return true, s.Save(ctx)
	}
	return false, nil
}
