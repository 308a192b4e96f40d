package canvas

import (
	"encoding/json"
	"fmt"
	"math"
)

// Type identifies the kind of drawable object.
type Type string

const (
	TypeRect  Type = "rect"
	TypePath  Type = "path"
	TypeText  Type = "text"
	TypeIText Type = "i-text"
	TypeGroup Type = "group"
)

func (t Type) valid() bool {
	switch t {
	case TypeRect, TypePath, TypeText, TypeIText, TypeGroup:
		return true
	}
	return false
}

// IsText reports whether objects of this type carry a text string.
func (t Type) IsText() bool { return t == TypeText || t == TypeIText }

// PathCommand is one SVG-style drawing command in object-local coordinates.
// It serializes as a JSON array such as ["M", 0, 0] or ["Z"].
type PathCommand struct {
	Op   byte
	Args []float64
}

func (c PathCommand) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(c.Args)+1)
	out = append(out, string(c.Op))
	for _, a := range c.Args {
		out = append(out, a)
	}
	return json.Marshal(out)
}

func (c *PathCommand) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return fmt.Errorf("empty path command")
	}
	var op string
	if err := json.Unmarshal(raw[0], &op); err != nil || len(op) != 1 {
		return fmt.Errorf("invalid path command %s", raw[0])
	}
	c.Op = op[0]
	c.Args = make([]float64, 0, len(raw)-1)
	for _, r := range raw[1:] {
		var v float64
		if err := json.Unmarshal(r, &v); err != nil {
			return fmt.Errorf("path command %c: %w", c.Op, err)
		}
		c.Args = append(c.Args, v)
	}
	want := map[byte]int{'M': 2, 'L': 2, 'Q': 4, 'C': 6, 'Z': 0}
	n, ok := want[c.Op]
	if !ok {
		return fmt.Errorf("unsupported path command %q", op)
	}
	if len(c.Args) != n {
		return fmt.Errorf("path command %c takes %d arguments, got %d", c.Op, n, len(c.Args))
	}
	return nil
}

// Control names the interactive handles drawn around a selected object.
type Control string

const (
	ControlTL     Control = "tl"
	ControlTR     Control = "tr"
	ControlBL     Control = "bl"
	ControlBR     Control = "br"
	ControlMT     Control = "mt"
	ControlMB     Control = "mb"
	ControlML     Control = "ml"
	ControlMR     Control = "mr"
	ControlRotate Control = "mtr"
	ControlDelete Control = "delete"
)

// SelectionStyle describes how a selected object is decorated. It is
// interaction state and is not serialized; it is reapplied after loading.
type SelectionStyle struct {
	CornerSize        float64
	Padding           float64
	BorderColor       string
	CornerColor       string
	BorderScaleFactor float64
	BorderDash        []float64
	TransparentCorner bool
}

// Object is a drawable node: a shape, a text run or a group of objects.
//
// Left and Top locate the top-left corner of the unrotated, scaled box in the
// parent's coordinate space; rotation happens about the box centre. Width and
// Height are the unscaled local size. Group children are positioned in the
// group's local space.
type Object struct {
	Type        Type          `json:"type"`
	ID          string        `json:"id,omitempty"`
	Name        string        `json:"name,omitempty"`
	Left        float64       `json:"left"`
	Top         float64       `json:"top"`
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	ScaleX      float64       `json:"scaleX"`
	ScaleY      float64       `json:"scaleY"`
	Angle       float64       `json:"angle"`
	Fill        string        `json:"fill,omitempty"`
	Stroke      string        `json:"stroke,omitempty"`
	StrokeWidth float64       `json:"strokeWidth,omitempty"`
	Rx          float64       `json:"rx,omitempty"`
	Ry          float64       `json:"ry,omitempty"`
	Text        string        `json:"text,omitempty"`
	FontSize    float64       `json:"fontSize,omitempty"`
	FontFamily  string        `json:"fontFamily,omitempty"`
	TextAlign   string        `json:"textAlign,omitempty"`
	Path        []PathCommand `json:"path,omitempty"`
	Objects     []*Object     `json:"objects,omitempty"`

	Selectable      bool `json:"selectable"`
	Evented         bool `json:"evented"`
	LockScalingFlip bool `json:"lockScalingFlip,omitempty"`

	Style    SelectionStyle   `json:"-"`
	Controls map[Control]bool `json:"-"`
}

// NewObject returns an object of type t with unit scale that takes part in
// selection.
func NewObject(t Type) *Object {
	return &Object{Type: t, ScaleX: 1, ScaleY: 1, Selectable: true, Evented: true}
}

// ScaledWidth is the width after applying ScaleX.
func (o *Object) ScaledWidth() float64 { return o.Width * o.ScaleX }

// ScaledHeight is the height after applying ScaleY.
func (o *Object) ScaledHeight() float64 { return o.Height * o.ScaleY }

// Center returns the centre of the object in its parent's space.
func (o *Object) Center() Point {
	return Point{o.Left + o.ScaledWidth()/2, o.Top + o.ScaledHeight()/2}
}

// SetCenter moves the object so its centre lies at p.
func (o *Object) SetCenter(p Point) {
	o.Left = p.X - o.ScaledWidth()/2
	o.Top = p.Y - o.ScaledHeight()/2
}

// SetScale applies a uniform scale factor.
func (o *Object) SetScale(s float64) {
	o.ScaleX = s
	o.ScaleY = s
}

// Matrix maps object-local coordinates, where the box spans
// (0,0)-(Width,Height), to the parent's space.
func (o *Object) Matrix() Matrix {
	c := o.Center()
	return Translate(c.X, c.Y).
		Multiply(Rotate(o.Angle)).
		Multiply(Scale(o.ScaleX, o.ScaleY)).
		Multiply(Translate(-o.Width/2, -o.Height/2))
}

// Corners returns the four box corners in the parent's space, clockwise from
// the top-left.
func (o *Object) Corners(parent Matrix) [4]Point {
	m := parent.Multiply(o.Matrix())
	return [4]Point{
		m.Apply(Point{0, 0}),
		m.Apply(Point{o.Width, 0}),
		m.Apply(Point{o.Width, o.Height}),
		m.Apply(Point{0, o.Height}),
	}
}

// BoundingRect returns the axis-aligned bounds of the transformed box.
func (o *Object) BoundingRect(parent Matrix) Rect {
	c := o.Corners(parent)
	return boundsOf(c[:])
}

// Contains reports whether p, given in the parent's space, falls inside the
// object's box grown by pad local units.
func (o *Object) Contains(p Point, pad float64) bool {
	local := o.Matrix().Invert().Apply(p)
	return local.X >= -pad && local.X <= o.Width+pad && local.Y >= -pad && local.Y <= o.Height+pad
}

// Editable reports whether a double click should open the object for text
// editing: an editable text, or a group holding one.
func (o *Object) Editable() bool {
	if o.Type == TypeIText {
		return true
	}
	if o.Type != TypeGroup {
		return false
	}
	for _, child := range o.Objects {
		if child.Type == TypeIText {
			return true
		}
	}
	return false
}

// Walk calls fn for o and every descendant in drawing order.
func (o *Object) Walk(fn func(*Object)) {
	if o == nil {
		return
	}
	fn(o)
	for _, child := range o.Objects {
		child.Walk(fn)
	}
}

// Clone returns a deep copy.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	cp := *o
	if o.Path != nil {
		cp.Path = make([]PathCommand, len(o.Path))
		for i, c := range o.Path {
			cp.Path[i] = PathCommand{Op: c.Op, Args: append([]float64(nil), c.Args...)}
		}
	}
	if o.Objects != nil {
		cp.Objects = make([]*Object, len(o.Objects))
		for i, child := range o.Objects {
			cp.Objects[i] = child.Clone()
		}
	}
	if o.Controls != nil {
		cp.Controls = make(map[Control]bool, len(o.Controls))
		for k, v := range o.Controls {
			cp.Controls[k] = v
		}
	}
	cp.Style.BorderDash = append([]float64(nil), o.Style.BorderDash...)
	return &cp
}

// ControlVisible reports whether handle c should be drawn. Unlisted handles
// are visible.
func (o *Object) ControlVisible(c Control) bool {
	if o.Controls == nil {
		return true
	}
	v, ok := o.Controls[c]
	return !ok || v
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
