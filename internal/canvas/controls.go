package canvas

import "math"

// ControlLayout sizes the handles around a selected object. All values are in
// canvas pixels.
type ControlLayout struct {
	IconSize      float64
	RotateOffsetY float64
	DeleteOffset  Point
}

// DesktopControls and TouchControls are the two handle layouts.
var (
	DesktopControls = ControlLayout{IconSize: 40, RotateOffsetY: -80, DeleteOffset: Point{60, -60}}
	TouchControls   = ControlLayout{IconSize: 80, RotateOffsetY: -150, DeleteOffset: Point{80, -120}}
)

// ControlPosition places one handle: a point in canvas pixels and the size of
// its square hit area.
type ControlPosition struct {
	Control Control
	Point   Point
	Size    float64
}

var controlAnchors = []struct {
	c    Control
	x, y float64
}{
	{ControlTL, -0.5, -0.5},
	{ControlTR, 0.5, -0.5},
	{ControlBL, -0.5, 0.5},
	{ControlBR, 0.5, 0.5},
	{ControlMT, 0, -0.5},
	{ControlMB, 0, 0.5},
	{ControlML, -0.5, 0},
	{ControlMR, 0.5, 0},
	{ControlRotate, 0, -0.5},
	{ControlDelete, 0.5, -0.5},
}

// Frame describes the padded selection box of an object as seen through vpt.
type Frame struct {
	Center Point
	// AxisX and AxisY are unit vectors along the object's rotated axes.
	AxisX, AxisY Point
	// HalfW and HalfH include padding.
	HalfW, HalfH float64
}

// SelectionFrame returns the padded, rotated box of o in canvas pixels.
func SelectionFrame(o *Object, vpt Matrix) Frame {
	m := vpt.Multiply(o.Matrix())
	origin := m.Apply(Point{0, 0})
	xEdge := m.Apply(Point{o.Width, 0}).Sub(origin)
	yEdge := m.Apply(Point{0, o.Height}).Sub(origin)
	f := Frame{Center: m.Apply(Point{o.Width / 2, o.Height / 2})}
	lx, ly := math.Hypot(xEdge.X, xEdge.Y), math.Hypot(yEdge.X, yEdge.Y)
	rad := o.Angle * math.Pi / 180
	f.AxisX = Point{math.Cos(rad), math.Sin(rad)}
	f.AxisY = Point{-math.Sin(rad), math.Cos(rad)}
	if lx > 0 {
		f.AxisX = Point{xEdge.X / lx, xEdge.Y / lx}
	}
	if ly > 0 {
		f.AxisY = Point{yEdge.X / ly, yEdge.Y / ly}
	}
	f.HalfW = lx/2 + o.Style.Padding
	f.HalfH = ly/2 + o.Style.Padding
	return f
}

// At maps a frame-relative anchor, where (±0.5, ±0.5) are the corners, plus
// an offset along the rotated axes to canvas pixels.
func (f Frame) At(x, y float64, offset Point) Point {
	dx := x*2*f.HalfW + offset.X
	dy := y*2*f.HalfH + offset.Y
	return Point{
		f.Center.X + f.AxisX.X*dx + f.AxisY.X*dy,
		f.Center.Y + f.AxisX.Y*dx + f.AxisY.Y*dy,
	}
}

// Corners returns the padded frame corners clockwise from the top-left.
func (f Frame) Corners() [4]Point {
	return [4]Point{
		f.At(-0.5, -0.5, Point{}),
		f.At(0.5, -0.5, Point{}),
		f.At(0.5, 0.5, Point{}),
		f.At(-0.5, 0.5, Point{}),
	}
}

// ControlPositions lists the visible handles of o in drawing order.
func ControlPositions(o *Object, vpt Matrix, l ControlLayout) []ControlPosition {
	if o == nil {
		return nil
	}
	f := SelectionFrame(o, vpt)
	out := make([]ControlPosition, 0, len(controlAnchors))
	for _, a := range controlAnchors {
		if !o.ControlVisible(a.c) {
			continue
		}
		var off Point
		size := o.Style.CornerSize
		switch a.c {
		case ControlRotate:
			off = Point{0, l.RotateOffsetY}
			size = o.Style.CornerSize * 2
		case ControlDelete:
			off = l.DeleteOffset
			size = o.Style.CornerSize * 2
		}
		out = append(out, ControlPosition{Control: a.c, Point: f.At(a.x, a.y, off), Size: size})
	}
	return out
}

// ControlAt returns the handle of o under p, given in canvas pixels. Later
// handles win so the icons take precedence over corners beneath them.
func ControlAt(o *Object, vpt Matrix, l ControlLayout, p Point) (Control, bool) {
	ps := ControlPositions(o, vpt, l)
	for i := len(ps) - 1; i >= 0; i-- {
		cp := ps[i]
		half := cp.Size / 2
		if math.Abs(p.X-cp.Point.X) <= half && math.Abs(p.Y-cp.Point.Y) <= half {
			return cp.Control, true
		}
	}
	return "", false
}
