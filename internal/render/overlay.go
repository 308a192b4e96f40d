package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/gogpu/gg"

	"github.com/example/damagemark/internal/canvas"
)

// Selection decorates the selected object when rendering for the window.
type Selection struct {
	Object *canvas.Object
	Layout canvas.ControlLayout
	// Editing marks an object being typed into; it gets a plain border and
	// no handles.
	Editing bool
}

var (
	defaultBorder = color.NRGBA{0x01, 0xff, 0xd7, 0xff}
	editingBorder = color.NRGBA{0x00, 0x2d, 0xd1, 0xff}
)

// drawSelection strokes the dashed frame and the corner handles. Points are
// computed in canvas pixels and mapped to output pixels by scale.
func drawSelection(dc *gg.Context, sel *Selection, vpt canvas.Matrix, scale float64) error {
	o := sel.Object
	style := o.Style
	border, ok := parseColor(style.BorderColor)
	if !ok {
		border = defaultBorder
	}
	if sel.Editing {
		border = editingBorder
	}
	dc.SetTransform(gg.Identity())
	f := canvas.SelectionFrame(o, vpt)
	corners := f.Corners()
	for i, p := range corners {
		if i == 0 {
			dc.MoveTo(p.X*scale, p.Y*scale)
		} else {
			dc.LineTo(p.X*scale, p.Y*scale)
		}
	}
	dc.ClosePath()
	dc.SetColor(border)
	dc.SetLineWidth(math.Max(1, style.BorderScaleFactor*scale))
	if len(style.BorderDash) > 0 && !sel.Editing {
		dash := make([]float64, len(style.BorderDash))
		for i, d := range style.BorderDash {
			dash[i] = math.Max(1, d*style.BorderScaleFactor*scale)
		}
		dc.SetDash(dash...)
	}
	err := dc.Stroke()
	dc.ClearDash()
	if err != nil || sel.Editing {
		return err
	}

	corner, ok := parseColor(style.CornerColor)
	if !ok {
		corner = color.White
	}
	for _, cp := range canvas.ControlPositions(o, vpt, sel.Layout) {
		if cp.Control == canvas.ControlRotate || cp.Control == canvas.ControlDelete {
			continue
		}
		r := math.Max(2, style.CornerSize/2*scale)
		dc.DrawCircle(cp.Point.X*scale, cp.Point.Y*scale, r)
		dc.SetColor(corner)
		if err := dc.FillPreserve(); err != nil {
			return err
		}
		dc.SetColor(border)
		dc.SetLineWidth(math.Max(1, scale))
		if err := dc.Stroke(); err != nil {
			return err
		}
	}
	return nil
}

// drawHandleIcons composites the rotate and delete icons with their shadow
// centred on their handle positions.
func drawHandleIcons(dst *image.RGBA, sel *Selection, vpt canvas.Matrix, scale float64) error {
	if sel.Editing {
		return nil
	}
	size := int(math.Round(sel.Layout.IconSize * scale))
	if size <= 0 {
		return nil
	}
	for _, cp := range canvas.ControlPositions(sel.Object, vpt, sel.Layout) {
		var name string
		switch cp.Control {
		case canvas.ControlRotate:
			name = "rotate"
		case canvas.ControlDelete:
			name = "delete"
		default:
			continue
		}
		icon, err := Icon(name, size)
		if err != nil {
			return err
		}
		shaded, shift := WithShadow(icon, HandleShadow)
		at := image.Pt(int(math.Round(cp.Point.X*scale))-size/2, int(math.Round(cp.Point.Y*scale))-size/2).Sub(shift)
		draw.Draw(dst, shaded.Bounds().Add(at), shaded, image.Point{}, draw.Over)
	}
	return nil
}
