// Package render turns a canvas into pixels: the annotated photo for export,
// handle icons and the selection overlay for the window.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/gogpu/gg"

	"github.com/example/damagemark/internal/canvas"
	"github.com/example/damagemark/internal/toolkit"
)

// Options controls Rasterize.
type Options struct {
	// Viewport applies the canvas pan and zoom.
	Viewport bool
	// Scale is the number of output pixels per canvas pixel; 0 means 1.
	Scale float64
	// Background fills the area behind the photo; nil means white.
	Background color.Color
	// Selection, when set, draws the selection frame and handles.
	Selection *Selection
	// Photo, when set, reuses the converted background across calls and
	// draws it at output resolution instead of full photo resolution.
	Photo *PhotoCache
}

// Rasterize draws the background photo and every object of c.
func Rasterize(c *canvas.Canvas, opts Options) (*image.RGBA, error) {
	if c == nil {
		return nil, fmt.Errorf("rasterize: nil canvas")
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Round(c.Width * scale))
	h := int(math.Round(c.Height * scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("rasterize: empty canvas %gx%g", c.Width, c.Height)
	}
	dc := gg.NewContext(w, h)
	defer dc.Close()
	bg := opts.Background
	if bg == nil {
		bg = color.White
	}
	dc.ClearWithColor(gg.FromColor(bg))

	base := canvas.Scale(scale, scale)
	if opts.Viewport {
		base = base.Multiply(c.Viewport())
	}
	if c.Background != nil && c.Background.Image != nil {
		dc.SetTransform(ggMatrix(base))
		k := lineScale(base)
		dc.DrawImageEx(opts.Photo.image(c.Background.Image, c.Width*k, c.Height*k), gg.DrawImageOptions{
			DstWidth:      c.Width,
			DstHeight:     c.Height,
			Interpolation: gg.InterpBilinear,
		})
	}
	for _, o := range c.Objects() {
		if err := drawObject(dc, o, base); err != nil {
			return nil, fmt.Errorf("draw %s %s: %w", o.Type, o.ID, err)
		}
	}
	sel := opts.Selection
	if sel != nil && sel.Object == nil {
		sel = nil
	}
	vpt := canvas.Identity
	if opts.Viewport {
		vpt = c.Viewport()
	}
	if sel != nil {
		if err := drawSelection(dc, sel, vpt, scale); err != nil {
			return nil, fmt.Errorf("draw selection: %w", err)
		}
	}
	if err := dc.FlushGPU(); err != nil {
		return nil, err
	}
	out := toRGBA(dc.Image())
	if sel != nil {
		if err := drawHandleIcons(out, sel, vpt, scale); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ggMatrix converts canvas order [a b c d e f] to gg's row layout.
func ggMatrix(m canvas.Matrix) gg.Matrix {
	return gg.Matrix{A: m[0], B: m[2], C: m[4], D: m[1], E: m[3], F: m[5]}
}

// lineScale is the factor by which m stretches stroke widths.
func lineScale(m canvas.Matrix) float64 {
	return math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
}

func drawObject(dc *gg.Context, o *canvas.Object, parent canvas.Matrix) error {
	m := parent.Multiply(o.Matrix())
	switch o.Type {
	case canvas.TypeGroup:
		for _, child := range o.Objects {
			if err := drawObject(dc, child, m); err != nil {
				return err
			}
		}
		return nil
	case canvas.TypeText, canvas.TypeIText:
		return drawText(dc, o, m)
	}
	dc.SetTransform(ggMatrix(m))
	trace := func() {
		if o.Type == canvas.TypeRect {
			roundedRect(dc, o.Width, o.Height, o.Rx, o.Ry)
		} else {
			tracePath(dc, o.Path)
		}
	}
	if fill, ok := parseColor(o.Fill); ok {
		trace()
		dc.SetColor(fill)
		if err := dc.Fill(); err != nil {
			return err
		}
	}
	if stroke, ok := parseColor(o.Stroke); ok && o.StrokeWidth > 0 {
		trace()
		dc.SetColor(stroke)
		dc.SetLineWidth(o.StrokeWidth * lineScale(m))
		if err := dc.Stroke(); err != nil {
			return err
		}
	}
	return nil
}

func tracePath(dc *gg.Context, cmds []canvas.PathCommand) {
	for _, c := range cmds {
		a := c.Args
		switch c.Op {
		case 'M':
			dc.MoveTo(a[0], a[1])
		case 'L':
			dc.LineTo(a[0], a[1])
		case 'Q':
			dc.QuadraticTo(a[0], a[1], a[2], a[3])
		case 'C':
			dc.CubicTo(a[0], a[1], a[2], a[3], a[4], a[5])
		case 'Z':
			dc.ClosePath()
		}
	}
}

// roundedRect traces a w×h box with elliptical corners through the current
// transform.
func roundedRect(dc *gg.Context, w, h, rx, ry float64) {
	if ry == 0 {
		ry = rx
	}
	rx = math.Min(rx, w/2)
	ry = math.Min(ry, h/2)
	if rx <= 0 || ry <= 0 {
		dc.DrawRectangle(0, 0, w, h)
		return
	}
	dc.MoveTo(rx, 0)
	dc.LineTo(w-rx, 0)
	dc.QuadraticTo(w, 0, w, ry)
	dc.LineTo(w, h-ry)
	dc.QuadraticTo(w, h, w-rx, h)
	dc.LineTo(rx, h)
	dc.QuadraticTo(0, h, 0, h-ry)
	dc.LineTo(0, ry)
	dc.QuadraticTo(0, 0, rx, 0)
	dc.ClosePath()
}

// parseColor accepts #RRGGBB and #RRGGBBAA; empty, "none" and
// "transparent" mean no paint.
func parseColor(s string) (color.Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "transparent":
		return nil, false
	}
	c, err := toolkit.ParseHex(s)
	if err != nil {
		return nil, false
	}
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]}, true
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
