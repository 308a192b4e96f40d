package render

import (
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/example/damagemark/internal/canvas"
)

// drawText fills the glyph outlines of a text object through m, so text
// rotates and scales with its object like any other shape.
func drawText(dc *gg.Context, o *canvas.Object, m canvas.Matrix) error {
	fill, ok := parseColor(o.Fill)
	if !ok || o.Text == "" {
		return nil
	}
	face, err := canvas.Face(o.FontSize)
	if err != nil {
		return err
	}
	f := canvas.TextFont()
	size := o.FontSize
	if size <= 0 {
		size = 16
	}
	ppem := fixed.Int26_6(size * 64)
	ascent := float64(face.Metrics().Ascent) / 64
	lineH := size * canvas.LineHeight

	dc.SetTransform(ggMatrix(m))
	var buf sfnt.Buffer
	for i, line := range strings.Split(o.Text, "\n") {
		x := 0.0
		w := float64(font.MeasureString(face, line)) / 64
		switch o.TextAlign {
		case "center":
			x = (o.Width - w) / 2
		case "right":
			x = o.Width - w
		}
		y := float64(i)*lineH + ascent
		prev, hasPrev := sfnt.GlyphIndex(0), false
		for _, r := range line {
			idx, err := f.GlyphIndex(&buf, r)
			if err != nil || idx == 0 {
				continue
			}
			if hasPrev {
				if k, err := f.Kern(&buf, prev, idx, ppem, font.HintingNone); err == nil {
					x += float64(k) / 64
				}
			}
			segs, err := f.LoadGlyph(&buf, idx, ppem, nil)
			if err != nil {
				return err
			}
			traceGlyph(dc, segs, x, y)
			adv, err := f.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
			if err != nil {
				return err
			}
			x += float64(adv) / 64
			prev, hasPrev = idx, true
		}
	}
	dc.SetColor(fill)
	dc.SetFillRule(gg.FillRuleNonZero)
	return dc.Fill()
}

func traceGlyph(dc *gg.Context, segs sfnt.Segments, x, y float64) {
	pt := func(p fixed.Point26_6) (float64, float64) {
		return x + float64(p.X)/64, y + float64(p.Y)/64
	}
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			dc.MoveTo(pt(s.Args[0]))
		case sfnt.SegmentOpLineTo:
			dc.LineTo(pt(s.Args[0]))
		case sfnt.SegmentOpQuadTo:
			cx, cy := pt(s.Args[0])
			px, py := pt(s.Args[1])
			dc.QuadraticTo(cx, cy, px, py)
		case sfnt.SegmentOpCubeTo:
			c1x, c1y := pt(s.Args[0])
			c2x, c2y := pt(s.Args[1])
			px, py := pt(s.Args[2])
			dc.CubicTo(c1x, c1y, c2x, c2y, px, py)
		}
	}
}
