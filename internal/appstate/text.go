package appstate

import (
	"image"
	"image/color"
	"log"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	goregularFont *opentype.Font
	messageFace   font.Face
	faces         sync.Map // map[float64]font.Face
)

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	goregularFont = f
	messageFace, err = faceForSize(32)
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

// faceForSize returns a cached Go Regular face at size points.
func faceForSize(size float64) (font.Face, error) {
	if v, ok := faces.Load(size); ok {
		return v.(font.Face), nil
	}
	face, err := opentype.NewFace(goregularFont, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	faces.Store(size, face)
	return face, nil
}

// labelWidth measures s in the toolbar font.
func labelWidth(s string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(s).Ceil()
}

// drawLabel writes s in the toolbar font with its baseline at (x, y).
func drawLabel(dst *image.RGBA, x, y int, s string, col color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

// drawCentred writes s in face centred on r.
func drawCentred(dst *image.RGBA, r image.Rectangle, s string, face font.Face, col color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face}
	w := d.MeasureString(s).Ceil()
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	x := r.Min.X + (r.Dx()-w)/2
	y := r.Min.Y + (r.Dy()-ascent-descent)/2 + ascent
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}
