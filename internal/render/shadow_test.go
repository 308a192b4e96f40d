package render

import (
	"image"
	"image/color"
	"testing"
)

func TestWithShadowGrowsBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	img.Set(5, 5, color.RGBA{R: 255, A: 255})

	sh := Shadow{Blur: 4, Offset: image.Pt(8, 6), Color: color.RGBA{A: 255}}
	out, shift := WithShadow(img, sh)
	if want := image.Rect(0, 0, 22, 20); !out.Bounds().Eq(want) {
		t.Fatalf("bounds %v, want %v", out.Bounds(), want)
	}
	if shift != (image.Point{}) {
		t.Errorf("shift = %v, want origin", shift)
	}
	if out.RGBAAt(13, 11).A == 0 {
		t.Fatalf("expected shadow alpha under the offset pixel")
	}
	if out.RGBAAt(0, 19).A != 0 {
		t.Errorf("far corner should stay transparent")
	}
}

func TestWithShadowTransparentColour(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	out, _ := WithShadow(img, Shadow{Blur: 12, Offset: image.Pt(20, 10)})
	if out != img {
		t.Fatalf("a transparent shadow should return the input")
	}
}

func TestWithShadowSpreadsBlur(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{A: 255})
	out, shift := WithShadow(img, Shadow{Blur: 2, Color: color.RGBA{A: 255}})
	if shift != image.Pt(2, 2) {
		t.Fatalf("shift = %v, want (2,2)", shift)
	}
	if out.RGBAAt(shift.X+1, shift.Y+1).A == 0 {
		t.Fatalf("blur should reach the neighbouring pixel")
	}
	if out.RGBAAt(shift.X, shift.Y).A != 255 {
		t.Errorf("source pixel should stay opaque")
	}
}
