package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/example/damagemark/internal/canvas"
)

func isRed(c color.RGBA) bool   { return c.R > 200 && c.G < 60 && c.B < 60 }
func isWhite(c color.RGBA) bool { return c.R > 240 && c.G > 240 && c.B > 240 }

func TestRasterizeFillsRect(t *testing.T) {
	c := canvas.New(40, 30)
	r := canvas.NewRect(10, 10)
	r.Left, r.Top = 5, 5
	r.Fill = "#ff0000"
	c.Add(r)

	img, err := Rasterize(c, Options{})
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 40, 30) {
		t.Fatalf("bounds %v", got)
	}
	if !isRed(img.RGBAAt(10, 10)) {
		t.Errorf("inside pixel = %v, want red", img.RGBAAt(10, 10))
	}
	if !isWhite(img.RGBAAt(30, 25)) {
		t.Errorf("outside pixel = %v, want white", img.RGBAAt(30, 25))
	}
}

func TestRasterizeAppliesScaleAndViewport(t *testing.T) {
	c := canvas.New(40, 40)
	r := canvas.NewRect(10, 10)
	r.Fill = "#ff0000"
	c.Add(r)
	c.ZoomToPoint(canvas.Point{}, 2)

	img, err := Rasterize(c, Options{Viewport: true, Scale: 0.5})
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if img.Bounds().Dx() != 20 {
		t.Fatalf("width %d, want 20", img.Bounds().Dx())
	}
	// Zoom 2 and scale 0.5 cancel out.
	if !isRed(img.RGBAAt(5, 5)) {
		t.Errorf("pixel (5,5) = %v, want red", img.RGBAAt(5, 5))
	}
	if !isWhite(img.RGBAAt(15, 15)) {
		t.Errorf("pixel (15,15) = %v, want white", img.RGBAAt(15, 15))
	}
}

func TestRasterizeBackground(t *testing.T) {
	photo := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for i := range photo.Pix {
		photo.Pix[i] = 0
		if i%4 == 2 || i%4 == 3 {
			photo.Pix[i] = 255
		}
	}
	c := canvas.New(20, 20)
	c.SetBackgroundImage("photo.png", photo)
	img, err := Rasterize(c, Options{})
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if got := img.RGBAAt(10, 10); got.B < 200 || got.R > 50 {
		t.Errorf("background pixel = %v, want blue", got)
	}
}

func TestPhotoCacheDownscalesAndReuses(t *testing.T) {
	photo := image.NewRGBA(image.Rect(0, 0, 400, 300))
	for i := range photo.Pix {
		if i%4 == 2 || i%4 == 3 {
			photo.Pix[i] = 255
		}
	}
	c := canvas.New(400, 300)
	c.SetBackgroundImage("photo.png", photo)
	cache := &PhotoCache{}
	opts := Options{Scale: 0.25, Photo: cache}

	for i := 0; i < 3; i++ {
		img, err := Rasterize(c, opts)
		if err != nil {
			t.Fatalf("rasterize: %v", err)
		}
		if img.Bounds().Dx() != 100 {
			t.Fatalf("width %d, want 100", img.Bounds().Dx())
		}
		if got := img.RGBAAt(50, 37); got.B < 200 || got.R > 50 {
			t.Fatalf("background pixel = %v, want blue", got)
		}
	}
	if cache.builds != 1 {
		t.Fatalf("photo converted %d times, want 1", cache.builds)
	}
	if cache.w != 100 || cache.h != 75 {
		t.Fatalf("cached at %dx%d, want 100x75", cache.w, cache.h)
	}

	if _, err := Rasterize(c, Options{Scale: 2, Photo: cache}); err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if cache.builds != 2 || cache.w != 400 || cache.h != 300 {
		t.Fatalf("upscaled frame: builds %d size %dx%d, want native 400x300", cache.builds, cache.w, cache.h)
	}
}

func TestRasterizeText(t *testing.T) {
	c := canvas.New(120, 40)
	txt := canvas.NewText(canvas.TypeText, "HHHH", 24, "#000000")
	txt.Left, txt.Top = 4, 4
	c.Add(txt)
	img, err := Rasterize(c, Options{})
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	dark := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 120; x++ {
			if img.RGBAAt(x, y).R < 100 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatalf("no glyph pixels drawn")
	}
}

func TestRasterizeSelectionDrawsHandles(t *testing.T) {
	c := canvas.New(400, 400)
	r := canvas.NewRect(100, 100)
	r.Left, r.Top = 150, 150
	r.Style = canvas.SelectionStyle{CornerSize: 30, Padding: 10, BorderColor: "#01FFD7", CornerColor: "#FFFFFF", BorderScaleFactor: 3}
	c.Add(r)
	plain, err := Rasterize(c, Options{})
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	sel, err := Rasterize(c, Options{Selection: &Selection{Object: r, Layout: canvas.DesktopControls}})
	if err != nil {
		t.Fatalf("rasterize with selection: %v", err)
	}
	// Delete handle sits right of and above the top-right corner.
	at := image.Pt(260+60, 140-60)
	if plain.RGBAAt(at.X, at.Y) == sel.RGBAAt(at.X, at.Y) {
		t.Errorf("expected delete icon at %v", at)
	}
}

func TestEncodeFormats(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for _, f := range []Format{JPEG, PNG, WebP} {
		var buf bytes.Buffer
		if err := Encode(&buf, img, f, 80); err != nil {
			t.Fatalf("encode %s: %v", f, err)
		}
		var err error
		switch f {
		case PNG:
			_, err = png.Decode(&buf)
		case WebP:
			_, err = webp.Decode(&buf)
		default:
			_, err = imaging.Decode(&buf)
		}
		if err != nil {
			t.Errorf("decode %s: %v", f, err)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"": JPEG, "jpg": JPEG, ".PNG": PNG, "webp": WebP}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("bmp"); err == nil {
		t.Errorf("bmp should be rejected")
	}
	if got := FormatFor("out.webp", JPEG); got != WebP {
		t.Errorf("FormatFor = %v", got)
	}
}

func TestIconOpaqueCentre(t *testing.T) {
	for _, name := range []string{"delete", "rotate"} {
		img, err := Icon(name, 40)
		if err != nil {
			t.Fatalf("icon %s: %v", name, err)
		}
		if img.RGBAAt(20, 20).A == 0 && img.RGBAAt(5, 20).A == 0 {
			t.Errorf("icon %s is empty", name)
		}
	}
	if _, err := Icon("missing", 40); err == nil {
		t.Errorf("missing icon should fail")
	}
}
