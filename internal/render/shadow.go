package render

import (
	"image"
	"image/color"
	"image/draw"
)

// Shadow describes a soft drop shadow cast by the opaque pixels of an image.
type Shadow struct {
	Blur   int
	Offset image.Point
	Color  color.RGBA
}

// HandleShadow is the shadow drawn under the delete and rotate handles.
var HandleShadow = Shadow{Blur: 4, Color: color.RGBA{A: 0x55}}

// WithShadow returns img composited over its shadow. The result is grown to
// fit the blur and starts at the origin; the returned point is where img's
// top-left corner landed inside it.
func WithShadow(img *image.RGBA, sh Shadow) (*image.RGBA, image.Point) {
	if img == nil || img.Bounds().Empty() || sh.Color.A == 0 {
		return img, image.Point{}
	}
	blur := max(sh.Blur, 0)
	src := img.Bounds()
	padded := src.Inset(-blur)
	cast := padded.Add(sh.Offset)
	all := src.Union(cast)
	shift := src.Min.Sub(all.Min)

	mask := image.NewAlpha(padded.Sub(padded.Min))
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			if a := img.RGBAAt(x, y).A; a > 0 {
				mask.SetAlpha(x-padded.Min.X, y-padded.Min.Y, color.Alpha{A: a})
			}
		}
	}
	mask = boxBlur(mask, blur)

	dst := image.NewRGBA(all.Sub(all.Min))
	draw.DrawMask(dst, mask.Bounds().Add(cast.Min.Sub(all.Min)), image.NewUniform(sh.Color), image.Point{}, mask, image.Point{}, draw.Over)
	draw.Draw(dst, src.Sub(all.Min), img, src.Min, draw.Over)
	return dst, shift
}

// boxBlur averages src over a (2r+1) square, one axis at a time.
func boxBlur(src *image.Alpha, r int) *image.Alpha {
	out := image.NewAlpha(src.Bounds())
	if r <= 0 {
		copy(out.Pix, src.Pix)
		return out
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	tmp := image.NewAlpha(src.Bounds())
	sums := make([]int, max(w, h)+1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sums[x+1] = sums[x] + int(src.Pix[y*src.Stride+x])
		}
		for x := 0; x < w; x++ {
			lo, hi := max(x-r, 0), min(x+r, w-1)
			tmp.Pix[y*tmp.Stride+x] = uint8((sums[hi+1] - sums[lo]) / (hi - lo + 1))
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			sums[y+1] = sums[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			lo, hi := max(y-r, 0), min(y+r, h-1)
			out.Pix[y*out.Stride+x] = uint8((sums[hi+1] - sums[lo]) / (hi - lo + 1))
		}
	}
	return out
}
