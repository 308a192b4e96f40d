package render

import (
	"image"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
)

// PhotoCache keeps the background photo converted for gg and downscaled to
// the size it was last drawn at. Frames drawn at the same size and zoom
// reuse it. A nil *PhotoCache converts the full photo on every call.
type PhotoCache struct {
	mu   sync.Mutex
	src  image.Image
	w, h int
	buf  *gg.ImageBuf

	// builds counts conversions, for tests.
	builds int
}

// image returns src ready to be drawn w×h output pixels large. The photo is
// never upscaled.
func (pc *PhotoCache) image(src image.Image, w, h float64) *gg.ImageBuf {
	if pc == nil {
		return gg.ImageBufFromImage(src)
	}
	b := src.Bounds()
	tw := min(int(math.Ceil(w)), b.Dx())
	th := min(int(math.Ceil(h)), b.Dy())
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.buf != nil && pc.src == src && pc.w == tw && pc.h == th {
		return pc.buf
	}
	scaled := src
	if tw > 0 && th > 0 && (tw < b.Dx() || th < b.Dy()) {
		scaled = imaging.Resize(src, tw, th, imaging.Linear)
	}
	pc.src, pc.w, pc.h = src, tw, th
	pc.buf = gg.ImageBufFromImage(scaled)
	pc.builds++
	return pc.buf
}
