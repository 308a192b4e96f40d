package render

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/example/damagemark/assets"
)

type iconKey struct {
	name string
	size int
}

var iconCache sync.Map // map[iconKey]*image.RGBA

// Icon rasterizes the named handle icon to a size×size square.
func Icon(name string, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("icon %s: invalid size %d", name, size)
	}
	key := iconKey{name, size}
	if v, ok := iconCache.Load(key); ok {
		return v.(*image.RGBA), nil
	}
	data, err := assets.IconSVG(name)
	if err != nil {
		return nil, err
	}
	img, err := RasterizeSVG(data, size, size)
	if err != nil {
		return nil, fmt.Errorf("icon %s: %w", name, err)
	}
	iconCache.Store(key, img)
	return img, nil
}

// RasterizeSVG draws an SVG document scaled into a w×h image.
func RasterizeSVG(data []byte, w, h int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return img, nil
}
