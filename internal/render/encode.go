package render

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Format is an output image encoding.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	WebP Format = "webp"
)

// DefaultQuality is used when no JPEG or WebP quality is given.
const DefaultQuality = 92

// ParseFormat accepts jpeg, jpg, png and webp.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "jpeg", "jpg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "webp":
		return WebP, nil
	}
	return "", fmt.Errorf("unsupported image format %q", s)
}

// FormatFor picks the format from a file name, falling back to def.
func FormatFor(name string, def Format) Format {
	ext := filepath.Ext(name)
	if ext == "" {
		return def
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return def
	}
	return f
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case PNG:
		return "image/png"
	case WebP:
		return "image/webp"
	}
	return "image/jpeg"
}

// Encode writes img to w. quality applies to JPEG and lossy WebP.
func Encode(w io.Writer, img image.Image, f Format, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	switch f {
	case PNG:
		return imaging.Encode(w, img, imaging.PNG)
	case WebP:
		return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	case JPEG, "":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	}
	return fmt.Errorf("unsupported image format %q", f)
}
