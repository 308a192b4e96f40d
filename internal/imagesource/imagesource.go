// Package imagesource fetches the photo being annotated from a URL, a data
// URL, a file or the clipboard.
package imagesource

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// ClipboardSource is the source name that reads an image from the clipboard.
const ClipboardSource = "clipboard:"

// maxDownload bounds how much is read from a URL.
const maxDownload = 64 << 20

// Loader resolves image sources. The zero value is not usable; use New.
type Loader struct {
	client    *http.Client
	logger    *slog.Logger
	clipboard func() ([]byte, error)
	clipText  func() (string, error)
	maxWidth  int
	maxHeight int
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient replaces the client used for http and https sources.
func WithHTTPClient(c *http.Client) Option { return func(l *Loader) { l.client = c } }

// WithLogger sets the structured logger.
func WithLogger(lg *slog.Logger) Option { return func(l *Loader) { l.logger = lg } }

// WithClipboard sets the function that returns clipboard image bytes.
func WithClipboard(fn func() ([]byte, error)) Option { return func(l *Loader) { l.clipboard = fn } }

// WithClipboardText sets the function that returns clipboard text. When the
// clipboard holds no image, a path or URL copied as text is loaded instead.
func WithClipboardText(fn func() (string, error)) Option {
	return func(l *Loader) { l.clipText = fn }
}

// WithMaxSize downsizes photos larger than w×h. Zero disables the limit.
func WithMaxSize(w, h int) Option {
	return func(l *Loader) { l.maxWidth, l.maxHeight = w, h }
}

// New returns a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches and decodes src.
func (l *Loader) Load(ctx context.Context, src string) (image.Image, error) {
	data, err := l.read(ctx, src)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", describe(src), err)
	}
	if l.maxWidth > 0 || l.maxHeight > 0 {
		img = Fit(img, l.maxWidth, l.maxHeight)
	}
	b := img.Bounds()
	l.logger.Debug("image loaded", "src", describe(src), "width", b.Dx(), "height", b.Dy())
	return img, nil
}

func (l *Loader) read(ctx context.Context, src string) ([]byte, error) {
	switch {
	case src == "":
		return nil, fmt.Errorf("no image source given")
	case src == ClipboardSource:
		return l.readClipboard(ctx)
	case strings.HasPrefix(src, "data:"):
		return decodeDataURL(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.fetch(ctx, src)
	case strings.HasPrefix(src, "file://"):
		u, err := url.Parse(src)
		if err != nil {
			return nil, err
		}
		return os.ReadFile(u.Path)
	}
	return os.ReadFile(src)
}

func (l *Loader) readClipboard(ctx context.Context) ([]byte, error) {
	if l.clipboard == nil {
		return nil, fmt.Errorf("clipboard images are not available")
	}
	data, err := l.clipboard()
	if err == nil || l.clipText == nil {
		return data, err
	}
	text, terr := l.clipText()
	text = strings.TrimSpace(text)
	if terr != nil || text == "" || text == ClipboardSource || strings.Contains(text, "\n") {
		return nil, err
	}
	l.logger.Debug("loading source named by clipboard text", "src", describe(text))
	return l.read(ctx, text)
}

func (l *Loader) fetch(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %s", src, resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") && !strings.HasPrefix(ct, "application/octet-stream") {
		return nil, fmt.Errorf("fetch %s: not an image (Content-Type: %s)", src, ct)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	return data, nil
}

// decodeDataURL extracts the payload of a base64 or plain data URL.
func decodeDataURL(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URL")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data URL: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data URL: %w", err)
	}
	return []byte(s), nil
}

// Decode reads JPEG, PNG, GIF, BMP, TIFF or WebP data. EXIF orientation is
// applied so the photo is upright.
func Decode(data []byte) (image.Image, error) {
	if img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true)); err == nil {
		return img, nil
	}
	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unknown or unsupported image format")
	}
	return img, nil
}

// Fit scales img down to fit within maxW×maxH, keeping its aspect ratio.
// Smaller images are returned unchanged.
func Fit(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	if maxW <= 0 {
		maxW = b.Dx()
	}
	if maxH <= 0 {
		maxH = b.Dy()
	}
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}

// describe shortens data URLs for messages.
func describe(src string) string {
	if strings.HasPrefix(src, "data:") && len(src) > 32 {
		return src[:32] + "..."
	}
	return src
}
