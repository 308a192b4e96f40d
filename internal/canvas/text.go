package canvas

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	// LineHeight is the line spacing as a multiple of the font size.
	LineHeight = 1.16
	// DefaultFontFamily is recorded on new text objects.
	DefaultFontFamily = "Noto Sans Thai"
)

var (
	fontMu    sync.RWMutex
	textFont  *opentype.Font
	faceCache = map[float64]font.Face{}
)

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("parse goregular: %v", err))
	}
	textFont = f
}

// LoadFont replaces the face used to measure and draw text with the
// TrueType or OpenType font at path. An empty path keeps the built-in face.
func LoadFont(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", path, err)
	}
	fontMu.Lock()
	textFont = f
	faceCache = map[float64]font.Face{}
	fontMu.Unlock()
	return nil
}

// TextFont returns the font used for text objects.
func TextFont() *opentype.Font {
	fontMu.RLock()
	defer fontMu.RUnlock()
	return textFont
}

// Face returns the text face at size points.
func Face(size float64) (font.Face, error) {
	if size <= 0 {
		size = 16
	}
	size = math.Round(size*4) / 4
	fontMu.RLock()
	face, ok := faceCache[size]
	f := textFont
	fontMu.RUnlock()
	if ok {
		return face, nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, err
	}
	fontMu.Lock()
	faceCache[size] = face
	fontMu.Unlock()
	return face, nil
}

// MeasureText returns the unscaled box of a text run: the widest line and
// the stacked line heights.
func MeasureText(text string, size float64) (width, height float64) {
	face, err := Face(size)
	if err != nil {
		return 0, 0
	}
	lines := strings.Split(text, "\n")
	d := &font.Drawer{Face: face}
	for _, line := range lines {
		w := float64(d.MeasureString(line)) / 64
		width = math.Max(width, w)
	}
	height = float64(len(lines)) * size * LineHeight
	return width, height
}

// FitText recomputes the box of a text object from its string.
func FitText(o *Object) {
	if !o.Type.IsText() {
		return
	}
	o.Width, o.Height = MeasureText(o.Text, o.FontSize)
}

// NewText returns a text object of type t (TypeText or TypeIText) sized to
// its content.
func NewText(t Type, text string, size float64, fill string) *Object {
	o := NewObject(t)
	o.Text = text
	o.FontSize = size
	o.FontFamily = DefaultFontFamily
	o.Fill = fill
	if t == TypeIText {
		o.TextAlign = "center"
	}
	FitText(o)
	return o
}
