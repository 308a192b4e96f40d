// Package toolkit describes the palette, damage tags and sub-tools offered
// by the editor.
package toolkit

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Color is a named palette entry.
type Color struct {
	Name string `yaml:"name"`
	Hex  string `yaml:"hex"`
}

// Toolkit is the set of choices presented in the toolbar.
type Toolkit struct {
	DefaultColor string   `yaml:"default_color"`
	Placeholder  string   `yaml:"placeholder"`
	FontSize     float64  `yaml:"font_size"`
	ZoomFactor   float64  `yaml:"zoom_factor"`
	Palette      []Color  `yaml:"palette"`
	DarkColors   []string `yaml:"dark_colors"`
	Tags         []string `yaml:"tags"`
}

// Default returns the built-in toolkit.
func Default() *Toolkit {
	tk, err := Load(bytes.NewReader(defaultYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded toolkit: %v", err))
	}
	return tk
}

// Load reads a toolkit definition. Missing fields fall back to the built-in
// values when loaded through LoadFile.
func Load(r io.Reader) (*Toolkit, error) {
	var tk Toolkit
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&tk); err != nil {
		return nil, fmt.Errorf("decode toolkit: %w", err)
	}
	if err := tk.validate(); err != nil {
		return nil, err
	}
	return &tk, nil
}

// LoadFile reads a toolkit file, using the built-in toolkit for an empty
// path.
func LoadFile(path string) (*Toolkit, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tk, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	def := Default()
	if tk.Placeholder == "" {
		tk.Placeholder = def.Placeholder
	}
	if tk.FontSize == 0 {
		tk.FontSize = def.FontSize
	}
	if tk.ZoomFactor == 0 {
		tk.ZoomFactor = def.ZoomFactor
	}
	return tk, nil
}

func (t *Toolkit) validate() error {
	if len(t.Palette) == 0 {
		return fmt.Errorf("toolkit palette is empty")
	}
	for _, c := range t.Palette {
		if _, err := ParseHex(c.Hex); err != nil {
			return fmt.Errorf("palette %s: %w", c.Name, err)
		}
	}
	for _, name := range t.DarkColors {
		if _, ok := t.Color(name); !ok {
			return fmt.Errorf("dark color %q is not in the palette", name)
		}
	}
	if t.DefaultColor != "" {
		if _, ok := t.Color(t.DefaultColor); !ok {
			return fmt.Errorf("default color %q is not in the palette", t.DefaultColor)
		}
	}
	return nil
}

// Color resolves a palette name or a literal hex value.
func (t *Toolkit) Color(name string) (string, bool) {
	if strings.HasPrefix(name, "#") {
		if _, err := ParseHex(name); err == nil {
			return name, true
		}
		return "", false
	}
	for _, c := range t.Palette {
		if strings.EqualFold(c.Name, name) {
			return c.Hex, true
		}
	}
	return "", false
}

// Initial returns the colour selected when the editor starts.
func (t *Toolkit) Initial() string {
	if hex, ok := t.Color(t.DefaultColor); ok {
		return hex
	}
	return t.Palette[0].Hex
}

// ContrastText returns the text colour drawn on top of fill: white on the
// dark palette entries, black otherwise.
func (t *Toolkit) ContrastText(fill string) string {
	white, black := "#ffffff", "#000000"
	if hex, ok := t.Color("white"); ok {
		white = hex
	}
	if hex, ok := t.Color("black"); ok {
		black = hex
	}
	for _, name := range t.DarkColors {
		if hex, ok := t.Color(name); ok && strings.EqualFold(hex, fill) {
			return white
		}
	}
	return black
}

// Tag returns the label of the n-th tag, counting from 1.
func (t *Toolkit) Tag(n int) (string, error) {
	if n < 1 || n > len(t.Tags) {
		return "", fmt.Errorf("tag %d out of range 1-%d", n, len(t.Tags))
	}
	return t.Tags[n-1], nil
}

// ParseHex decodes #RRGGBB or #RRGGBBAA into its components.
func ParseHex(s string) ([4]uint8, error) {
	trimmed := strings.TrimSpace(s)
	hex := strings.TrimPrefix(trimmed, "#")
	if hex == trimmed || (len(hex) != 6 && len(hex) != 8) {
		return [4]uint8{}, fmt.Errorf("invalid colour %q", s)
	}
	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return [4]uint8{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	if len(hex) == 6 {
		return [4]uint8{uint8(val >> 16), uint8(val >> 8), uint8(val), 255}, nil
	}
	return [4]uint8{uint8(val >> 24), uint8(val >> 16), uint8(val >> 8), uint8(val)}, nil
}
