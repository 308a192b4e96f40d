// Package theme holds the colours of the editor window chrome.
package theme

import (
	"fmt"
	"image/color"
	"reflect"
	"strings"
)

// Theme defines the color palette for the window around the canvas.
type Theme struct {
	Name string

	// General
	Background       color.RGBA // Window background behind the toolbar and canvas
	Foreground       color.RGBA // Main text color
	CanvasBackground color.RGBA // Area around the photo when it does not fill the canvas

	// Toolbar
	ToolbarBackground      color.RGBA
	ButtonBackground       color.RGBA
	ButtonBackgroundHover  color.RGBA
	ButtonBackgroundActive color.RGBA // Selected sub-tool, colour or edit mode
	ButtonText             color.RGBA
	ButtonTextDisabled     color.RGBA
	ButtonBorder           color.RGBA
	SwatchBorder           color.RGBA

	// Loading overlay
	Overlay     color.RGBA
	OverlayText color.RGBA
}

// Default returns the hardcoded default light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:                   "Default",
		Background:             color.RGBA{238, 238, 238, 255},
		Foreground:             color.RGBA{0, 0, 0, 255},
		CanvasBackground:       color.RGBA{255, 255, 255, 255},
		ToolbarBackground:      color.RGBA{255, 255, 255, 255},
		ButtonBackground:       color.RGBA{255, 255, 255, 255},
		ButtonBackgroundHover:  color.RGBA{230, 230, 230, 255},
		ButtonBackgroundActive: color.RGBA{1, 255, 215, 255},
		ButtonText:             color.RGBA{0, 0, 0, 255},
		ButtonTextDisabled:     color.RGBA{170, 170, 170, 255},
		ButtonBorder:           color.RGBA{200, 200, 200, 255},
		SwatchBorder:           color.RGBA{0, 0, 0, 255},
		Overlay:                color.RGBA{0, 0, 0, 128},
		OverlayText:            color.RGBA{255, 255, 255, 255},
	}
}

var rgbaType = reflect.TypeOf(color.RGBA{})

// Set assigns one field from its rc key, matched case-insensitively.
// Unknown keys are ignored.
func (t *Theme) Set(key, value string) error {
	if strings.EqualFold(key, "Name") {
		t.Name = value
		return nil
	}
	val := reflect.ValueOf(t).Elem()
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !strings.EqualFold(f.Name, key) || f.Type != rgbaType {
			continue
		}
		col, err := ParseColor(value)
		if err != nil {
			return fmt.Errorf("invalid color for key %s: %w", key, err)
		}
		val.Field(i).Set(reflect.ValueOf(col))
		return nil
	}
	return nil
}

// String returns the theme in the "Key: #RRGGBB" form Parse reads.
func (t *Theme) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", t.Name)
	val := reflect.ValueOf(t).Elem()
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if f.Type != rgbaType {
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\n", f.Name, Hex(val.Field(i).Interface().(color.RGBA)))
	}
	return sb.String()
}

// Hex formats c as #RRGGBB, or #RRGGBBAA when it is not opaque.
func Hex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
