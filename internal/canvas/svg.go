package canvas

import (
	"fmt"
	"io"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// FromSVG parses an SVG document and returns its outlines as a single path
// object filled with fill. The path is normalised so its bounding box starts
// at the local origin.
func FromSVG(r io.Reader, fill string) (*Object, error) {
	icon, err := oksvg.ReadIconStream(r, oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	var cmds []PathCommand
	for _, sp := range icon.SVGPaths {
		c, err := pathCommands(sp.Path)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, c...)
	}
	if len(cmds) == 0 {
		return nil, fmt.Errorf("svg contains no paths")
	}
	o := NewObject(TypePath)
	o.Fill = fill
	o.Path, o.Width, o.Height = normalizePath(cmds)
	return o, nil
}

func pathCommands(p rasterx.Path) ([]PathCommand, error) {
	var out []PathCommand
	f := func(v fixed.Int26_6) float64 { return float64(v) / 64 }
	args := func(vals []fixed.Int26_6) []float64 {
		a := make([]float64, len(vals))
		for i, v := range vals {
			a[i] = f(v)
		}
		return a
	}
	for i := 0; i < len(p); {
		switch rasterx.PathCommand(p[i]) {
		case rasterx.PathMoveTo:
			if i+3 > len(p) {
				return nil, fmt.Errorf("truncated move")
			}
			out = append(out, PathCommand{Op: 'M', Args: args(p[i+1 : i+3])})
			i += 3
		case rasterx.PathLineTo:
			if i+3 > len(p) {
				return nil, fmt.Errorf("truncated line")
			}
			out = append(out, PathCommand{Op: 'L', Args: args(p[i+1 : i+3])})
			i += 3
		case rasterx.PathQuadTo:
			if i+5 > len(p) {
				return nil, fmt.Errorf("truncated quadratic")
			}
			out = append(out, PathCommand{Op: 'Q', Args: args(p[i+1 : i+5])})
			i += 5
		case rasterx.PathCubicTo:
			if i+7 > len(p) {
				return nil, fmt.Errorf("truncated cubic")
			}
			out = append(out, PathCommand{Op: 'C', Args: args(p[i+1 : i+7])})
			i += 7
		case rasterx.PathClose:
			out = append(out, PathCommand{Op: 'Z'})
			i++
		default:
			return nil, fmt.Errorf("unknown path command %d", p[i])
		}
	}
	return out, nil
}

// normalizePath shifts cmds so the control-point bounds start at (0,0) and
// returns the resulting size.
func normalizePath(cmds []PathCommand) ([]PathCommand, float64, float64) {
	var pts []Point
	for _, c := range cmds {
		for i := 0; i+1 < len(c.Args); i += 2 {
			pts = append(pts, Point{c.Args[i], c.Args[i+1]})
		}
	}
	b := boundsOf(pts)
	for _, c := range cmds {
		for i := 0; i+1 < len(c.Args); i += 2 {
			c.Args[i] -= b.Left
			c.Args[i+1] -= b.Top
		}
	}
	return cmds, b.Width, b.Height
}

// NewRect returns a rectangle object of the given size.
func NewRect(w, h float64) *Object {
	o := NewObject(TypeRect)
	o.Width, o.Height = w, h
	return o
}
