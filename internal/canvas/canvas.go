// Package canvas is the object model behind the annotation editor: an
// ordered list of shapes, text and groups laid over a background photo, a
// viewport transform for pan and zoom, and JSON serialization.
package canvas

import (
	"image"
	"slices"
)

// Background references the photo drawn beneath all objects.
type Background struct {
	Type   string      `json:"type"`
	Src    string      `json:"src"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Image  image.Image `json:"-"`
}

// Canvas holds the objects of one annotated photo. Width and Height are the
// logical size in which objects are positioned; the display size only
// affects how large the canvas appears on screen.
type Canvas struct {
	Width, Height               float64
	DisplayWidth, DisplayHeight float64
	Background                  *Background

	objects  []*Object
	active   *Object
	viewport Matrix
}

// New returns an empty canvas whose display size matches its logical size.
func New(width, height float64) *Canvas {
	return &Canvas{
		Width:         width,
		Height:        height,
		DisplayWidth:  width,
		DisplayHeight: height,
		viewport:      Identity,
	}
}

// SetBackgroundImage uses img, loaded from src, as the background.
func (c *Canvas) SetBackgroundImage(src string, img image.Image) {
	b := img.Bounds()
	c.Background = &Background{
		Type:   "image",
		Src:    src,
		Width:  float64(b.Dx()),
		Height: float64(b.Dy()),
		Image:  img,
	}
}

// SetDisplaySize changes the on-screen size without touching logical
// coordinates.
func (c *Canvas) SetDisplaySize(w, h float64) {
	c.DisplayWidth, c.DisplayHeight = w, h
}

// DisplayScale is the number of display pixels per logical unit.
func (c *Canvas) DisplayScale() float64 {
	if c.Width == 0 || c.DisplayWidth == 0 {
		return 1
	}
	return c.DisplayWidth / c.Width
}

// Objects returns the top-level objects from back to front.
func (c *Canvas) Objects() []*Object {
	return slices.Clone(c.objects)
}

// Len returns the number of top-level objects.
func (c *Canvas) Len() int { return len(c.objects) }

// Add appends objects on top of the stack.
func (c *Canvas) Add(objs ...*Object) {
	for _, o := range objs {
		if o != nil {
			c.objects = append(c.objects, o)
		}
	}
}

// Remove deletes objects from the canvas, clearing the selection when the
// active object is among them.
func (c *Canvas) Remove(objs ...*Object) {
	for _, o := range objs {
		if i := c.IndexOf(o); i >= 0 {
			c.objects = slices.Delete(c.objects, i, i+1)
		}
		if o == c.active {
			c.active = nil
		}
	}
}

// Clear removes every object.
func (c *Canvas) Clear() {
	c.objects = nil
	c.active = nil
}

// IndexOf returns the stacking index of o or -1.
func (c *Canvas) IndexOf(o *Object) int {
	return slices.Index(c.objects, o)
}

// BringToFront moves o to the top of the stack.
func (c *Canvas) BringToFront(o *Object) {
	i := c.IndexOf(o)
	if i < 0 || i == len(c.objects)-1 {
		return
	}
	c.objects = append(slices.Delete(c.objects, i, i+1), o)
}

// SendToBack moves o to the bottom of the stack.
func (c *Canvas) SendToBack(o *Object) {
	i := c.IndexOf(o)
	if i <= 0 {
		return
	}
	c.objects = slices.Insert(slices.Delete(c.objects, i, i+1), 0, o)
}

// Active returns the selected object or nil.
func (c *Canvas) Active() *Object { return c.active }

// SetActive selects o, which must be on the canvas.
func (c *Canvas) SetActive(o *Object) {
	if o != nil && c.IndexOf(o) < 0 {
		return
	}
	c.active = o
}

// DiscardActive clears the selection.
func (c *Canvas) DiscardActive() { c.active = nil }

// Viewport returns the pan/zoom transform from logical to canvas pixels.
func (c *Canvas) Viewport() Matrix { return c.viewport }

// SetViewport replaces the pan/zoom transform.
func (c *Canvas) SetViewport(m Matrix) { c.viewport = m }

// Zoom returns the current zoom level.
func (c *Canvas) Zoom() float64 { return c.viewport.Zoom() }

// ZoomToPoint sets the zoom to z while keeping the canvas point under p,
// given in canvas pixels, fixed.
func (c *Canvas) ZoomToPoint(p Point, z float64) {
	vpt := c.viewport
	logical := vpt.Invert().Apply(p)
	vpt[0], vpt[3] = z, z
	after := vpt.Apply(logical)
	vpt[4] += p.X - after.X
	vpt[5] += p.Y - after.Y
	c.viewport = vpt
}

// ViewportCenter returns the logical point shown at the centre of the
// canvas.
func (c *Canvas) ViewportCenter() Point {
	return c.viewport.Invert().Apply(Point{c.Width / 2, c.Height / 2})
}

// ViewportCenterObject moves o to the centre of the visible area.
func (c *Canvas) ViewportCenterObject(o *Object) {
	o.SetCenter(c.ViewportCenter())
}

// FromDisplay converts a point in display pixels into canvas pixels.
func (c *Canvas) FromDisplay(p Point) Point {
	s := c.DisplayScale()
	return Point{p.X / s, p.Y / s}
}

// ToLogical converts a point in canvas pixels to logical coordinates.
func (c *Canvas) ToLogical(p Point) Point {
	return c.viewport.Invert().Apply(p)
}

// HitTest returns the top-most evented object under p, given in canvas
// pixels, or nil.
func (c *Canvas) HitTest(p Point) *Object {
	logical := c.ToLogical(p)
	for i := len(c.objects) - 1; i >= 0; i-- {
		o := c.objects[i]
		if !o.Evented {
			continue
		}
		if o.Contains(logical, 0) {
			return o
		}
	}
	return nil
}

// Find returns the first top-level object with the given id and type.
func (c *Canvas) Find(id string, t Type) *Object {
	for _, o := range c.objects {
		if o.ID == id && o.Type == t {
			return o
		}
	}
	return nil
}
