package editor

import (
	"math"

	"github.com/example/damagemark/internal/canvas"
)

const (
	minZoom  = 1.0
	maxZoom  = 2.0
	zoomStep = 10
)

// ZoomValue returns the current zoom level, 1 when nothing is loaded.
func (s *Surface) ZoomValue() float64 {
	if s.canvas == nil {
		return 1
	}
	return s.canvas.Zoom()
}

// ZoomPercent is the zoom shown by the zoom buttons.
func (s *Surface) ZoomPercent() int { return s.zoomPercent }

// ZoomPoint is the canvas point the zoom buttons zoom around.
func (s *Surface) ZoomPoint() canvas.Point { return s.zoomPoint }

// Resize lays the canvas out for a window of the given width. Only the
// display size changes; logical coordinates stay as they are.
func (s *Surface) Resize(windowWidth int) {
	if windowWidth > 0 {
		s.windowWidth = windowWidth
	}
	if s.canvas == nil || s.canvas.Height == 0 {
		return
	}
	chrome := desktopChrome
	if !s.Desktop() {
		chrome = touchChrome
	}
	w := float64(s.windowWidth - chrome)
	if w <= 0 {
		w = 1
	}
	aspect := s.canvas.Width / s.canvas.Height
	s.canvas.SetDisplaySize(w, w/aspect)
	style := s.selectionStyle()
	for _, o := range s.canvas.Objects() {
		o.Style.CornerSize = style.CornerSize
	}
	s.ResetZoom()
}

// ResetZoom drops the selection and restores the identity viewport.
func (s *Surface) ResetZoom() {
	s.zoomPercent = 100
	if s.canvas == nil {
		return
	}
	s.canvas.DiscardActive()
	s.canvas.SetViewport(canvas.Identity)
	s.zoomPoint = canvas.Point{X: s.canvas.Width / 2, Y: s.canvas.Height / 2}
	s.emitZoom(1)
}

// Pan shifts the viewport by (dx, dy) canvas pixels. It only applies while
// zoomed in with nothing selected, and keeps the photo covering the view.
func (s *Surface) Pan(dx, dy float64) {
	if s.canvas == nil || s.canvas.Zoom() <= 1 || s.canvas.Active() != nil {
		return
	}
	vpt := s.canvas.Viewport()
	vpt[4] += dx
	vpt[5] += dy
	s.canvas.SetViewport(s.clampPan(vpt))
}

func (s *Surface) clampPan(vpt canvas.Matrix) canvas.Matrix {
	z := vpt.Zoom()
	vpt[4] = clampAxis(vpt[4], s.canvas.Width, s.canvas.Width*z)
	vpt[5] = clampAxis(vpt[5], s.canvas.Height, s.canvas.Height*z)
	return vpt
}

func clampAxis(e, container, zoomed float64) float64 {
	if zoomed < container {
		return math.Min(0, math.Max(e, container-zoomed))
	}
	return math.Max(container-zoomed, math.Min(0, e))
}

// Zoom multiplies the zoom by factor around p, given in canvas pixels. The
// result is clamped to [1, 2]; landing on 1 resets the view.
func (s *Surface) Zoom(factor float64, p canvas.Point) {
	if s.canvas == nil || factor <= 0 {
		return
	}
	z := clampZoom(s.canvas.Zoom() * factor)
	s.zoomTo(z, p)
}

func (s *Surface) zoomTo(z float64, p canvas.Point) {
	s.zoomPoint = p
	s.canvas.ZoomToPoint(p, z)
	s.canvas.SetViewport(s.clampPan(s.canvas.Viewport()))
	if math.Round(z*10)/10 == 1 {
		s.ResetZoom()
		return
	}
	s.zoomPercent = int(math.Round(z * 100))
	s.emitZoom(z)
}

func (s *Surface) emitZoom(z float64) {
	if s.Desktop() && s.onZoomChanged != nil {
		s.onZoomChanged(z)
	}
}

func clampZoom(z float64) float64 {
	return math.Min(maxZoom, math.Max(minZoom, z))
}

// ZoomIn raises the zoom by one step around the stored zoom point.
func (s *Surface) ZoomIn() { s.stepZoom(zoomStep) }

// ZoomOut lowers the zoom by one step around the stored zoom point.
func (s *Surface) ZoomOut() { s.stepZoom(-zoomStep) }

// FitToScreen shows the whole photo.
func (s *Surface) FitToScreen() { s.ResetZoom() }

func (s *Surface) stepZoom(delta int) {
	if s.canvas == nil {
		return
	}
	pct := s.zoomPercent + delta
	pct = min(max(pct, 100), 200)
	if pct == 100 {
		s.ResetZoom()
		return
	}
	s.zoomTo(1+float64(pct-100)/100, s.zoomPoint)
}

// HandleZoom applies a zoom level chosen by the host, such as a slider.
func (s *Surface) HandleZoom(v float64) {
	if s.canvas == nil {
		return
	}
	if v == 1 {
		s.ResetZoom()
		return
	}
	s.zoomTo(clampZoom(v), s.zoomPoint)
}
