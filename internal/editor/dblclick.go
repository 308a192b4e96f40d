package editor

import (
	"time"

	"github.com/example/damagemark/internal/canvas"
)

const defaultDoubleClick = 500 * time.Millisecond

// clickDetector turns two clicks on the same object within the window into
// one double click. A click arms the object; a second click while armed
// fires once and disarms it.
type clickDetector struct {
	now    func() time.Time
	window time.Duration
	armed  map[*canvas.Object]time.Time
}

func newClickDetector() *clickDetector {
	return &clickDetector{
		now:    time.Now,
		window: defaultDoubleClick,
		armed:  map[*canvas.Object]time.Time{},
	}
}

// click records a click on o and reports whether it completes a double click.
func (d *clickDetector) click(o *canvas.Object) bool {
	now := d.now()
	for k, at := range d.armed {
		if now.Sub(at) > d.window {
			delete(d.armed, k)
		}
	}
	if at, ok := d.armed[o]; ok && now.Sub(at) <= d.window {
		delete(d.armed, o)
		return true
	}
	d.armed[o] = now
	return false
}

func (d *clickDetector) reset() {
	clear(d.armed)
}
