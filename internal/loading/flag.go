// Package loading holds the busy indicator shown while the editor saves or
// loads an image.
package loading

import "sync"

// Flag is a shared visibility flag. Calls to Show collapse into a single
// visible state and the first Clear hides it again, regardless of how many
// operations asked for it to be shown.
type Flag struct {
	mu        sync.Mutex
	visible   bool
	nextID    int
	observers map[int]func(bool)
}

// New returns a hidden flag.
func New() *Flag {
	return &Flag{observers: make(map[int]func(bool))}
}

// Show marks the indicator visible.
func (f *Flag) Show() { f.set(true) }

// Clear hides the indicator.
func (f *Flag) Clear() { f.set(false) }

// Visible reports the current state.
func (f *Flag) Visible() bool {
	if f == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible
}

// Subscribe registers fn to be called whenever the value changes. The
// returned function removes the observer.
func (f *Flag) Subscribe(fn func(bool)) (cancel func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.observers == nil {
		f.observers = make(map[int]func(bool))
	}
	id := f.nextID
	f.nextID++
	f.observers[id] = fn
	return func() {
		f.mu.Lock()
		delete(f.observers, id)
		f.mu.Unlock()
	}
}

func (f *Flag) set(v bool) {
	if f == nil {
		return
	}
	f.mu.Lock()
	if f.visible == v {
		f.mu.Unlock()
		return
	}
	f.visible = v
	fns := make([]func(bool), 0, len(f.observers))
	for _, fn := range f.observers {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}
