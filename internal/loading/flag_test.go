package loading

import "testing"

func TestShowCollapses(t *testing.T) {
	f := New()
	var changes []bool
	f.Subscribe(func(v bool) { changes = append(changes, v) })

	f.Show()
	f.Show()
	if !f.Visible() {
		t.Fatal("expected flag to be visible")
	}
	f.Clear()
	if f.Visible() {
		t.Fatal("expected a single Clear to hide the flag")
	}
	f.Clear()
	if len(changes) != 2 || changes[0] != true || changes[1] != false {
		t.Fatalf("unexpected notifications %v", changes)
	}
}

func TestSubscribeCancel(t *testing.T) {
	f := New()
	calls := 0
	cancel := f.Subscribe(func(bool) { calls++ })
	f.Show()
	cancel()
	f.Clear()
	if calls != 1 {
		t.Fatalf("expected 1 call after cancel, got %d", calls)
	}
}

func TestNilFlag(t *testing.T) {
	var f *Flag
	f.Show()
	if f.Visible() {
		t.Fatal("nil flag must report hidden")
	}
}
