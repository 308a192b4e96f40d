package theme

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedThemesLoad(t *testing.T) {
	names := Names()
	if len(names) < 2 {
		t.Fatalf("embedded themes: %v", names)
	}
	l := &Loader{ConfigDir: t.TempDir(), SystemDir: t.TempDir()}
	for _, name := range names {
		th, err := l.Load(name)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if th.Name == "" || th.Name == "Default" {
			t.Errorf("%s: name %q", name, th.Name)
		}
	}
	dark, _ := l.Load("dark")
	if dark.Background == Default().Background {
		t.Errorf("dark theme kept the default background")
	}
}

func TestLoadOrder(t *testing.T) {
	cfg := t.TempDir()
	l := &Loader{ConfigDir: cfg, SystemDir: t.TempDir()}
	if err := os.WriteFile(filepath.Join(cfg, "mine.theme"), []byte("Name: Mine\nOverlay: #11223344\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	th, err := l.Load("mine")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if th.Overlay != (color.RGBA{0x11, 0x22, 0x33, 0x44}) {
		t.Errorf("overlay %+v", th.Overlay)
	}
	if th.Foreground != Default().Foreground {
		t.Errorf("unset keys should keep defaults")
	}
	if _, err := l.Load("missing"); err == nil {
		t.Errorf("missing theme should fail")
	}
	if th, _ := l.Load(""); th.Name != "Default" {
		t.Errorf("empty name = %q", th.Name)
	}
}

func TestStringRoundTrip(t *testing.T) {
	in := Default()
	in.Name = "Copy"
	in.Overlay = color.RGBA{1, 2, 3, 4}
	out, err := Parse(strings.NewReader(in.String()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if *out != *in {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", out, in)
	}
}

func TestParseRejectsBadColour(t *testing.T) {
	for _, v := range []string{"red", "#12345", "#GGGGGG"} {
		if _, err := Parse(strings.NewReader("Background: " + v)); err == nil {
			t.Errorf("%q accepted", v)
		}
	}
}
