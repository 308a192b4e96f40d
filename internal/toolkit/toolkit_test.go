package toolkit

import (
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	tk := Default()
	if len(tk.Tags) != 9 {
		t.Fatalf("expected 9 tags, got %d", len(tk.Tags))
	}
	if tk.Initial() != "#ffffff" {
		t.Fatalf("initial colour = %s", tk.Initial())
	}
	if tk.Placeholder != "กขค.." {
		t.Fatalf("placeholder = %q", tk.Placeholder)
	}
	tag, err := tk.Tag(2)
	if err != nil || tag != "บุบ" {
		t.Fatalf("Tag(2) = %q, %v", tag, err)
	}
	if _, err := tk.Tag(10); err == nil {
		t.Fatal("expected range error")
	}
}

func TestContrastText(t *testing.T) {
	tk := Default()
	tests := map[string]string{
		"#000000": "#ffffff",
		"#002dd1": "#ffffff",
		"#002DD1": "#ffffff",
		"#fdd615": "#000000",
		"#ffffff": "#000000",
	}
	for fill, want := range tests {
		if got := tk.ContrastText(fill); got != want {
			t.Errorf("ContrastText(%s) = %s, want %s", fill, got, want)
		}
	}
}

func TestColor(t *testing.T) {
	tk := Default()
	if hex, ok := tk.Color("Yellow"); !ok || hex != "#fdd615" {
		t.Fatalf("Color(Yellow) = %q %v", hex, ok)
	}
	if hex, ok := tk.Color("#123456"); !ok || hex != "#123456" {
		t.Fatalf("literal hex rejected")
	}
	if _, ok := tk.Color("#12"); ok {
		t.Fatal("short hex accepted")
	}
}

func TestLoadRejectsUnknownDarkColor(t *testing.T) {
	_, err := Load(strings.NewReader(`
palette:
  - {name: white, hex: "#ffffff"}
dark_colors: [navy]
`))
	if err == nil || !strings.Contains(err.Error(), "navy") {
		t.Fatalf("expected error about navy, got %v", err)
	}
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#01FFD780")
	if err != nil {
		t.Fatal(err)
	}
	if c != [4]uint8{0x01, 0xff, 0xd7, 0x80} {
		t.Fatalf("got %v", c)
	}
	if _, err := ParseHex("ffffff"); err == nil {
		t.Fatal("expected missing # to fail")
	}
}
