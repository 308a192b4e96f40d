package assets

import (
	"strings"
	"testing"
)

func TestToolSVGFill(t *testing.T) {
	data, err := ToolSVG("draw-1", "#fdd615")
	if err != nil {
		t.Fatalf("ToolSVG: %v", err)
	}
	if !strings.Contains(string(data), `fill="#fdd615"`) {
		t.Fatalf("fill not applied: %s", data)
	}
	if _, err := ToolSVG("draw-9", "#000000"); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestToolNames(t *testing.T) {
	names := ToolNames()
	want := []string{"draw-1", "draw-2", "draw-3", "draw-4", "tag"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("ToolNames = %v", names)
	}
}

func TestIconSVG(t *testing.T) {
	for _, name := range []string{"delete", "rotate"} {
		data, err := IconSVG(name)
		if err != nil {
			t.Fatalf("IconSVG(%s): %v", name, err)
		}
		if !strings.HasPrefix(string(data), "<svg") {
			t.Fatalf("icon %s is not svg", name)
		}
	}
}
