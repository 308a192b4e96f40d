//go:build windows

package platform

import (
	"strings"
	"testing"
)

func TestToastScriptQuotesAndIcon(t *testing.T) {
	s := toastScript("Damage", "Exported Bob's car", Options{})
	if !strings.Contains(s, "'Exported Bob''s car'") {
		t.Errorf("body not quoted: %s", s)
	}
	if strings.Contains(s, "ToastImageAndText02") {
		t.Errorf("image template without icon")
	}
	s = toastScript("Damage", "x", Options{IconPath: `C:\tmp\p.png`})
	if !strings.Contains(s, "ToastImageAndText02") || !strings.Contains(s, `'C:\tmp\p.png'`) {
		t.Errorf("icon missing: %s", s)
	}
}
