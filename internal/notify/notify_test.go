package notify

import (
	"image"
	"image/png"
	"os"
	"testing"

	"github.com/example/damagemark/internal/config"
	"github.com/example/damagemark/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
	iconExisted bool
}

func capture(t *testing.T) *[]sent {
	t.Helper()
	var out []sent
	prev := send
	send = func(title, body string, opts platform.Options) error {
		_, err := os.Stat(opts.IconPath)
		out = append(out, sent{title, body, opts, opts.IconPath != "" && err == nil})
		return nil
	}
	t.Cleanup(func() { send = prev })
	return &out
}

func TestDisabledEventsAreSilent(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Save("x", nil)
	n.Export("out.jpeg")
	n.Copy("")
	var nilNotifier *Notifier
	nilNotifier.Copy("x")
	if len(*got) != 0 {
		t.Fatalf("sent %d notifications", len(*got))
	}
}

func TestConfigureAndDispatch(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Configure(config.Notify{Save: true, Copy: true})
	n.Save("3 objects", image.NewRGBA(image.Rect(0, 0, 4, 4)))
	n.Copy("")
	n.Export("ignored.jpeg")
	if len(*got) != 2 {
		t.Fatalf("sent %d notifications, want 2", len(*got))
	}
	save := (*got)[0]
	if save.body != "Saved 3 objects" || !save.iconExisted {
		t.Errorf("save notification %+v", save)
	}
	if _, err := os.Stat(save.opts.IconPath); !os.IsNotExist(err) {
		t.Errorf("preview not removed")
	}
	if (*got)[1].body != "Copied image to clipboard" {
		t.Errorf("copy body %q", (*got)[1].body)
	}
}

func TestSavePreviewIsThumbnail(t *testing.T) {
	var size image.Point
	prev := send
	send = func(_, _ string, opts platform.Options) error {
		f, err := os.Open(opts.IconPath)
		if err != nil {
			return err
		}
		defer f.Close()
		cfg, err := png.DecodeConfig(f)
		if err != nil {
			return err
		}
		size = image.Pt(cfg.Width, cfg.Height)
		return nil
	}
	t.Cleanup(func() { send = prev })

	n := New(DefaultPreferences())
	n.Enable(EventSave, true)
	n.Save("", image.NewRGBA(image.Rect(0, 0, 1024, 512)))
	if size != image.Pt(256, 128) {
		t.Fatalf("preview size %v, want 256x128", size)
	}
}

func TestBlankOverrideKeepsDefault(t *testing.T) {
	got := capture(t)
	n := New(LoadPreferences(func(k string) string {
		if k == "DAMAGEMARK_NOTIFY_COPY_TEXT" {
			return "  "
		}
		return ""
	}))
	n.Enable(EventCopy, true)
	n.Copy("x")
	if len(*got) != 1 {
		t.Fatalf("blank override should keep the default template, sent %d", len(*got))
	}
}

func TestLoadPreferencesFromEnv(t *testing.T) {
	env := map[string]string{
		"DAMAGEMARK_NOTIFY_TITLE":       "Claims",
		"DAMAGEMARK_NOTIFY_EXPORT_TEXT": "Wrote %s",
	}
	got := capture(t)
	n := New(LoadPreferences(func(k string) string { return env[k] }))
	n.Enable(EventExport, true)
	n.Export("/tmp/out.jpeg")
	if len(*got) != 1 || (*got)[0].title != "Claims" || (*got)[0].body != "Wrote /tmp/out.jpeg" {
		t.Fatalf("notifications %+v", *got)
	}
}
