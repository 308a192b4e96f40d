// Package notify tells the user about saves, exports and clipboard copies
// through the desktop notification center.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/example/damagemark/internal/config"
	"github.com/example/damagemark/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	EventSave   Event = "save"
	EventExport Event = "export"
	EventCopy   Event = "copy"
)

// previewSize bounds the thumbnail attached to save notifications.
const previewSize = 256

var events = []struct {
	event    Event
	envKey   string
	template string
	fallback string
}{
	{EventSave, "NOTIFY_SAVE_TEXT", "Saved %s", "annotations"},
	{EventExport, "NOTIFY_EXPORT_TEXT", "Exported %s", ""},
	{EventCopy, "NOTIFY_COPY_TEXT", "Copied %s to clipboard", "image"},
}

// Preferences holds the notification title and a body template per event.
// Templates take the event detail as their single %s verb.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

func DefaultPreferences() Preferences {
	p := Preferences{Title: "Damage annotations", Templates: make(map[Event]string, len(events))}
	for _, e := range events {
		p.Templates[e.event] = e.template
	}
	return p
}

// LoadPreferences overrides the defaults from DAMAGEMARK_NOTIFY_* variables
// looked up through getenv.
func LoadPreferences(getenv func(string) string) Preferences {
	p := DefaultPreferences()
	if getenv == nil {
		return p
	}
	if v := strings.TrimSpace(getenv(config.EnvPrefix + "NOTIFY_TITLE")); v != "" {
		p.Title = v
	}
	for _, e := range events {
		if v := strings.TrimSpace(getenv(config.EnvPrefix + e.envKey)); v != "" {
			p.Templates[e.event] = v
		}
	}
	return p
}

// send is swapped out by tests.
var send = platform.Notify

// Notifier posts desktop notifications for the events switched on. A nil
// Notifier is silent.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	logger  *slog.Logger
}

func New(prefs Preferences) *Notifier {
	n := &Notifier{
		prefs:   Preferences{Title: prefs.Title, Templates: make(map[Event]string, len(prefs.Templates))},
		enabled: make(map[Event]bool),
		logger:  slog.Default(),
	}
	for k, v := range prefs.Templates {
		n.prefs.Templates[k] = v
	}
	return n
}

// WithLogger routes delivery failures to l.
func (n *Notifier) WithLogger(l *slog.Logger) *Notifier {
	if n != nil && l != nil {
		n.logger = l
	}
	return n
}

func (n *Notifier) Enable(event Event, on bool) {
	if n == nil {
		return
	}
	n.enabled[event] = on
}

// Configure enables the events switched on in the [notify] section.
func (n *Notifier) Configure(c config.Notify) {
	n.Enable(EventSave, c.Save)
	n.Enable(EventExport, c.Export)
	n.Enable(EventCopy, c.Copy)
}

// Save reports a stored and submitted document. When img is set a thumbnail
// of it is attached as the notification icon.
func (n *Notifier) Save(detail string, img image.Image) {
	if !n.on(EventSave) {
		return
	}
	var opts platform.Options
	if img != nil {
		path, err := writePreview(img)
		if err != nil {
			n.logger.Warn("notification preview", "error", err)
		} else {
			defer n.removePreview(path)
			opts.IconPath = path
		}
	}
	n.post(EventSave, detail, opts)
}

// Export reports a rendering written to path, using the file itself as the
// icon when it exists.
func (n *Notifier) Export(path string) {
	if !n.on(EventExport) {
		return
	}
	var opts platform.Options
	detail := path
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, err := os.Stat(abs); err == nil {
			opts.IconPath = abs
		}
	}
	n.post(EventExport, detail, opts)
}

func (n *Notifier) Copy(detail string) {
	if !n.on(EventCopy) {
		return
	}
	n.post(EventCopy, detail, platform.Options{})
}

func (n *Notifier) on(event Event) bool {
	return n != nil && n.enabled[event]
}

func (n *Notifier) post(event Event, detail string, opts platform.Options) {
	detail = strings.TrimSpace(detail)
	if detail == "" {
		for _, e := range events {
			if e.event == event {
				detail = e.fallback
			}
		}
	}
	tmpl := strings.TrimSpace(n.prefs.Templates[event])
	if tmpl == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(tmpl, detail))
	if body == "" {
		return
	}
	if err := send(n.prefs.Title, body, opts); err != nil {
		n.logger.Warn("notification not delivered", "event", string(event), "error", err)
	}
}

func writePreview(img image.Image) (string, error) {
	f, err := os.CreateTemp("", platform.AppName+"-preview-*.png")
	if err != nil {
		return "", err
	}
	thumb := imaging.Fit(img, previewSize, previewSize, imaging.Lanczos)
	if err := png.Encode(f, thumb); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("encode preview: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func (n *Notifier) removePreview(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		n.logger.Warn("remove preview", "path", path, "error", err)
	}
}
