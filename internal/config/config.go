// Package config reads and writes the damagemark rc file.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/damagemark/internal/theme"
)

// Notify holds notification settings.
type Notify struct {
	Save   bool
	Export bool
	Copy   bool
}

// Editor holds canvas interaction settings.
type Editor struct {
	DoubleClickMS int
	ZoomFactor    float64
}

// Server holds submission server settings.
type Server struct {
	Listen      string
	MaxUploadMB int
}

// Config holds the application configuration.
type Config struct {
	Image       string
	Store       string
	UploadURL   string
	Device      string
	DeviceRule  string
	Toolkit     string
	Font        string
	Format      string
	JPEGQuality int
	Theme       string

	Editor Editor
	Server Server
	Notify Notify
	Themes map[string]*theme.Theme
}

// Defaults applied by New.
const (
	DefaultFormat        = "jpeg"
	DefaultJPEGQuality   = 92
	DefaultDoubleClickMS = 500
	DefaultListen        = ":8080"
	DefaultMaxUploadMB   = 20
)

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Format:      DefaultFormat,
		JPEGQuality: DefaultJPEGQuality,
		Editor: Editor{
			DoubleClickMS: DefaultDoubleClickMS,
		},
		Server: Server{
			Listen:      DefaultListen,
			MaxUploadMB: DefaultMaxUploadMB,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	root := []struct{ key, value string }{
		{"image", c.Image},
		{"store", c.Store},
		{"upload_url", c.UploadURL},
		{"device", c.Device},
		{"device_rule", c.DeviceRule},
		{"toolkit", c.Toolkit},
		{"font", c.Font},
		{"format", c.Format},
		{"theme", c.Theme},
	}
	for _, kv := range root {
		if kv.value != "" {
			fmt.Fprintf(&sb, "%s = %s\n", kv.key, kv.value)
		}
	}
	fmt.Fprintf(&sb, "jpeg_quality = %d\n", c.JPEGQuality)
	sb.WriteString("\n")

	sb.WriteString("[editor]\n")
	fmt.Fprintf(&sb, "double_click_ms = %d\n", c.Editor.DoubleClickMS)
	if c.Editor.ZoomFactor > 0 {
		fmt.Fprintf(&sb, "zoom_factor = %g\n", c.Editor.ZoomFactor)
	}
	sb.WriteString("\n")

	sb.WriteString("[server]\n")
	fmt.Fprintf(&sb, "listen = %s\n", c.Server.Listen)
	fmt.Fprintf(&sb, "max_upload_mb = %d\n", c.Server.MaxUploadMB)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	themeNames := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)
	for _, name := range themeNames {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		sb.WriteString(c.Themes[name].String())
		sb.WriteString("\n")
	}

	return sb.String()
}

// ResolveTheme returns the named theme from the config sections, then from
// l, falling back to the default theme.
func (c *Config) ResolveTheme(l *theme.Loader) (*theme.Theme, error) {
	if t, ok := c.Themes[c.Theme]; ok {
		return t, nil
	}
	if l == nil {
		l = theme.NewLoader()
	}
	return l.Load(c.Theme)
}
