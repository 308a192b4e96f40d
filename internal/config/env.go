package config

import (
	"strconv"
	"strings"
)

// EnvPrefix starts every environment variable read by ApplyEnv.
const EnvPrefix = "DAMAGEMARK_"

// ApplyEnv overrides fields from DAMAGEMARK_* variables, looked up through
// getenv. Values that do not parse are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	str := map[string]*string{
		"IMAGE":         &c.Image,
		"STORE":         &c.Store,
		"UPLOAD_URL":    &c.UploadURL,
		"DEVICE":        &c.Device,
		"DEVICE_RULE":   &c.DeviceRule,
		"TOOLKIT":       &c.Toolkit,
		"FONT":          &c.Font,
		"FORMAT":        &c.Format,
		"THEME":         &c.Theme,
		"SERVER_LISTEN": &c.Server.Listen,
	}
	for name, dst := range str {
		if v := strings.TrimSpace(getenv(EnvPrefix + name)); v != "" {
			*dst = v
		}
	}
	if v, err := strconv.Atoi(getenv(EnvPrefix + "JPEG_QUALITY")); err == nil && v >= 1 && v <= 100 {
		c.JPEGQuality = v
	}
	if v, err := strconv.Atoi(getenv(EnvPrefix + "MAX_UPLOAD_MB")); err == nil && v > 0 {
		c.Server.MaxUploadMB = v
	}
}
