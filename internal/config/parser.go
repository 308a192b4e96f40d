package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/damagemark/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string
	var currentTheme *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			currentTheme = nil

			if name, ok := strings.CutPrefix(currentSection, "theme."); ok {
				// Start with defaults so missing keys are fine
				currentTheme = theme.Default()
				currentTheme.Name = name
				cfg.Themes[name] = currentTheme
			}
			continue
		}

		// Key = Value or Key: Value
		sep := "="
		if !strings.Contains(line, "=") {
			sep = ":"
		}
		k, v, ok := strings.Cut(line, sep)
		if !ok {
			continue
		}
		key := strings.TrimSpace(k)
		value := strings.TrimSpace(v)
		if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case currentTheme != nil:
			err = currentTheme.Set(key, value)
		case currentSection == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case currentSection == "editor":
			err = setEditorField(&cfg.Editor, key, value)
		case currentSection == "server":
			err = setServerField(&cfg.Server, key, value)
		case currentSection == "":
			err = setRootField(cfg, key, value)
		}
		if err != nil {
			section := currentSection
			if section == "" {
				section = "root"
			}
			return nil, fmt.Errorf("error in section [%s]: %w", section, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "image":
		cfg.Image = value
	case "store":
		cfg.Store = value
	case "upload_url":
		cfg.UploadURL = value
	case "device":
		cfg.Device = value
	case "device_rule":
		cfg.DeviceRule = value
	case "toolkit":
		cfg.Toolkit = value
	case "font":
		cfg.Font = value
	case "format":
		cfg.Format = value
	case "theme":
		cfg.Theme = value
	case "jpeg_quality":
		q, err := parseInt(key, value)
		if err != nil {
			return err
		}
		if q < 1 || q > 100 {
			return fmt.Errorf("jpeg_quality %d out of range 1-100", q)
		}
		cfg.JPEGQuality = q
	}
	return nil
}

func setEditorField(e *Editor, key, value string) error {
	switch strings.ToLower(key) {
	case "double_click_ms":
		v, err := parseInt(key, value)
		if err != nil {
			return err
		}
		e.DoubleClickMS = v
	case "zoom_factor":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("invalid number for key %s: %q", key, value)
		}
		e.ZoomFactor = v
	}
	return nil
}

func setServerField(s *Server, key, value string) error {
	switch strings.ToLower(key) {
	case "listen":
		s.Listen = value
	case "max_upload_mb":
		v, err := parseInt(key, value)
		if err != nil {
			return err
		}
		s.MaxUploadMB = v
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "save":
		n.Save = b
	case "export":
		n.Export = b
	case "copy":
		n.Copy = b
	}
	return nil
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	return v, nil
}
