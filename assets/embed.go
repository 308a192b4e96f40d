// Package assets bundles the SVG sources for the selection control icons
// and the drawing tool shapes.
package assets

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"
)

//go:embed icons/*.svg tools/*.svg
var embedded embed.FS

var (
	loadToolsOnce sync.Once
	loadToolsErr  error
	toolTemplates map[string]*template.Template
)

func loadTools() {
	entries, err := fs.ReadDir(embedded, "tools")
	if err != nil {
		loadToolsErr = err
		return
	}
	toolTemplates = make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".svg") {
			continue
		}
		data, err := embedded.ReadFile(path.Join("tools", name))
		if err != nil {
			loadToolsErr = err
			return
		}
		base := strings.TrimSuffix(name, ".svg")
		tmpl, err := template.New(base).Parse(string(data))
		if err != nil {
			loadToolsErr = fmt.Errorf("tool %s: %w", base, err)
			return
		}
		toolTemplates[base] = tmpl
	}
}

// ToolSVG renders the shape for the named tool (for example "draw-2" or
// "tag") filled with fill.
func ToolSVG(name, fill string) ([]byte, error) {
	loadToolsOnce.Do(loadTools)
	if loadToolsErr != nil {
		return nil, loadToolsErr
	}
	tmpl, ok := toolTemplates[name]
	if !ok {
		return nil, fmt.Errorf("tool shape %q not embedded", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Fill string }{fill}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToolNames lists the embedded tool shapes.
func ToolNames() []string {
	loadToolsOnce.Do(loadTools)
	names := make([]string, 0, len(toolTemplates))
	for name := range toolTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IconSVG returns a copy of the named control icon ("delete" or "rotate").
func IconSVG(name string) ([]byte, error) {
	data, err := embedded.ReadFile(path.Join("icons", name+".svg"))
	if err != nil {
		return nil, fmt.Errorf("icon %q not embedded", name)
	}
	return append([]byte(nil), data...), nil
}
