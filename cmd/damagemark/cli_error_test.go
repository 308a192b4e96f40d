package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/damagemark/internal/config"
	"github.com/example/damagemark/internal/editor"
	"github.com/example/damagemark/internal/render"
	"github.com/example/damagemark/internal/store"
)

func newTestRoot(t *testing.T) *root {
	t.Helper()
	return &root{
		program:   "damagemark",
		config:    config.New(),
		storePath: filepath.Join(t.TempDir(), "damage.db"),
	}
}

func writePhoto(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 90, G: 120, B: 150, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "car.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func runDraw(t *testing.T, r *root, args ...string) string {
	t.Helper()
	cmd, err := parseDrawCmd(args, r)
	if err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	var out bytes.Buffer
	cmd.stdout = &out
	if err := cmd.Run(); err != nil {
		t.Fatalf("run %v: %v", args, err)
	}
	return out.String()
}

func TestParseDrawRequiresAction(t *testing.T) {
	_, err := parseDrawCmd(nil, nil)
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if want := "add <tool>"; !strings.Contains(uerr.Error(), want) {
		t.Fatalf("expected help to mention %q, got %q", want, uerr.Error())
	}
}

func TestParseDrawArguments(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"erase"}, "unknown draw action"},
		{[]string{"add"}, "add requires 1 argument"},
		{[]string{"delete", "1", "2"}, "delete requires 1 argument"},
		{[]string{"color"}, "color requires a colour"},
		{[]string{"add", "draw-1", "-color"}, "flag -color requires a value"},
	}
	for _, tt := range tests {
		_, err := parseDrawCmd(tt.args, nil)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("parseDrawCmd(%v) = %v, want error containing %q", tt.args, err, tt.want)
		}
	}
}

func TestParseDrawFlagsAfterAction(t *testing.T) {
	cmd, err := parseDrawCmd([]string{"add", "tag-2", "--color=blue", "-text", "dent"}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.action != "add" || len(cmd.args) != 1 || cmd.args[0] != "tag-2" {
		t.Fatalf("positionals: %q %v", cmd.action, cmd.args)
	}
	if cmd.colorSpec != "blue" || cmd.text != "dent" {
		t.Fatalf("flags: color %q text %q", cmd.colorSpec, cmd.text)
	}
}

func TestDrawAddListAndDelete(t *testing.T) {
	r := newTestRoot(t)
	photo := writePhoto(t, 320, 240)

	out := runDraw(t, r, "-image", photo, "-color", "yellow", "-text", "scratch", "add", "text-bg")
	if want := "1 object(s) stored"; !strings.Contains(out, want) {
		t.Fatalf("add output %q", out)
	}
	runDraw(t, r, "add", "draw-5")

	list := runDraw(t, r, "list")
	lines := strings.Split(strings.TrimSpace(list), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 objects, got %q", list)
	}
	if !strings.Contains(lines[0], `"scratch"`) || !strings.Contains(lines[0], "#fdd615") {
		t.Fatalf("text object not listed: %q", lines[0])
	}

	runDraw(t, r, "delete", "0")
	list = runDraw(t, r, "list")
	if strings.Contains(list, "scratch") || strings.Count(strings.TrimSpace(list), "\n") != 0 {
		t.Fatalf("delete left %q", list)
	}

	runDraw(t, r, "clear")
	if list := runDraw(t, r, "list"); strings.TrimSpace(list) != "no annotations" {
		t.Fatalf("clear left %q", list)
	}

	runDraw(t, r, "reset")
	cmd, err := parseDrawCmd([]string{"list"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cmd.stdout = &bytes.Buffer{}
	if err := cmd.Run(); err == nil {
		t.Fatalf("list after reset should need -image")
	}
}

func TestDrawRejectsBadInput(t *testing.T) {
	r := newTestRoot(t)
	photo := writePhoto(t, 100, 100)
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-image", photo, "delete", "3"}, "out of range"},
		{[]string{"-image", photo, "front", "x"}, "invalid object index"},
		{[]string{"-image", photo, "color", "mauve"}, "invalid color"},
		{[]string{"-image", photo, "add", "draw-9"}, "draw-9"},
		{[]string{"-image", photo, "-text", "hi", "add", "draw-1"}, "no editable text"},
	}
	for _, tt := range tests {
		cmd, err := parseDrawCmd(tt.args, r)
		if err != nil {
			t.Fatalf("parse %v: %v", tt.args, err)
		}
		cmd.stdout = &bytes.Buffer{}
		if err := cmd.Run(); err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("run %v = %v, want error containing %q", tt.args, err, tt.want)
		}
	}
}

func TestDrawWithoutPhotoFails(t *testing.T) {
	cmd, err := parseDrawCmd([]string{"list"}, newTestRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err == nil || !strings.Contains(err.Error(), "failed to open annotations") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestRenderWritesFormatFromExtension(t *testing.T) {
	r := newTestRoot(t)
	photo := writePhoto(t, 64, 48)
	runDraw(t, r, "-image", photo, "add", "draw-1")

	out := filepath.Join(t.TempDir(), "result.png")
	cmd, err := parseRenderCmd([]string{"-output", out}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("render: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Fatalf("rendered size %v", b)
	}
}

func TestRenderToClipboard(t *testing.T) {
	var copied []byte
	original := copyImageFn
	copyImageFn = func(data []byte) error { copied = data; return nil }
	t.Cleanup(func() { copyImageFn = original })

	r := newTestRoot(t)
	photo := writePhoto(t, 32, 32)
	cmd, err := parseRenderCmd([]string{"-image", photo, "-output", "ignored.jpg", "-to-clip"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(copied)); err != nil {
		t.Fatalf("clipboard data is not a PNG: %v", err)
	}
	if _, err := os.Stat("ignored.jpg"); err == nil {
		t.Fatalf("clipboard render wrote a file")
	}
}

func TestRenderClipboardError(t *testing.T) {
	sentinel := errors.New("no display")
	original := copyImageFn
	copyImageFn = func([]byte) error { return sentinel }
	t.Cleanup(func() { copyImageFn = original })

	cmd, err := parseRenderCmd([]string{"-image", writePhoto(t, 8, 8), "-to-clipboard"}, newTestRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	err = cmd.Run()
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if want := "failed to copy to clipboard"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to contain %q, got %v", want, err)
	}
}

func TestParseRenderRejectsStdoutAndClipboard(t *testing.T) {
	_, err := parseRenderCmd([]string{"-stdout", "-to-clip"}, nil)
	if err == nil || !strings.Contains(err.Error(), "cannot be combined") {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestSubmitRequiresEndpoint(t *testing.T) {
	cmd, err := parseSubmitCmd(nil, newTestRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err == nil || !strings.Contains(err.Error(), "no upload endpoint") {
		t.Fatalf("expected endpoint error, got %v", err)
	}
}

func TestSubmitLocalRecordsSubmission(t *testing.T) {
	r := newTestRoot(t)
	photo := writePhoto(t, 40, 30)
	runDraw(t, r, "-image", photo, "add", "tag-1")

	cmd, err := parseSubmitCmd([]string{"-local"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	st, err := store.Open(r.storePath, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	sub, err := st.LatestSubmission(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if sub.ImageName != editor.ImageName || !strings.Contains(sub.Document, `"objects"`) {
		t.Fatalf("submission %q %.60q", sub.ImageName, sub.Document)
	}
}

func TestClassifyCmd(t *testing.T) {
	const ipad = "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-width", "800"}, "mobile"},
		{[]string{"-width", "1180", ipad}, "desktop"},
		{[]string{"-width", "1180", "-rule", "ua", ipad}, "tablet"},
		{[]string{"-width", "897", ipad}, "tablet"},
		{[]string{"-width", "1440", "-user-agent", "curl/8.0"}, "desktop"},
	}
	for _, tt := range tests {
		cmd, err := parseClassifyCmd(tt.args, nil)
		if err != nil {
			t.Fatalf("parse %v: %v", tt.args, err)
		}
		var out bytes.Buffer
		cmd.out = &out
		if err := cmd.Run(); err != nil {
			t.Fatalf("run %v: %v", tt.args, err)
		}
		if got := strings.TrimSpace(out.String()); got != tt.want {
			t.Errorf("classify %v = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestTagsCmdListsVocabulary(t *testing.T) {
	cmd, err := parseTagsCmd(nil, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var out bytes.Buffer
	cmd.out = &out
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"* white", "tag-9  ขูดขีด", "text-no-bg", "#002dd1 (text #ffffff)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestExportFormat(t *testing.T) {
	cfg := config.New()
	tests := []struct {
		output, explicit string
		want             render.Format
	}{
		{"out.png", "", render.PNG},
		{"out.webp", "", render.WebP},
		{"out", "", render.JPEG},
		{"out.png", "jpeg", render.JPEG},
	}
	for _, tt := range tests {
		got, err := exportFormat(cfg, tt.output, tt.explicit)
		if err != nil || got != tt.want {
			t.Errorf("exportFormat(%q, %q) = %v, %v; want %v", tt.output, tt.explicit, got, err, tt.want)
		}
	}
	if _, err := exportFormat(cfg, "out.png", "tiff"); err == nil {
		t.Errorf("expected error for tiff")
	}
}

func TestConfigPrint(t *testing.T) {
	r := newTestRoot(t)
	r.config.UploadURL = "http://localhost:8080/api/v1/damage"
	cmd, err := parseConfigCmd([]string{"print"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var out bytes.Buffer
	cmd.out = &out
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if want := "upload_url = http://localhost:8080/api/v1/damage"; !strings.Contains(out.String(), want) {
		t.Fatalf("config print missing %q:\n%s", want, out.String())
	}
}

func TestRootHelp(t *testing.T) {
	r := newTestRoot(t)
	help := (&UsageError{of: r}).Error()
	for _, want := range []string{"Usage: damagemark", "annotate", "serve"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
}
