package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/example/damagemark/internal/canvas"
	"github.com/example/damagemark/internal/editor"
)

// drawCmd edits the stored annotations without opening a window.
type drawCmd struct {
	image     string
	colorSpec string
	text      string
	action    string
	args      []string
	stdout    io.Writer
	*root
	fs *flag.FlagSet
}

func (d *drawCmd) FlagSet() *flag.FlagSet {
	return d.fs
}

func parseDrawCmd(args []string, r *root) (*drawCmd, error) {
	fs := flag.NewFlagSet("draw", flag.ExitOnError)
	d := &drawCmd{root: r.subcommand("draw"), fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(d)
	fs.StringVar(&d.image, "image", "", "photo the annotations belong to (defaults to the stored one)")
	fs.StringVar(&d.colorSpec, "color", "", "palette name or hex colour for the new object")
	fs.StringVar(&d.text, "text", "", "text typed into a new text object")

	flagArgs, positionals, err := splitArgs(fs, args)
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}
	if len(positionals) < 1 {
		return nil, &UsageError{of: d}
	}
	d.action = strings.ToLower(positionals[0])
	d.args = positionals[1:]
	want := map[string]int{"add": 1, "color": -1, "delete": 1, "front": 1, "back": 1, "clear": 0, "list": 0, "reset": 0}
	n, ok := want[d.action]
	switch {
	case !ok:
		return nil, fmt.Errorf("unknown draw action %q", d.action)
	case n >= 0 && len(d.args) != n:
		return nil, fmt.Errorf("%s requires %d argument(s)", d.action, n)
	case n < 0 && (len(d.args) < 1 || len(d.args) > 2):
		return nil, fmt.Errorf("color requires a colour and an optional object index")
	}
	return d, nil
}

func (d *drawCmd) Run() error {
	st, err := d.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	ctx := context.Background()
	if d.action == "reset" {
		// Works without loading the photo, so an unreadable document can be dropped.
		if err := st.Delete(ctx, editor.StorageKey); err != nil {
			return fmt.Errorf("failed to reset annotations: %w", err)
		}
		fmt.Fprintln(d.stdout, "stored annotations removed")
		return nil
	}
	s, err := d.newSurface(ctx, st, d.image, sessionOptions{editing: true})
	if err != nil {
		return fmt.Errorf("failed to open annotations: %w", err)
	}
	if d.action == "list" {
		listObjects(d.stdout, s.Canvas())
		return nil
	}
	if err := d.apply(s); err != nil {
		return err
	}
	if _, err := s.Snapshot(ctx); err != nil {
		return fmt.Errorf("failed to store annotations: %w", err)
	}
	fmt.Fprintf(d.stdout, "%d object(s) stored\n", s.Canvas().Len())
	return nil
}

func (d *drawCmd) apply(s *editor.Surface) error {
	switch d.action {
	case "add":
		if d.colorSpec != "" {
			hex, err := resolveColor(s, d.colorSpec)
			if err != nil {
				return err
			}
			s.SetColor(hex)
		}
		o, err := s.AddTool(d.args[0])
		if err != nil {
			return err
		}
		if d.text != "" {
			if !s.BeginTextEdit(o) {
				return fmt.Errorf("%s has no editable text", d.args[0])
			}
			s.InsertText(d.text)
			s.EndTextEdit()
		}
	case "color":
		hex, err := resolveColor(s, d.args[0])
		if err != nil {
			return err
		}
		if len(d.args) == 2 {
			if _, err := selectObject(s, d.args[1]); err != nil {
				return err
			}
		}
		s.SetColor(hex)
	case "delete":
		if _, err := selectObject(s, d.args[0]); err != nil {
			return err
		}
		if !s.DeleteActive() {
			return fmt.Errorf("object %s cannot be deleted", d.args[0])
		}
	case "front", "back":
		if _, err := selectObject(s, d.args[0]); err != nil {
			return err
		}
		if d.action == "front" {
			s.BringToFront()
		} else {
			s.SendToBack()
		}
	case "clear":
		s.Clear()
	}
	return nil
}

func resolveColor(s *editor.Surface, spec string) (string, error) {
	hex, ok := s.Toolkit().Color(strings.TrimSpace(spec))
	if !ok {
		return "", fmt.Errorf("invalid color %q", spec)
	}
	return hex, nil
}

// selectObject activates the object at the zero-based stacking index.
func selectObject(s *editor.Surface, raw string) (*canvas.Object, error) {
	i, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid object index %q", raw)
	}
	objs := s.Canvas().Objects()
	if i < 0 || i >= len(objs) {
		return nil, fmt.Errorf("object index %d out of range (0-%d)", i, len(objs)-1)
	}
	s.Canvas().SetActive(objs[i])
	return objs[i], nil
}

func listObjects(w io.Writer, c *canvas.Canvas) {
	objs := c.Objects()
	if len(objs) == 0 {
		fmt.Fprintln(w, "no annotations")
		return
	}
	for i, o := range objs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.0f,%.0f\t%s\n", i, o.Type, objectColor(o), o.Left, o.Top, objectText(o))
	}
}

func objectColor(o *canvas.Object) string {
	for _, child := range o.Objects {
		if !child.Type.IsText() {
			return objectColor(child)
		}
	}
	if o.Fill == "" || o.Fill == "transparent" {
		return o.Stroke
	}
	return o.Fill
}

func objectText(o *canvas.Object) string {
	if o.Type.IsText() {
		return strconv.Quote(o.Text)
	}
	for _, child := range o.Objects {
		if child.Type.IsText() {
			return strconv.Quote(child.Text)
		}
	}
	return ""
}

// splitArgs separates the flags fs knows about from positional arguments so
// flags may follow the action.
func splitArgs(fs *flag.FlagSet, args []string) ([]string, []string, error) {
	var flags []string
	var positionals []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			positionals = append(positionals, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if name == "" {
			positionals = append(positionals, arg)
			continue
		}
		parts := strings.SplitN(name, "=", 2)
		base := strings.ToLower(parts[0])
		f := fs.Lookup(base)
		if f == nil {
			positionals = append(positionals, arg)
			continue
		}
		norm := "-" + base
		if len(parts) == 2 {
			flags = append(flags, norm+"="+parts[1])
			continue
		}
		if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
			flags = append(flags, norm)
			continue
		}
		if i+1 >= len(args) {
			return nil, nil, fmt.Errorf("flag %s requires a value", arg)
		}
		flags = append(flags, norm, args[i+1])
		i++
	}
	return flags, positionals, nil
}
