package editor

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/example/damagemark/internal/canvas"
)

const (
	pairPadX = 25
	pairPadY = 14
)

// groupIdentity is what a split group hands back to the group re-formed
// when its edit ends.
type groupIdentity struct {
	id   string
	name string
}

// BeginTextEdit opens o for typing. A group holding editable text is split
// into its background shape and text; the shape stops taking part in
// selection until the edit ends. A standalone editable text is edited in
// place.
func (s *Surface) BeginTextEdit(o *canvas.Object) bool {
	if s.canvas == nil || o == nil || !o.Editable() {
		return false
	}
	if s.textEditing != nil {
		s.EndTextEdit()
	}
	if o.Type == canvas.TypeIText {
		s.groupEditing = false
		s.textEditing = o
		s.editPair = nil
		s.selectAll = true
		s.canvas.SetActive(o)
		return true
	}
	var text, pair *canvas.Object
	for _, child := range o.Objects {
		switch {
		case child.Type == canvas.TypeIText && text == nil:
			text = child
		case !child.Type.IsText() && pair == nil:
			pair = child
		}
	}
	s.editGroup = groupIdentity{id: o.ID, name: o.Name}
	children := canvas.Ungroup(o)
	s.canvas.Remove(o)
	s.canvas.Add(children...)
	for _, child := range children {
		s.configure(child)
	}
	if pair != nil {
		pair.Selectable = false
		pair.Evented = false
	}
	text.Selectable = true
	text.Evented = true
	s.groupEditing = true
	s.textEditing = text
	s.editPair = pair
	s.selectAll = true
	s.canvas.SetActive(text)
	s.logger.Debug("group opened for editing", "id", text.ID)
	return true
}

// InsertText types str into the edited text. The first input after the edit
// begins replaces the whole text.
func (s *Surface) InsertText(str string) {
	t := s.textEditing
	if t == nil || str == "" {
		return
	}
	if s.selectAll {
		s.setText("")
		s.selectAll = false
	}
	s.setText(t.Text + str)
}

// Backspace deletes the last character of the edited text, or all of it
// when the edit has just begun.
func (s *Surface) Backspace() {
	t := s.textEditing
	if t == nil {
		return
	}
	if s.selectAll {
		s.selectAll = false
		s.setText("")
		return
	}
	if t.Text == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(t.Text)
	s.setText(t.Text[:len(t.Text)-size])
}

// setText keeps the text centred where it was and refits its background.
func (s *Surface) setText(str string) {
	t := s.textEditing
	center := t.Center()
	t.Text = str
	canvas.FitText(t)
	t.SetCenter(center)
	s.textChanged()
}

func (s *Surface) textChanged() {
	t, pair := s.textEditing, s.editPair
	if t == nil || pair == nil {
		return
	}
	pair.Width = t.Width + pairPadX
	pair.Height = t.Height + pairPadY
	pair.Angle = t.Angle
	pair.SetCenter(t.Center())
}

// EndTextEdit closes the current text edit. Empty text is replaced by the
// placeholder, and a split group is put back together.
func (s *Surface) EndTextEdit() {
	t := s.textEditing
	if t == nil {
		return
	}
	if strings.TrimSpace(t.Text) == "" {
		s.setText(s.kit.Placeholder)
	}
	if s.groupEditing && s.editPair != nil && s.canvas != nil {
		pair := s.editPair
		s.canvas.Remove(pair, t)
		pair.Evented = true
		g := canvas.NewGroup(pair, t)
		g.ID, g.Name = s.editGroup.id, s.editGroup.name
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		s.configure(g)
		g.Selectable = s.interactive()
		g.Evented = s.interactive()
		s.canvas.Add(g)
		s.canvas.DiscardActive()
		s.logger.Debug("group closed after editing", "id", g.ID, "text", t.Text)
	}
	s.groupEditing = false
	s.textEditing = nil
	s.editPair = nil
	s.editGroup = groupIdentity{}
	s.selectAll = false
}
