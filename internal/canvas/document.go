package canvas

import (
	"encoding/json"
	"fmt"
)

// DocumentVersion tags documents written by this package.
const DocumentVersion = "damagemark/1"

// Document is the serialized form of a canvas: every top-level object plus
// the background reference and the logical size.
type Document struct {
	Version    string      `json:"version"`
	Width      float64     `json:"width,omitempty"`
	Height     float64     `json:"height,omitempty"`
	Objects    []*Object   `json:"objects"`
	Background *Background `json:"backgroundImage,omitempty"`
}

// ParseDocument decodes and validates a document.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks that no object, at any depth, is null or of an unknown
// type.
func (d *Document) Validate() error {
	for i, o := range d.Objects {
		if err := validateObject(o, fmt.Sprintf("object %d", i)); err != nil {
			return err
		}
	}
	return nil
}

func validateObject(o *Object, where string) error {
	if o == nil {
		return fmt.Errorf("%s is null", where)
	}
	if !o.Type.valid() {
		return fmt.Errorf("%s: unknown type %q", where, o.Type)
	}
	for i, child := range o.Objects {
		if err := validateObject(child, fmt.Sprintf("%s.%d", where, i)); err != nil {
			return err
		}
	}
	return nil
}

// Marshal encodes the document as JSON.
func (d *Document) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

// Document captures the current objects. The result shares nothing with the
// canvas.
func (c *Canvas) Document() *Document {
	doc := &Document{
		Version: DocumentVersion,
		Width:   c.Width,
		Height:  c.Height,
		Objects: make([]*Object, 0, len(c.objects)),
	}
	for _, o := range c.objects {
		doc.Objects = append(doc.Objects, o.Clone())
	}
	if c.Background != nil {
		bg := *c.Background
		bg.Image = nil
		doc.Background = &bg
	}
	return doc
}

// Load replaces the canvas objects with copies of the document's objects.
// The background image already set on the canvas is kept when the document
// references the same source.
func (c *Canvas) Load(doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	c.objects = make([]*Object, 0, len(doc.Objects))
	c.active = nil
	for _, o := range doc.Objects {
		c.objects = append(c.objects, o.Clone())
	}
	if doc.Background != nil && (c.Background == nil || c.Background.Src != doc.Background.Src) {
		bg := *doc.Background
		c.Background = &bg
	}
	return nil
}
