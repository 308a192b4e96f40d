package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/example/damagemark/internal/canvas"
	"github.com/example/damagemark/internal/render"
	"github.com/example/damagemark/internal/store"
	"github.com/example/damagemark/internal/upload"
)

// Document returns the annotations as they would be saved.
func (s *Surface) Document() (*canvas.Document, error) {
	if s.canvas == nil {
		return nil, ErrNoCanvas
	}
	return s.canvas.Document(), nil
}

// canonical ends any text edit and returns to the unzoomed, unselected view
// every export is taken from.
func (s *Surface) canonical() error {
	if s.canvas == nil {
		return ErrNoCanvas
	}
	s.EndTextEdit()
	s.ResetZoom()
	s.canvas.DiscardActive()
	return nil
}

// Snapshot renders and serializes the canvas in its canonical state and
// keeps the document in local storage.
func (s *Surface) Snapshot(ctx context.Context) (upload.Payload, error) {
	if err := s.canonical(); err != nil {
		return upload.Payload{}, err
	}
	doc, err := s.canvas.Document().Marshal()
	if err != nil {
		return upload.Payload{}, fmt.Errorf("serialize annotations: %w", err)
	}
	var img bytes.Buffer
	if err := s.render(&img, render.JPEG); err != nil {
		return upload.Payload{}, err
	}
	if s.store != nil {
		if err := s.store.Put(ctx, StorageKey, doc); err != nil {
			return upload.Payload{}, fmt.Errorf("store annotations: %w", err)
		}
	}
	return upload.Payload{Image: img.Bytes(), ImageName: ImageName, Document: doc}, nil
}

// Save stores the annotations locally and hands the rendering and document
// to the submitter. The loading flag is raised for the duration.
func (s *Surface) Save(ctx context.Context) error {
	s.loading.Show()
	defer s.loading.Clear()
	p, err := s.Snapshot(ctx)
	if err != nil {
		s.logger.Error("save failed", "err", err)
		return err
	}
	if err := s.submitter.Submit(ctx, p); err != nil {
		s.logger.Error("submit failed", "err", err, "image_bytes", len(p.Image))
		return fmt.Errorf("submit: %w", err)
	}
	s.logger.Info("annotations saved", "objects", s.canvas.Len(), "image_bytes", len(p.Image))
	return nil
}

// Download writes the canonical rendering to w as a JPEG.
func (s *Surface) Download(w io.Writer) error {
	return s.Export(w, render.JPEG)
}

// Export writes the canonical rendering to w in format f.
func (s *Surface) Export(w io.Writer, f render.Format) error {
	if err := s.canonical(); err != nil {
		return err
	}
	return s.render(w, f)
}

func (s *Surface) render(w io.Writer, f render.Format) error {
	img, err := render.Rasterize(s.canvas, render.Options{})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := render.Encode(w, img, f, s.quality); err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

func (s *Surface) storedDocument(ctx context.Context) (*canvas.Document, error) {
	if s.store == nil {
		return nil, nil
	}
	data, err := s.store.Get(ctx, StorageKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read stored annotations: %w", err)
	}
	doc, err := canvas.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("stored annotations: %w", err)
	}
	return doc, nil
}
