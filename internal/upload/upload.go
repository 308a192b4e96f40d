// Package upload hands saved annotations to whatever receives them: an HTTP
// endpoint, the local store, or nothing at all.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

// ErrStatus is wrapped when the endpoint answers with a non-2xx status.
var ErrStatus = errors.New("upload: unexpected status")

// Form field names of a submission.
const (
	FieldFile   = "File"
	FieldDamage = "Damage"
)

// Payload is one saved annotation: the rendered photo and its document.
type Payload struct {
	Image     []byte
	ImageName string
	Document  []byte
}

// Submitter receives saved annotations.
type Submitter interface {
	Submit(ctx context.Context, p Payload) error
}

// Nop discards submissions.
type Nop struct{}

func (Nop) Submit(context.Context, Payload) error { return nil }

// HTTPSubmitter posts submissions as multipart/form-data.
type HTTPSubmitter struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// HTTPOption configures an HTTPSubmitter.
type HTTPOption func(*HTTPSubmitter)

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) HTTPOption { return func(h *HTTPSubmitter) { h.client = c } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) HTTPOption { return func(h *HTTPSubmitter) { h.logger = l } }

// NewHTTP returns a submitter posting to url.
func NewHTTP(url string, opts ...HTTPOption) *HTTPSubmitter {
	h := &HTTPSubmitter{
		url:    url,
		client: &http.Client{Timeout: 60 * time.Second},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Submit sends p with the image in the File part and the document in the
// Damage part.
func (h *HTTPSubmitter) Submit(ctx context.Context, p Payload) error {
	body, contentType, err := Encode(p)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", h.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w %d from %s: %s", ErrStatus, resp.StatusCode, h.url, bytes.TrimSpace(msg))
	}
	h.logger.Info("submission sent", "url", h.url, "status", resp.StatusCode, "duration", time.Since(start))
	return nil
}

// Encode builds the multipart body of a submission and returns it with its
// content type.
func Encode(p Payload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	name := p.ImageName
	if name == "" {
		name = "canvas_image.jpeg"
	}
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FieldFile, name))
	hdr.Set("Content-Type", "image/jpeg")
	fw, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := fw.Write(p.Image); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}
	if err := mw.WriteField(FieldDamage, string(p.Document)); err != nil {
		return nil, "", fmt.Errorf("write damage part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
