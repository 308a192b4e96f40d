// Package server receives saved annotations over HTTP and serves them back.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"

	"github.com/example/damagemark/internal/canvas"
	"github.com/example/damagemark/internal/imagesource"
	"github.com/example/damagemark/internal/store"
	"github.com/example/damagemark/internal/upload"
)

// DefaultMaxUploadMB bounds the size of one submission.
const DefaultMaxUploadMB = 20

// Server stores submissions in a store.Store.
type Server struct {
	store     *store.Store
	logger    *slog.Logger
	policy    *bluemonday.Policy
	maxUpload int64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.logger = l } }

// WithMaxUploadMB limits the request body size.
func WithMaxUploadMB(mb int) Option {
	return func(s *Server) {
		if mb > 0 {
			s.maxUpload = int64(mb) << 20
		}
	}
}

// New returns a server backed by st.
func New(st *store.Store, opts ...Option) *Server {
	s := &Server{
		store:     st,
		logger:    slog.Default(),
		policy:    bluemonday.StrictPolicy(),
		maxUpload: DefaultMaxUploadMB << 20,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterHTTP adds the submission endpoints to r.
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Post("/api/v1/damage", s.handleSubmit)
	r.Get("/api/v1/damage", s.handleList)
	r.Get("/api/v1/damage/latest", s.handleLatest)
	r.Get("/api/v1/damage/{id}", s.handleGet)
	r.Get("/api/v1/damage/{id}/image", s.handleImage)
}

// Router returns a chi router with the standard middleware and every
// endpoint registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.RegisterHTTP(r)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Summary is a listed submission.
type Summary struct {
	ID        int64     `json:"id"`
	ImageName string    `json:"image_name"`
	Objects   int       `json:"objects"`
	CreatedAt time.Time `json:"created_at"`
}

// Detail is a submission with its document.
type Detail struct {
	ID        int64           `json:"id"`
	ImageName string          `json:"image_name"`
	CreatedAt time.Time       `json:"created_at"`
	Document  json.RawMessage `json:"document"`
}

// handleSubmit stores a multipart submission.
// POST /api/v1/damage
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("submission exceeds %d bytes", s.maxUpload))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, hdr, err := r.FormFile(upload.FieldFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing %s part", upload.FieldFile))
		return
	}
	defer file.Close()
	img, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := imagesource.Decode(img); err != nil {
		writeError(w, http.StatusUnsupportedMediaType, fmt.Errorf("%s: %w", hdr.Filename, err))
		return
	}

	doc, err := s.sanitize([]byte(r.FormValue(upload.FieldDamage)))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := s.store.AddSubmission(r.Context(), store.Submission{
		ImageName: hdr.Filename,
		Image:     img,
		Document:  string(doc),
	})
	if err != nil {
		s.logger.Error("store submission", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	s.logger.Info("submission received",
		"id", id,
		"request_id", middleware.GetReqID(r.Context()),
		"image_bytes", len(img))
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// sanitize validates a document and strips markup from every string a
// viewer may display.
func (s *Server) sanitize(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("missing %s part", upload.FieldDamage)
	}
	doc, err := canvas.ParseDocument(data)
	if err != nil {
		return nil, err
	}
	for _, o := range doc.Objects {
		o.Walk(func(n *canvas.Object) {
			n.Text = s.policy.Sanitize(n.Text)
			n.Name = s.policy.Sanitize(n.Name)
		})
	}
	if doc.Background != nil {
		doc.Background.Src = s.policy.Sanitize(doc.Background.Src)
	}
	return doc.Marshal()
}

// handleList lists recent submissions.
// GET /api/v1/damage?limit=N
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	subs, err := s.store.ListSubmissions(r.Context(), limit)
	if err != nil {
		s.logger.Error("list submissions", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	out := make([]Summary, 0, len(subs))
	for _, sub := range subs {
		n := 0
		if doc, err := canvas.ParseDocument([]byte(sub.Document)); err == nil {
			n = len(doc.Objects)
		}
		out = append(out, Summary{ID: sub.ID, ImageName: sub.ImageName, Objects: n, CreatedAt: sub.CreatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/v1/damage/latest
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	sub, err := s.store.LatestSubmission(r.Context())
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail(sub))
}

// GET /api/v1/damage/{id}
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, detail(sub))
}

// GET /api/v1/damage/{id}/image
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(sub.Image))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", sub.ImageName))
	w.Write(sub.Image)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (store.Submission, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid id"))
		return store.Submission{}, false
	}
	sub, err := s.store.Submission(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return store.Submission{}, false
	}
	return sub, true
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, errors.New("not found"))
		return
	}
	s.logger.Error("read submission", "error", err)
	writeError(w, http.StatusInternalServerError, errors.New("internal error"))
}

func detail(sub store.Submission) Detail {
	return Detail{
		ID:        sub.ID,
		ImageName: sub.ImageName,
		CreatedAt: sub.CreatedAt,
		Document:  json.RawMessage(sub.Document),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
