package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/damagemark/internal/store"
)

func TestHTTPSubmitterMultipart(t *testing.T) {
	var gotDamage, gotName string
	var gotImage []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		gotDamage = r.FormValue(FieldDamage)
		f, hdr, err := r.FormFile(FieldFile)
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer f.Close()
		gotName = hdr.Filename
		gotImage, _ = io.ReadAll(f)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	p := Payload{Image: []byte{1, 2, 3}, ImageName: "canvas_image.jpeg", Document: []byte(`{"objects":[]}`)}
	if err := NewHTTP(srv.URL).Submit(context.Background(), p); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if gotDamage != `{"objects":[]}` {
		t.Errorf("Damage = %q", gotDamage)
	}
	if gotName != "canvas_image.jpeg" || string(gotImage) != "\x01\x02\x03" {
		t.Errorf("File = %q %v", gotName, gotImage)
	}
}

func TestHTTPSubmitterStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()
	err := NewHTTP(srv.URL).Submit(context.Background(), Payload{})
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("err = %v, want ErrStatus", err)
	}
}

func TestStoreSubmitter(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(store.MemoryPath, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()
	if err := (StoreSubmitter{Store: st}).Submit(ctx, Payload{Image: []byte{9}, ImageName: "x.jpeg", Document: []byte("{}")}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	sub, err := st.LatestSubmission(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if sub.ImageName != "x.jpeg" || sub.Document != "{}" {
		t.Errorf("stored = %+v", sub)
	}
}
