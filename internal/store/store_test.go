package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(MemoryPath, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestKeyValue(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	if _, err := s.Get(ctx, "damage"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key error = %v, want ErrNotFound", err)
	}
	if err := s.Put(ctx, "damage", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, "damage", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := s.Get(ctx, "damage")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"a":2}` {
		t.Errorf("value = %s", got)
	}
	if err := s.Delete(ctx, "damage"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "damage"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted key error = %v", err)
	}
}

func TestSubmissions(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	if _, err := s.LatestSubmission(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty latest error = %v", err)
	}
	base := time.UnixMilli(1_700_000_000_000)
	var ids []int64
	for i, doc := range []string{`{"n":1}`, `{"n":2}`, `{"n":3}`} {
		id, err := s.AddSubmission(ctx, Submission{
			ImageName: "canvas_image.jpeg",
			Image:     []byte{0xff, 0xd8, byte(i)},
			Document:  doc,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		ids = append(ids, id)
	}
	latest, err := s.LatestSubmission(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != ids[2] || latest.Document != `{"n":3}` {
		t.Errorf("latest = %+v", latest)
	}
	first, err := s.Submission(ctx, ids[0])
	if err != nil {
		t.Fatalf("submission: %v", err)
	}
	if len(first.Image) != 3 || !first.CreatedAt.Equal(base) {
		t.Errorf("first = %+v", first)
	}
	list, err := s.ListSubmissions(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != ids[2] || list[1].ID != ids[1] {
		t.Errorf("list = %+v", list)
	}
	if list[0].Image != nil {
		t.Errorf("list should not carry image data")
	}
	if _, err := s.Submission(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing submission error = %v", err)
	}
}
