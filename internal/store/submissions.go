package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Submission is one received annotation.
type Submission struct {
	ID        int64
	ImageName string
	Image     []byte
	Document  string
	CreatedAt time.Time
}

// AddSubmission records sub and returns its id.
func (s *Store) AddSubmission(ctx context.Context, sub Submission) (int64, error) {
	created := sub.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (image_name, image, document, created_at) VALUES (?, ?, ?, ?)`,
		sub.ImageName, sub.Image, sub.Document, created.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("add submission: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add submission: %w", err)
	}
	s.logger.Info("submission stored", "id", id, "image_bytes", len(sub.Image))
	return id, nil
}

// Submission returns the submission with the given id.
func (s *Store) Submission(ctx context.Context, id int64) (Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, image_name, image, document, created_at FROM submissions WHERE id = ?`, id)
	sub, err := scanSubmission(row)
	if err != nil {
		return Submission{}, fmt.Errorf("submission %d: %w", id, err)
	}
	return sub, nil
}

// LatestSubmission returns the most recently added submission.
func (s *Store) LatestSubmission(ctx context.Context) (Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, image_name, image, document, created_at FROM submissions ORDER BY id DESC LIMIT 1`)
	sub, err := scanSubmission(row)
	if err != nil {
		return Submission{}, fmt.Errorf("latest submission: %w", err)
	}
	return sub, nil
}

// ListSubmissions returns up to limit submissions, newest first, without
// their image data.
func (s *Store) ListSubmissions(ctx context.Context, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, image_name, document, created_at FROM submissions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()
	var out []Submission
	for rows.Next() {
		var sub Submission
		var created int64
		if err := rows.Scan(&sub.ID, &sub.ImageName, &sub.Document, &created); err != nil {
			return nil, fmt.Errorf("list submissions: %w", err)
		}
		sub.CreatedAt = time.UnixMilli(created)
		out = append(out, sub)
	}
	return out, rows.Err()
}

func scanSubmission(row *sql.Row) (Submission, error) {
	var sub Submission
	var created int64
	err := row.Scan(&sub.ID, &sub.ImageName, &sub.Image, &sub.Document, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	if err != nil {
		return Submission{}, err
	}
	sub.CreatedAt = time.UnixMilli(created)
	return sub, nil
}
