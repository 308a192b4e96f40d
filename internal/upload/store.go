package upload

import (
	"context"

	"github.com/example/damagemark/internal/store"
)

// StoreSubmitter records submissions in a local store instead of sending
// them anywhere.
type StoreSubmitter struct {
	Store *store.Store
}

func (s StoreSubmitter) Submit(ctx context.Context, p Payload) error {
	_, err := s.Store.AddSubmission(ctx, store.Submission{
		ImageName: p.ImageName,
		Image:     p.Image,
		Document:  string(p.Document),
	})
	return err
}
