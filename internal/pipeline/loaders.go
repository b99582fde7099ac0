package pipeline

import (
	"context"

	"github.com/couchcryptid/quake-strec-etl/internal/domain"
)

// MultiLoader writes each batch to every loader in order and stops at the
// first failure.
type MultiLoader []BatchLoader

func (m MultiLoader) LoadBatch(ctx context.Context, results []domain.StrecResult) error {
	for _, l := range m {
		if err := l.LoadBatch(ctx, results); err != nil {
			return err
		}
	}
	return nil
}
