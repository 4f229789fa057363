package ports

import (
	"context"

	"github.com/aqui-app/aqui-api/internal/domain"
)

// MapCache holds raw live-vendor rows per viewport. Entries belong to a
// generation; Invalidate moves to the next one, so rows read before an
// invalidation and written after it are never served. A miss is reported
// with ok=false and a nil error.
type MapCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, generation int64, key string) (items []domain.LiveVendor, ok bool, err error)
	Set(ctx context.Context, generation int64, key string, items []domain.LiveVendor) error
	Invalidate(ctx context.Context) error
}
