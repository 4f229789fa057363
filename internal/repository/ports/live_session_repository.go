package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aqui-app/aqui-api/internal/domain"
)

type LiveSessionRepository interface {
	// StartExclusive ends the vendor's active session, if any, and inserts the
	// new one in a single transaction. eligible is checked against the vendor
	// row as locked by that transaction; a non-nil error aborts the start.
	StartExclusive(ctx context.Context, session *domain.LiveSession, eligible func(domain.Vendor) error) (*domain.LiveSessionStart, error)
	EndActive(ctx context.Context, vendorID uuid.UUID, at time.Time, by domain.EndedBy) (*domain.LiveSession, error)
	ExpireDue(ctx context.Context, now time.Time) ([]domain.LiveSession, error)
	FindActiveByVendor(ctx context.Context, vendorID uuid.UUID) (*domain.LiveSession, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]domain.LiveSession, error)
	ListLive(ctx context.Context, bounds *domain.Bounds) ([]domain.LiveVendor, error)
}
