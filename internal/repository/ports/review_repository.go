package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/aqui-app/aqui-api/internal/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, filter domain.ReviewListFilter) ([]domain.Review, error)
	AggregateByVendor(ctx context.Context, vendorID uuid.UUID) (*domain.ReviewAggregate, error)
	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error
}
