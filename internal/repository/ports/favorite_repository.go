package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/aqui-app/aqui-api/internal/domain"
)

type FavoriteRepository interface {
	Add(ctx context.Context, userID, vendorID uuid.UUID) (*domain.Favorite, error)
	Remove(ctx context.Context, userID, vendorID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.FavoriteListItem, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CountByVendor(ctx context.Context, vendorID uuid.UUID) (int64, error)
	ListUserIDsByVendor(ctx context.Context, vendorID uuid.UUID) ([]uuid.UUID, error)
}
