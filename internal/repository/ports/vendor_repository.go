package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/aqui-app/aqui-api/internal/domain"
)

type VendorRepository interface {
	Create(ctx context.Context, vendor *domain.Vendor) (*domain.Vendor, error)
	Update(ctx context.Context, id uuid.UUID, fields domain.VendorFields) (*domain.Vendor, error)
	SetProfileImage(ctx context.Context, id uuid.UUID, url string) (*domain.Vendor, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.VendorStatus) (*domain.Vendor, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Vendor, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Vendor, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Vendor, error)
	Search(ctx context.Context, filter domain.VendorSearchFilter) ([]domain.VendorListItem, error)
	ListForAdmin(ctx context.Context, filter domain.VendorAdminFilter) ([]domain.Vendor, error)
}
