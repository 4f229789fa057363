package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

var (
	ErrFavoriteAlreadyExists = errors.New("vendor already saved to favorites")
	ErrFavoriteNotFound      = errors.New("favorite not found")
)

type FavoriteService struct {
	favorites ports.FavoriteRepository
	vendors   ports.VendorRepository
}

type FavoriteListResult struct {
	Items  []domain.FavoriteListItem
	Total  int64
	Limit  int
	Offset int
}

func NewFavoriteService(favoriteRepo ports.FavoriteRepository, vendorRepo ports.VendorRepository) *FavoriteService {
	return &FavoriteService{
		favorites: favoriteRepo,
		vendors:   vendorRepo,
	}
}

func (s *FavoriteService) Save(ctx context.Context, userID, vendorID uuid.UUID) (*domain.Favorite, error) {
	if err := s.ensureVendor(ctx, vendorID); err != nil {
		return nil, err
	}

	favorite, err := s.favorites.Add(ctx, userID, vendorID)
	if err != nil {
		switch {
		case isNotFound(err), isUniqueViolation(err):
			return nil, ErrFavoriteAlreadyExists
		default:
			return nil, err
		}
	}
	return favorite, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, vendorID uuid.UUID) error {
	if err := s.favorites.Remove(ctx, userID, vendorID); err != nil {
		if isNotFound(err) {
			return ErrFavoriteNotFound
		}
		return err
	}
	return nil
}

func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID, limit, offset int) (*FavoriteListResult, error) {
	nLimit, nOffset := normalizePagination(limit, offset, 20, 100)

	items, err := s.favorites.ListByUser(ctx, userID, nLimit, nOffset)
	if err != nil {
		return nil, err
	}
	total, err := s.favorites.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &FavoriteListResult{
		Items:  items,
		Total:  total,
		Limit:  nLimit,
		Offset: nOffset,
	}, nil
}

func (s *FavoriteService) Count(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	if err := s.ensureVendor(ctx, vendorID); err != nil {
		return 0, err
	}
	return s.favorites.CountByVendor(ctx, vendorID)
}

func (s *FavoriteService) ensureVendor(ctx context.Context, vendorID uuid.UUID) error {
	if _, err := s.vendors.FindByID(ctx, vendorID); err != nil {
		if isNotFound(err) {
			return ErrVendorNotFound
		}
		return err
	}
	return nil
}
