package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

var (
	ErrReviewValidation   = errors.New("review validation failed")
	ErrReviewAlreadyExist = errors.New("review already exists for this vendor")
	ErrReviewNotFound     = errors.New("review not found")
	ErrReviewForbidden    = errors.New("not allowed to manage this review")
	ErrReviewOwnVendor    = errors.New("vendors cannot review their own business")
)

const maxReviewCommentLength = 2000

type ReviewCreateInput struct {
	Rating  int
	Comment *string
}

type ReviewService struct {
	reviews ports.ReviewRepository
	vendors ports.VendorRepository
	now     func() time.Time
}

func NewReviewService(reviews ports.ReviewRepository, vendors ports.VendorRepository) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		vendors: vendors,
		now:     time.Now,
	}
}

func (s *ReviewService) CreateReview(ctx context.Context, userID, vendorID uuid.UUID, input ReviewCreateInput) (*domain.Review, *domain.ReviewAggregate, error) {
	if err := validateRating(input.Rating); err != nil {
		return nil, nil, err
	}
	comment := normalizeString(input.Comment)
	if comment != nil && utf8.RuneCountInString(*comment) > maxReviewCommentLength {
		return nil, nil, fmt.Errorf("%w: comment must be at most %d characters", ErrReviewValidation, maxReviewCommentLength)
	}

	vendor, err := s.findVendor(ctx, vendorID)
	if err != nil {
		return nil, nil, err
	}
	if vendor.OwnerID == userID {
		return nil, nil, ErrReviewOwnVendor
	}

	stored, err := s.reviews.Create(ctx, &domain.Review{
		VendorID: vendorID,
		UserID:   userID,
		Rating:   input.Rating,
		Comment:  comment,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, ErrReviewAlreadyExist
		}
		return nil, nil, err
	}

	review, err := s.reviews.GetByID(ctx, stored.ID)
	if err != nil {
		return nil, nil, err
	}
	aggregate, err := s.reviews.AggregateByVendor(ctx, vendorID)
	if err != nil {
		return nil, nil, err
	}
	return review, aggregate, nil
}

func (s *ReviewService) ListVendorReviews(ctx context.Context, vendorID uuid.UUID, filter domain.ReviewListFilter) (*domain.ReviewListResult, error) {
	if _, err := s.findVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	normalized, err := normalizeReviewFilter(filter)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListByVendor(ctx, vendorID, normalized)
	if err != nil {
		return nil, err
	}
	aggregate, err := s.reviews.AggregateByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	return &domain.ReviewListResult{
		VendorID:  vendorID,
		Reviews:   reviews,
		Aggregate: *aggregate,
		Limit:     normalized.Limit,
		Offset:    normalized.Offset,
	}, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, requesterID uuid.UUID, isAdmin bool) error {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if isNotFound(err) {
			return ErrReviewNotFound
		}
		return err
	}
	if review.DeletedAt != nil {
		return ErrReviewNotFound
	}
	if review.UserID != requesterID && !isAdmin {
		return ErrReviewForbidden
	}
	if err := s.reviews.SoftDelete(ctx, reviewID, requesterID); err != nil {
		if isNotFound(err) {
			return ErrReviewNotFound
		}
		return err
	}
	return nil
}

func (s *ReviewService) findVendor(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error) {
	if vendorID == uuid.Nil {
		return nil, ErrVendorNotFound
	}
	vendor, err := s.vendors.FindByID(ctx, vendorID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrVendorNotFound
		}
		return nil, err
	}
	return vendor, nil
}

func normalizeReviewFilter(filter domain.ReviewListFilter) (domain.ReviewListFilter, error) {
	result := filter
	result.Limit, result.Offset = normalizePagination(result.Limit, result.Offset, 20, 100)

	if result.SortField != domain.ReviewSortRating {
		result.SortField = domain.ReviewSortCreatedAt
	}
	if result.SortOrder != domain.SortOrderAsc {
		result.SortOrder = domain.SortOrderDesc
	}
	if result.MinRating != nil {
		if err := validateRating(*result.MinRating); err != nil {
			return domain.ReviewListFilter{}, err
		}
	}
	if result.MaxRating != nil {
		if err := validateRating(*result.MaxRating); err != nil {
			return domain.ReviewListFilter{}, err
		}
	}
	if result.MinRating != nil && result.MaxRating != nil && *result.MinRating > *result.MaxRating {
		return domain.ReviewListFilter{}, fmt.Errorf("%w: min_rating cannot be greater than max_rating", ErrReviewValidation)
	}
	return result, nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrReviewValidation)
	}
	return nil
}
