package domain

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	VendorID  uuid.UUID  `db:"vendor_id" json:"vendor_id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	Rating    int        `db:"rating" json:"rating"`
	Comment   *string    `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
	DeletedBy *uuid.UUID `db:"deleted_by" json:"-"`

	ReviewerName  *string `db:"reviewer_name" json:"-"`
	ReviewerEmail *string `db:"reviewer_email" json:"-"`
}

type ReviewAggregate struct {
	VendorID      uuid.UUID   `json:"vendor_id"`
	AverageRating float64     `json:"average_rating"`
	TotalReviews  int         `json:"total_reviews"`
	RatingCounts  map[int]int `json:"rating_counts"`
}

type ReviewListResult struct {
	VendorID  uuid.UUID       `json:"vendor_id"`
	Reviews   []Review        `json:"reviews"`
	Aggregate ReviewAggregate `json:"aggregate"`
	Limit     int             `json:"limit"`
	Offset    int             `json:"offset"`
}

type ReviewSortField string

const (
	ReviewSortCreatedAt ReviewSortField = "created_at"
	ReviewSortRating    ReviewSortField = "rating"
)

type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

type ReviewListFilter struct {
	Limit     int
	Offset    int
	MinRating *int
	MaxRating *int
	SortField ReviewSortField
	SortOrder SortOrder
}
