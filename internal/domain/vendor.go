package domain

import (
	"time"

	"github.com/google/uuid"
)

type VendorStatus string

const (
	VendorStatusPending  VendorStatus = "pending"
	VendorStatusApproved VendorStatus = "approved"
	VendorStatusActive   VendorStatus = "active"
	VendorStatusRejected VendorStatus = "rejected"
)

func (s VendorStatus) Valid() bool {
	switch s {
	case VendorStatusPending, VendorStatusApproved, VendorStatusActive, VendorStatusRejected:
		return true
	}
	return false
}

type Vendor struct {
	ID              uuid.UUID    `db:"id" json:"id"`
	OwnerID         uuid.UUID    `db:"owner_id" json:"owner_id"`
	BusinessName    string       `db:"business_name" json:"business_name"`
	Description     *string      `db:"description" json:"description,omitempty"`
	Category        *string      `db:"category" json:"category,omitempty"`
	Phone           *string      `db:"phone" json:"phone,omitempty"`
	ProfileImageURL *string      `db:"profile_image_url" json:"profile_image_url,omitempty"`
	Status          VendorStatus `db:"status" json:"status"`
	IsActive        bool         `db:"is_active" json:"is_active"`
	AverageRating   float64      `db:"average_rating" json:"average_rating"`
	TotalReviews    int          `db:"total_reviews" json:"total_reviews"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}

// IsApproved reports whether an admin has cleared the vendor.
func (v Vendor) IsApproved() bool {
	return v.Status == VendorStatusApproved || v.Status == VendorStatusActive
}

type VendorFields struct {
	BusinessName *string `json:"business_name,omitempty"`
	Description  *string `json:"description,omitempty"`
	Category     *string `json:"category,omitempty"`
	Phone        *string `json:"phone,omitempty"`
}

type VendorSearchFilter struct {
	Query    string
	Category string
	LiveOnly bool
	// Statuses and RequireActive restrict results to vendors the platform
	// currently lets go live. An empty Statuses matches every status.
	Statuses      []VendorStatus
	RequireActive bool
	Limit         int
	Offset        int
}

type VendorAdminFilter struct {
	Status *VendorStatus
	Limit  int
	Offset int
}

// VendorListItem is a vendor joined with its active live session, if any.
type VendorListItem struct {
	Vendor
	Session *LiveSession `db:"-" json:"-"`
}
