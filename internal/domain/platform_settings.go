package domain

import (
	"time"

	"github.com/google/uuid"
)

type PlatformSettings struct {
	RequireVendorApproval   bool       `db:"require_vendor_approval" json:"require_vendor_approval"`
	AllowAutoVendorApproval bool       `db:"allow_auto_vendor_approval" json:"allow_auto_vendor_approval"`
	UpdatedAt               time.Time  `db:"updated_at" json:"updated_at"`
	UpdatedBy               *uuid.UUID `db:"updated_by" json:"updated_by,omitempty"`
}

// DefaultPlatformSettings is used until an admin saves the settings row.
func DefaultPlatformSettings() PlatformSettings {
	return PlatformSettings{
		RequireVendorApproval:   true,
		AllowAutoVendorApproval: false,
	}
}

// CanGoLive applies the approval policy to a vendor.
func (p PlatformSettings) CanGoLive(v Vendor) bool {
	if !p.RequireVendorApproval {
		return true
	}
	if !v.IsActive {
		return false
	}
	if v.IsApproved() {
		return true
	}
	return p.AllowAutoVendorApproval && v.Status == VendorStatusPending
}

// Scope narrows a vendor search to the vendors CanGoLive would accept, which
// are also the ones shown publicly.
func (p PlatformSettings) Scope(filter VendorSearchFilter) VendorSearchFilter {
	if !p.RequireVendorApproval {
		filter.Statuses = nil
		filter.RequireActive = false
		return filter
	}
	filter.Statuses = []VendorStatus{VendorStatusApproved, VendorStatusActive}
	if p.AllowAutoVendorApproval {
		filter.Statuses = append(filter.Statuses, VendorStatusPending)
	}
	filter.RequireActive = true
	return filter
}

type PlatformSettingsUpdate struct {
	RequireVendorApproval   *bool `json:"require_vendor_approval,omitempty"`
	AllowAutoVendorApproval *bool `json:"allow_auto_vendor_approval,omitempty"`
}
