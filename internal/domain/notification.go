package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotificationVendorLive     NotificationKind = "vendor_live"
	NotificationVendorApproved NotificationKind = "vendor_approved"
	NotificationVendorRejected NotificationKind = "vendor_rejected"
)

type Notification struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	UserID    uuid.UUID        `db:"user_id" json:"user_id"`
	Kind      NotificationKind `db:"kind" json:"kind"`
	Title     string           `db:"title" json:"title"`
	Body      *string          `db:"body" json:"body,omitempty"`
	VendorID  *uuid.UUID       `db:"vendor_id" json:"vendor_id,omitempty"`
	ReadAt    *time.Time       `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}
