package domain

import (
	"time"

	"github.com/google/uuid"
)

type Favorite struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	VendorID  uuid.UUID `db:"vendor_id" json:"vendor_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type FavoriteListItem struct {
	Favorite
	BusinessName    string  `db:"business_name" json:"business_name"`
	Category        *string `db:"category" json:"category,omitempty"`
	ProfileImageURL *string `db:"profile_image_url" json:"profile_image_url,omitempty"`
	IsLive          bool    `db:"is_live" json:"is_live"`
}
