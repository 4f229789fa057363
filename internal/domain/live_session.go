package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type EndedBy string

const (
	EndedByVendor EndedBy = "vendor"
	EndedByTimer  EndedBy = "timer"
	EndedByAdmin  EndedBy = "admin"
)

type LiveSession struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	VendorID             uuid.UUID  `db:"vendor_id" json:"vendor_id"`
	Latitude             *float64   `db:"latitude" json:"latitude"`
	Longitude            *float64   `db:"longitude" json:"longitude"`
	Address              *string    `db:"address" json:"address,omitempty"`
	StartTime            time.Time  `db:"start_time" json:"start_time"`
	EndTime              *time.Time `db:"end_time" json:"end_time,omitempty"`
	AutoEndTime          *time.Time `db:"auto_end_time" json:"auto_end_time,omitempty"`
	IsActive             bool       `db:"is_active" json:"is_active"`
	EndedBy              *EndedBy   `db:"ended_by" json:"ended_by,omitempty"`
	EstimatedCustomers   *int       `db:"estimated_customers" json:"estimated_customers,omitempty"`
	WasScheduledDuration *int       `db:"was_scheduled_duration" json:"was_scheduled_duration,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

// End marks the session finished at the given instant.
func (s *LiveSession) End(at time.Time, by EndedBy) {
	end := at
	reason := by
	s.IsActive = false
	s.EndTime = &end
	s.EndedBy = &reason
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SessionCoordinates returns the map position of a session. Sessions without
// two finite coordinates have no position and are left off spatial results.
func SessionCoordinates(s *LiveSession) (Coordinates, bool) {
	if s == nil || s.Latitude == nil || s.Longitude == nil {
		return Coordinates{}, false
	}
	lat, lng := *s.Latitude, *s.Longitude
	if !isFinite(lat) || !isFinite(lng) {
		return Coordinates{}, false
	}
	return Coordinates{Lat: lat, Lng: lng}, true
}

func ValidLatitude(v float64) bool {
	return isFinite(v) && v >= -90 && v <= 90
}

func ValidLongitude(v float64) bool {
	return isFinite(v) && v >= -180 && v <= 180
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type StartLiveSessionInput struct {
	Latitude           *float64
	Longitude          *float64
	Address            *string
	DurationMinutes    *int
	EstimatedCustomers *int
}

// LiveSessionStart is the outcome of starting a session: the new row and the
// one it replaced, if the vendor was already live.
type LiveSessionStart struct {
	Session  *LiveSession
	Replaced *LiveSession
}
