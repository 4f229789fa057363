package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Bounds is a map viewport. East smaller than West means the box crosses the
// antimeridian.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

func (b Bounds) Validate() error {
	if !ValidLatitude(b.North) || !ValidLatitude(b.South) {
		return fmt.Errorf("north and south must be latitudes between -90 and 90")
	}
	if !ValidLongitude(b.East) || !ValidLongitude(b.West) {
		return fmt.Errorf("east and west must be longitudes between -180 and 180")
	}
	if b.North < b.South {
		return fmt.Errorf("north must be greater than or equal to south")
	}
	return nil
}

func (b Bounds) CrossesAntimeridian() bool {
	return b.East < b.West
}

func (b Bounds) Contains(c Coordinates) bool {
	if c.Lat < b.South || c.Lat > b.North {
		return false
	}
	if b.CrossesAntimeridian() {
		return c.Lng >= b.West || c.Lng <= b.East
	}
	return c.Lng >= b.West && c.Lng <= b.East
}

const snapGrid = 1000

// Snapped widens the bounds outward to a 0.001 degree grid (about 100m) so
// nearby viewports share a cache entry. The result always contains b.
func (b Bounds) Snapped() Bounds {
	s := Bounds{
		North: math.Min(90, math.Ceil(b.North*snapGrid)/snapGrid),
		South: math.Max(-90, math.Floor(b.South*snapGrid)/snapGrid),
		East:  math.Min(180, math.Ceil(b.East*snapGrid)/snapGrid),
		West:  math.Max(-180, math.Floor(b.West*snapGrid)/snapGrid),
	}
	if s.CrossesAntimeridian() != b.CrossesAntimeridian() {
		return b
	}
	return s
}

// Key renders the bounds for cache keys. Values print at full precision so
// bounds Snapped left unsnapped never share a key with a different box.
func (b Bounds) Key() string {
	parts := make([]string, 0, 4)
	for _, v := range []float64{b.North, b.South, b.East, b.West} {
		parts = append(parts, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return strings.Join(parts, ":")
}

type MapVendor struct {
	ID              uuid.UUID `json:"id"`
	BusinessName    string    `json:"business_name"`
	Category        *string   `json:"category,omitempty"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty"`
	AverageRating   float64   `json:"average_rating"`
}

// LiveVendor is an active session joined with its vendor, as read for the map.
type LiveVendor struct {
	Session LiveSession `json:"session"`
	Vendor  MapVendor   `json:"vendor"`
}

type MapMarker struct {
	ID            uuid.UUID   `json:"id"`
	Position      Coordinates `json:"position"`
	Status        MapStatus   `json:"status"`
	TimeRemaining *int        `json:"timeRemaining"`
	Vendor        MapVendor   `json:"vendor"`
}
