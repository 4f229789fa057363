package domain

import "time"

// Map markers and vendor detail pages derive status differently. The two
// variants are kept apart because clients rely on each vocabulary.

type MapStatus string

const (
	MapStatusOpen    MapStatus = "open"
	MapStatusClosing MapStatus = "closing"
	MapStatusOffline MapStatus = "offline"
)

type DetailStatus string

const (
	DetailStatusLive        DetailStatus = "live"
	DetailStatusClosingSoon DetailStatus = "closing_soon"
	DetailStatusOffline     DetailStatus = "offline"
)

const (
	// MapClosingAfter is how long a session may run before the map shows it as closing.
	MapClosingAfter = 7 * time.Hour
	// ClosingSoonWindow is the remaining time under which a detail page shows closing_soon.
	ClosingSoonWindow = 30 * time.Minute
	// DefaultScheduledDuration applies when a session has neither deadline nor planned duration.
	DefaultScheduledDuration = 120 * time.Minute
)

// isLive reports whether a session still counts as running at now. An end
// time in the past wins over the active flag, which covers reads that land
// between a deadline and the next sweep.
func isLive(s *LiveSession, now time.Time) bool {
	if s == nil || !s.IsActive {
		return false
	}
	if s.EndTime != nil && !s.EndTime.After(now) {
		return false
	}
	return true
}

func DeriveMapStatus(s *LiveSession, now time.Time) MapStatus {
	if !isLive(s, now) {
		return MapStatusOffline
	}
	if now.Sub(s.StartTime) > MapClosingAfter {
		return MapStatusClosing
	}
	return MapStatusOpen
}

// Deadline is the instant a session is expected to end: the explicit auto end
// time, else start plus the planned duration (two hours when unknown).
func Deadline(s *LiveSession) time.Time {
	if s.AutoEndTime != nil {
		return *s.AutoEndTime
	}
	duration := DefaultScheduledDuration
	if s.WasScheduledDuration != nil && *s.WasScheduledDuration > 0 {
		duration = time.Duration(*s.WasScheduledDuration) * time.Minute
	}
	return s.StartTime.Add(duration)
}

func DeriveDetailStatus(s *LiveSession, now time.Time) DetailStatus {
	if !isLive(s, now) {
		return DetailStatusOffline
	}
	remaining := Deadline(s).Sub(now)
	switch {
	case remaining <= 0:
		return DetailStatusOffline
	case remaining < ClosingSoonWindow:
		return DetailStatusClosingSoon
	default:
		return DetailStatusLive
	}
}

// MinutesRemaining returns whole minutes until the auto end time, or nil when
// the session has no deadline.
func MinutesRemaining(s *LiveSession, now time.Time) *int {
	if s == nil || s.AutoEndTime == nil {
		return nil
	}
	minutes := int(s.AutoEndTime.Sub(now) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	return &minutes
}
