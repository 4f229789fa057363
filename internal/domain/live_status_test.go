package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func activeSession(start time.Time) *LiveSession {
	lat, lng := 38.7223, -9.1393
	return &LiveSession{
		ID:        uuid.New(),
		VendorID:  uuid.New(),
		Latitude:  &lat,
		Longitude: &lng,
		StartTime: start,
		IsActive:  true,
	}
}

func TestDeriveMapStatus_Thresholds(t *testing.T) {
	now := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)

	old := activeSession(now.Add(-(7*time.Hour + time.Minute)))
	if got := DeriveMapStatus(old, now); got != MapStatusClosing {
		t.Fatalf("expected closing for 7h01m old session, got %s", got)
	}

	younger := activeSession(now.Add(-7 * time.Hour))
	if got := DeriveMapStatus(younger, now); got != MapStatusOpen {
		t.Fatalf("expected open for 7h00m old session, got %s", got)
	}

	fresh := activeSession(now.Add(-10 * time.Minute))
	if got := DeriveMapStatus(fresh, now); got != MapStatusOpen {
		t.Fatalf("expected open for fresh session, got %s", got)
	}
}

func TestDeriveMapStatus_Offline(t *testing.T) {
	now := time.Now()

	if got := DeriveMapStatus(nil, now); got != MapStatusOffline {
		t.Fatalf("expected offline for nil session, got %s", got)
	}

	ended := activeSession(now.Add(-time.Hour))
	ended.End(now.Add(-time.Minute), EndedByVendor)
	if got := DeriveMapStatus(ended, now); got != MapStatusOffline {
		t.Fatalf("expected offline for ended session, got %s", got)
	}

	// Active flag still set but end time already passed.
	stale := activeSession(now.Add(-time.Hour))
	past := now.Add(-time.Second)
	stale.EndTime = &past
	if got := DeriveMapStatus(stale, now); got != MapStatusOffline {
		t.Fatalf("expected offline when end_time has passed, got %s", got)
	}
}

func TestDeriveDetailStatus(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	withDeadline := activeSession(now.Add(-time.Hour))
	deadline := now.Add(45 * time.Minute)
	withDeadline.AutoEndTime = &deadline
	if got := DeriveDetailStatus(withDeadline, now); got != DetailStatusLive {
		t.Fatalf("expected live with 45m remaining, got %s", got)
	}

	soon := now.Add(29 * time.Minute)
	withDeadline.AutoEndTime = &soon
	if got := DeriveDetailStatus(withDeadline, now); got != DetailStatusClosingSoon {
		t.Fatalf("expected closing_soon with 29m remaining, got %s", got)
	}

	passed := now.Add(-time.Minute)
	withDeadline.AutoEndTime = &passed
	if got := DeriveDetailStatus(withDeadline, now); got != DetailStatusOffline {
		t.Fatalf("expected offline after deadline, got %s", got)
	}
}

func TestDeriveDetailStatus_ScheduledDurationFallback(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	// No auto end time, no planned duration: two hour default.
	s := activeSession(now.Add(-100 * time.Minute))
	if got := DeriveDetailStatus(s, now); got != DetailStatusClosingSoon {
		t.Fatalf("expected closing_soon 100m into default 120m window, got %s", got)
	}

	planned := 240
	s.WasScheduledDuration = &planned
	if got := DeriveDetailStatus(s, now); got != DetailStatusLive {
		t.Fatalf("expected live 100m into a 240m plan, got %s", got)
	}
}

func TestMapAndDetailStatusDisagreeAfterSevenHours(t *testing.T) {
	now := time.Date(2026, 5, 1, 23, 0, 0, 0, time.UTC)
	s := activeSession(now.Add(-8 * time.Hour))
	deadline := now.Add(2 * time.Hour)
	s.AutoEndTime = &deadline

	if got := DeriveMapStatus(s, now); got != MapStatusClosing {
		t.Fatalf("expected map closing, got %s", got)
	}
	if got := DeriveDetailStatus(s, now); got != DetailStatusLive {
		t.Fatalf("expected detail live, got %s", got)
	}
}

func TestMinutesRemaining(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s := activeSession(now)
	if MinutesRemaining(s, now) != nil {
		t.Fatalf("expected nil remaining without auto end time")
	}

	deadline := now.Add(90*time.Minute + 30*time.Second)
	s.AutoEndTime = &deadline
	if got := MinutesRemaining(s, now); got == nil || *got != 90 {
		t.Fatalf("expected 90 minutes remaining, got %v", got)
	}

	if got := MinutesRemaining(s, now.Add(3*time.Hour)); got == nil || *got != 0 {
		t.Fatalf("expected remaining floored at 0, got %v", got)
	}
}
