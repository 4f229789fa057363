package domain

import (
	"math"
	"testing"
	"time"
)

func TestSessionCoordinates(t *testing.T) {
	s := activeSession(time.Now())
	pos, ok := SessionCoordinates(s)
	if !ok {
		t.Fatalf("expected coordinates for session with lat/lng")
	}
	if pos.Lat != *s.Latitude || pos.Lng != *s.Longitude {
		t.Fatalf("unexpected position %+v", pos)
	}

	s.Longitude = nil
	if _, ok := SessionCoordinates(s); ok {
		t.Fatalf("expected no coordinates when longitude missing")
	}

	nan := math.NaN()
	s.Longitude = &nan
	if _, ok := SessionCoordinates(s); ok {
		t.Fatalf("expected no coordinates for NaN longitude")
	}

	if _, ok := SessionCoordinates(nil); ok {
		t.Fatalf("expected no coordinates for nil session")
	}
}

func TestLiveSessionEnd(t *testing.T) {
	s := activeSession(time.Now().Add(-time.Hour))
	at := time.Now()
	s.End(at, EndedByTimer)

	if s.IsActive {
		t.Fatalf("expected session to be inactive")
	}
	if s.EndTime == nil || !s.EndTime.Equal(at) {
		t.Fatalf("expected end time %v, got %v", at, s.EndTime)
	}
	if s.EndedBy == nil || *s.EndedBy != EndedByTimer {
		t.Fatalf("expected ended_by timer, got %v", s.EndedBy)
	}
}
