package domain

import (
	"time"

	"github.com/google/uuid"
)

type LiveSessionEventType string

const (
	LiveSessionStarted LiveSessionEventType = "live_session.started"
	LiveSessionEnded   LiveSessionEventType = "live_session.ended"
)

type LiveSessionEvent struct {
	Type       LiveSessionEventType `json:"type"`
	SessionID  uuid.UUID            `json:"session_id"`
	VendorID   uuid.UUID            `json:"vendor_id"`
	Position   *Coordinates         `json:"position,omitempty"`
	EndedBy    *EndedBy             `json:"ended_by,omitempty"`
	OccurredAt time.Time            `json:"occurred_at"`
}

func NewLiveSessionEvent(kind LiveSessionEventType, s *LiveSession, at time.Time) LiveSessionEvent {
	event := LiveSessionEvent{
		Type:       kind,
		SessionID:  s.ID,
		VendorID:   s.VendorID,
		EndedBy:    s.EndedBy,
		OccurredAt: at,
	}
	if pos, ok := SessionCoordinates(s); ok {
		event.Position = &pos
	}
	return event
}
