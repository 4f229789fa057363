package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

type SweepResult struct {
	Ended int `json:"ended"`
}

// SessionSweeper ends sessions whose auto end time has passed. It has no
// timer of its own; a scheduler calls Sweep.
type SessionSweeper struct {
	sessions  ports.LiveSessionRepository
	cache     ports.MapCache
	publisher ports.LiveSessionPublisher
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewSessionSweeper(sessions ports.LiveSessionRepository, cache ports.MapCache, publisher ports.LiveSessionPublisher, logger logrus.FieldLogger) *SessionSweeper {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SessionSweeper{
		sessions:  sessions,
		cache:     cache,
		publisher: publisher,
		log:       logger,
		now:       time.Now,
	}
}

func (s *SessionSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	now := s.now()
	ended, err := s.sessions.ExpireDue(ctx, now)
	if err != nil {
		return SweepResult{}, err
	}

	for i := range ended {
		session := &ended[i]
		if s.publisher == nil {
			continue
		}
		event := domain.NewLiveSessionEvent(domain.LiveSessionEnded, session, now)
		if err := s.publisher.PublishLiveSession(ctx, event); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"session_id": session.ID,
				"vendor_id":  session.VendorID,
			}).Warn("publish expiry event failed")
		}
	}

	if len(ended) > 0 && s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.WithError(err).Warn("map cache invalidation failed")
		}
	}

	s.log.WithField("ended", len(ended)).Info("live session sweep finished")
	return SweepResult{Ended: len(ended)}, nil
}
