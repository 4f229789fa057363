package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

var ErrInvalidBounds = errors.New("invalid map bounds")

type MapService struct {
	sessions ports.LiveSessionRepository
	cache    ports.MapCache
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewMapService(sessions ports.LiveSessionRepository, cache ports.MapCache, logger logrus.FieldLogger) *MapService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &MapService{sessions: sessions, cache: cache, log: logger, now: time.Now}
}

// LiveMarkers lists one marker per live vendor with a usable position. Cached
// rows are reused, but status and time remaining are always derived now.
func (s *MapService) LiveMarkers(ctx context.Context, bounds *domain.Bounds) ([]domain.MapMarker, error) {
	if bounds != nil {
		if err := bounds.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBounds, err)
		}
	}

	var query *domain.Bounds
	if bounds != nil {
		snapped := bounds.Snapped()
		query = &snapped
	}
	rows, err := s.liveRows(ctx, query)
	if err != nil {
		return nil, err
	}

	now := s.now()
	markers := make([]domain.MapMarker, 0, len(rows))
	for i := range rows {
		session := &rows[i].Session
		position, ok := domain.SessionCoordinates(session)
		if !ok {
			continue
		}
		if bounds != nil && !bounds.Contains(position) {
			continue
		}
		status := domain.DeriveMapStatus(session, now)
		if status == domain.MapStatusOffline {
			continue
		}
		markers = append(markers, domain.MapMarker{
			ID:            session.ID,
			Position:      position,
			Status:        status,
			TimeRemaining: domain.MinutesRemaining(session, now),
			Vendor:        rows[i].Vendor,
		})
	}
	return markers, nil
}

func (s *MapService) liveRows(ctx context.Context, bounds *domain.Bounds) ([]domain.LiveVendor, error) {
	key := "all"
	if bounds != nil {
		key = bounds.Key()
	}

	// The generation is read before the store so rows that race an
	// invalidation are written under the old generation and never served.
	cache := s.cache
	var generation int64
	if cache != nil {
		gen, err := cache.Generation(ctx)
		if err != nil {
			s.log.WithError(err).Warn("map cache read failed")
			cache = nil
		} else {
			generation = gen
		}
	}

	if cache != nil {
		rows, ok, err := cache.Get(ctx, generation, key)
		if err != nil {
			s.log.WithError(err).Warn("map cache read failed")
		} else if ok {
			return rows, nil
		}
	}

	rows, err := s.sessions.ListLive(ctx, bounds)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		if err := cache.Set(ctx, generation, key, rows); err != nil {
			s.log.WithError(err).Warn("map cache write failed")
		}
	}
	return rows, nil
}
