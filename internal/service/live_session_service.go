package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

var (
	ErrLiveSessionValidation = errors.New("live session validation failed")
	ErrLiveSessionForbidden  = errors.New("vendor is not allowed to go live")
	ErrLiveSessionNotFound   = errors.New("no active live session")
	ErrLiveSessionConflict   = errors.New("live session changed concurrently")
)

const (
	MinSessionMinutes = 1
	MaxSessionMinutes = 24 * 60
	maxAddressLength  = 500
)

// vendorLiveNotifier fans a go-live out to the vendor's followers.
type vendorLiveNotifier interface {
	NotifyVendorLive(ctx context.Context, vendor *domain.Vendor, session *domain.LiveSession) (int, error)
}

type LiveSessionDeps struct {
	Vendors   ports.VendorRepository
	Sessions  ports.LiveSessionRepository
	Settings  ports.PlatformSettingsRepository
	Cache     ports.MapCache
	Publisher ports.LiveSessionPublisher
	Notifier  vendorLiveNotifier
	Logger    logrus.FieldLogger
}

type LiveSessionService struct {
	vendors   ports.VendorRepository
	sessions  ports.LiveSessionRepository
	settings  ports.PlatformSettingsRepository
	cache     ports.MapCache
	publisher ports.LiveSessionPublisher
	notifier  vendorLiveNotifier
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewLiveSessionService(deps LiveSessionDeps) *LiveSessionService {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LiveSessionService{
		vendors:   deps.Vendors,
		sessions:  deps.Sessions,
		settings:  deps.Settings,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		notifier:  deps.Notifier,
		log:       logger,
		now:       time.Now,
	}
}

// LiveSessionStatus is a session with both status vocabularies derived at the
// same instant.
type LiveSessionStatus struct {
	Session       *domain.LiveSession `json:"session"`
	MapStatus     domain.MapStatus    `json:"map_status"`
	DetailStatus  domain.DetailStatus `json:"detail_status"`
	TimeRemaining *int                `json:"timeRemaining"`
}

func (s *LiveSessionService) Describe(session *domain.LiveSession) LiveSessionStatus {
	now := s.now()
	return LiveSessionStatus{
		Session:       session,
		MapStatus:     domain.DeriveMapStatus(session, now),
		DetailStatus:  domain.DeriveDetailStatus(session, now),
		TimeRemaining: domain.MinutesRemaining(session, now),
	}
}

func (s *LiveSessionService) Start(ctx context.Context, userID uuid.UUID, input domain.StartLiveSessionInput) (*domain.LiveSessionStart, error) {
	if err := validateStartInput(input); err != nil {
		return nil, err
	}

	vendor, err := s.vendorForOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.CanGoLive(*vendor) {
		return nil, fmt.Errorf("%w: %s", ErrLiveSessionForbidden, denialReason(settings, vendor))
	}

	now := s.now()
	session := &domain.LiveSession{
		VendorID:           vendor.ID,
		Latitude:           input.Latitude,
		Longitude:          input.Longitude,
		Address:            normalizeString(input.Address),
		StartTime:          now,
		IsActive:           true,
		EstimatedCustomers: input.EstimatedCustomers,
	}
	if input.DurationMinutes != nil {
		minutes := *input.DurationMinutes
		autoEnd := now.Add(time.Duration(minutes) * time.Minute)
		session.AutoEndTime = &autoEnd
		session.WasScheduledDuration = &minutes
	}

	// Re-checked under the vendor row lock: a suspension or rejection that
	// commits after the check above must not leave a live session behind.
	eligible := func(locked domain.Vendor) error {
		if settings.CanGoLive(locked) {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrLiveSessionForbidden, denialReason(settings, &locked))
	}

	result, err := s.sessions.StartExclusive(ctx, session, eligible)
	if err != nil {
		switch {
		case errors.Is(err, ErrLiveSessionForbidden):
			return nil, err
		case isUniqueViolation(err):
			return nil, ErrLiveSessionConflict
		case isNotFound(err):
			return nil, fmt.Errorf("%w: vendor profile not found", ErrLiveSessionForbidden)
		default:
			return nil, err
		}
	}

	logger := s.log.WithFields(logrus.Fields{
		"vendor_id":  vendor.ID,
		"session_id": result.Session.ID,
	})
	logger.Info("live session started")

	s.invalidateMap(ctx)
	if result.Replaced != nil {
		logger.WithField("replaced_session_id", result.Replaced.ID).Info("previous live session ended")
		s.publish(ctx, domain.NewLiveSessionEvent(domain.LiveSessionEnded, result.Replaced, now))
	}
	s.publish(ctx, domain.NewLiveSessionEvent(domain.LiveSessionStarted, result.Session, now))
	if s.notifier != nil {
		if n, err := s.notifier.NotifyVendorLive(ctx, vendor, result.Session); err != nil {
			logger.WithError(err).Warn("notify followers failed")
		} else if n > 0 {
			logger.WithField("notified", n).Debug("followers notified")
		}
	}

	return result, nil
}

// End stops the caller's active session. Ending twice reports
// ErrLiveSessionNotFound on the second call.
func (s *LiveSessionService) End(ctx context.Context, userID uuid.UUID) (*domain.LiveSession, error) {
	vendor, err := s.vendorForOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.end(ctx, vendor.ID, domain.EndedByVendor)
}

func (s *LiveSessionService) ForceEnd(ctx context.Context, vendorID uuid.UUID) (*domain.LiveSession, error) {
	if _, err := s.vendors.FindByID(ctx, vendorID); err != nil {
		if isNotFound(err) {
			return nil, ErrVendorNotFound
		}
		return nil, err
	}
	return s.end(ctx, vendorID, domain.EndedByAdmin)
}

func (s *LiveSessionService) end(ctx context.Context, vendorID uuid.UUID, by domain.EndedBy) (*domain.LiveSession, error) {
	now := s.now()
	ended, err := s.sessions.EndActive(ctx, vendorID, now, by)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrLiveSessionNotFound
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"vendor_id":  vendorID,
		"session_id": ended.ID,
		"ended_by":   by,
	}).Info("live session ended")

	s.invalidateMap(ctx)
	s.publish(ctx, domain.NewLiveSessionEvent(domain.LiveSessionEnded, ended, now))
	return ended, nil
}

func (s *LiveSessionService) Current(ctx context.Context, userID uuid.UUID) (*domain.LiveSession, error) {
	vendor, err := s.vendorForOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.ActiveForVendor(ctx, vendor.ID)
}

func (s *LiveSessionService) ActiveForVendor(ctx context.Context, vendorID uuid.UUID) (*domain.LiveSession, error) {
	session, err := s.sessions.FindActiveByVendor(ctx, vendorID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrLiveSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *LiveSessionService) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.LiveSession, int, int, error) {
	vendor, err := s.vendorForOwner(ctx, userID)
	if err != nil {
		return nil, 0, 0, err
	}
	limit, offset = normalizePagination(limit, offset, 20, 100)
	sessions, err := s.sessions.ListByVendor(ctx, vendor.ID, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	return sessions, limit, offset, nil
}

func (s *LiveSessionService) vendorForOwner(ctx context.Context, userID uuid.UUID) (*domain.Vendor, error) {
	vendor, err := s.vendors.FindByOwner(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: no vendor profile for this account", ErrLiveSessionForbidden)
		}
		return nil, err
	}
	return vendor, nil
}

func (s *LiveSessionService) invalidateMap(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WithError(err).Warn("map cache invalidation failed")
	}
}

func (s *LiveSessionService) publish(ctx context.Context, event domain.LiveSessionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLiveSession(ctx, event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event":      event.Type,
			"session_id": event.SessionID,
		}).Warn("publish live session event failed")
	}
}

func validateStartInput(input domain.StartLiveSessionInput) error {
	if input.Latitude == nil || input.Longitude == nil {
		return fmt.Errorf("%w: latitude and longitude are required", ErrLiveSessionValidation)
	}
	if !domain.ValidLatitude(*input.Latitude) {
		return fmt.Errorf("%w: latitude must be a number between -90 and 90", ErrLiveSessionValidation)
	}
	if !domain.ValidLongitude(*input.Longitude) {
		return fmt.Errorf("%w: longitude must be a number between -180 and 180", ErrLiveSessionValidation)
	}
	if input.DurationMinutes != nil {
		d := *input.DurationMinutes
		if d < MinSessionMinutes || d > MaxSessionMinutes {
			return fmt.Errorf("%w: duration_minutes must be between %d and %d", ErrLiveSessionValidation, MinSessionMinutes, MaxSessionMinutes)
		}
	}
	if input.EstimatedCustomers != nil && *input.EstimatedCustomers < 0 {
		return fmt.Errorf("%w: estimated_customers cannot be negative", ErrLiveSessionValidation)
	}
	if input.Address != nil && utf8.RuneCountInString(*input.Address) > maxAddressLength {
		return fmt.Errorf("%w: address must be at most %d characters", ErrLiveSessionValidation, maxAddressLength)
	}
	return nil
}

func denialReason(settings domain.PlatformSettings, vendor *domain.Vendor) string {
	if !vendor.IsActive {
		return "vendor account is suspended"
	}
	switch vendor.Status {
	case domain.VendorStatusPending:
		return "vendor is awaiting approval"
	case domain.VendorStatusRejected:
		return "vendor application was rejected"
	}
	if settings.RequireVendorApproval {
		return "vendor approval is required"
	}
	return "vendor is not eligible"
}
