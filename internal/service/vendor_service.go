package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/media"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

var (
	ErrVendorValidation    = errors.New("vendor validation failed")
	ErrVendorAlreadyExists = errors.New("account already has a vendor profile")
	ErrVendorImage         = errors.New("vendor image rejected")
	ErrStorageUnavailable  = errors.New("image storage is not configured")
)

const (
	maxBusinessNameLength = 120
	maxDescriptionLength  = 2000
	maxCategoryLength     = 60
	maxPhoneLength        = 30
)

type roleGranter interface {
	GrantRole(ctx context.Context, userID uuid.UUID, roleName string) error
}

type sessionForceEnder interface {
	ForceEnd(ctx context.Context, vendorID uuid.UUID) (*domain.LiveSession, error)
}

type VendorDeps struct {
	Vendors    ports.VendorRepository
	Sessions   ports.LiveSessionRepository
	Settings   ports.PlatformSettingsRepository
	Reviews    ports.ReviewRepository
	Favorites  ports.FavoriteRepository
	Users      ports.UserRepository
	Storage    ports.ObjectStorage
	Images     media.Processor
	Mailer     ports.VendorMailer
	Roles      roleGranter
	LiveEnder  sessionForceEnder
	Logger     logrus.FieldLogger
	Bucket     string
	PublicBase string
}

type VendorService struct {
	vendors    ports.VendorRepository
	sessions   ports.LiveSessionRepository
	settings   ports.PlatformSettingsRepository
	reviews    ports.ReviewRepository
	favorites  ports.FavoriteRepository
	users      ports.UserRepository
	storage    ports.ObjectStorage
	images     media.Processor
	mailer     ports.VendorMailer
	roles      roleGranter
	liveEnder  sessionForceEnder
	log        logrus.FieldLogger
	bucket     string
	publicBase string
	now        func() time.Time
}

func NewVendorService(deps VendorDeps) *VendorService {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &VendorService{
		vendors:    deps.Vendors,
		sessions:   deps.Sessions,
		settings:   deps.Settings,
		reviews:    deps.Reviews,
		favorites:  deps.Favorites,
		users:      deps.Users,
		storage:    deps.Storage,
		images:     deps.Images,
		mailer:     deps.Mailer,
		roles:      deps.Roles,
		liveEnder:  deps.LiveEnder,
		log:        logger,
		bucket:     strings.TrimSpace(deps.Bucket),
		publicBase: strings.TrimRight(deps.PublicBase, "/"),
		now:        time.Now,
	}
}

// VendorSummary is a search result row.
type VendorSummary struct {
	domain.Vendor
	LiveStatus    domain.MapStatus `json:"live_status"`
	LiveSessionID *uuid.UUID       `json:"live_session_id,omitempty"`
}

type VendorDetail struct {
	Vendor         *domain.Vendor         `json:"vendor"`
	Session        *domain.LiveSession    `json:"live_session"`
	Status         domain.DetailStatus    `json:"status"`
	TimeRemaining  *int                   `json:"timeRemaining"`
	Reviews        domain.ReviewAggregate `json:"reviews"`
	FavoritesCount int64                  `json:"favorites_count"`
}

func (s *VendorService) Create(ctx context.Context, ownerID uuid.UUID, fields domain.VendorFields) (*domain.Vendor, error) {
	if fields.BusinessName == nil || strings.TrimSpace(*fields.BusinessName) == "" {
		return nil, fmt.Errorf("%w: business_name is required", ErrVendorValidation)
	}
	if err := validateVendorFields(fields); err != nil {
		return nil, err
	}

	vendor, err := s.vendors.Create(ctx, &domain.Vendor{
		OwnerID:      ownerID,
		BusinessName: strings.TrimSpace(*fields.BusinessName),
		Description:  normalizeString(fields.Description),
		Category:     normalizeCategory(fields.Category),
		Phone:        normalizeString(fields.Phone),
		Status:       domain.VendorStatusPending,
		IsActive:     true,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrVendorAlreadyExists
		}
		return nil, err
	}

	if s.roles != nil {
		if err := s.roles.GrantRole(ctx, ownerID, domain.RoleVendor); err != nil {
			return nil, err
		}
	}
	s.log.WithFields(logrus.Fields{"vendor_id": vendor.ID, "owner_id": ownerID}).Info("vendor profile created")
	return vendor, nil
}

func (s *VendorService) Mine(ctx context.Context, ownerID uuid.UUID) (*domain.Vendor, error) {
	vendor, err := s.vendors.FindByOwner(ctx, ownerID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrVendorNotFound
		}
		return nil, err
	}
	return vendor, nil
}

func (s *VendorService) UpdateMine(ctx context.Context, ownerID uuid.UUID, fields domain.VendorFields) (*domain.Vendor, error) {
	if fields.BusinessName != nil && strings.TrimSpace(*fields.BusinessName) == "" {
		return nil, fmt.Errorf("%w: business_name cannot be empty", ErrVendorValidation)
	}
	if err := validateVendorFields(fields); err != nil {
		return nil, err
	}
	vendor, err := s.Mine(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if fields.Category != nil {
		normalized := ""
		if c := normalizeCategory(fields.Category); c != nil {
			normalized = *c
		}
		fields.Category = &normalized
	}
	updated, err := s.vendors.Update(ctx, vendor.ID, fields)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrVendorNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *VendorService) UploadImage(ctx context.Context, ownerID uuid.UUID, upload media.Upload) (*domain.Vendor, error) {
	if s.storage == nil || s.bucket == "" {
		return nil, ErrStorageUnavailable
	}
	vendor, err := s.Mine(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	contentType := upload.ContentType
	reader := upload.Reader
	size := upload.Size
	if s.images != nil {
		result, err := s.images.Process(ctx, upload, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrVendorImage, err)
		}
		contentType = result.ContentType
		reader = bytes.NewReader(result.Bytes)
		size = int64(len(result.Bytes))
	}

	objectName := fmt.Sprintf("vendors/%s/profile_%s%s", vendor.ID, s.now().UTC().Format("20060102T150405Z"), media.Extension(contentType))
	url, err := s.storage.Upload(ctx, s.bucket, objectName, contentType, reader, size)
	if err != nil {
		return nil, err
	}
	if s.publicBase != "" {
		url = s.publicBase + "/" + strings.TrimLeft(objectName, "/")
	}

	return s.vendors.SetProfileImage(ctx, vendor.ID, url)
}

func (s *VendorService) Search(ctx context.Context, filter domain.VendorSearchFilter) ([]VendorSummary, int, int, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, 0, 0, err
	}
	filter.Limit, filter.Offset = normalizePagination(filter.Limit, filter.Offset, 20, 100)
	scoped := settings.Scope(filter)

	items, err := s.vendors.Search(ctx, scoped)
	if err != nil {
		return nil, 0, 0, err
	}

	now := s.now()
	summaries := make([]VendorSummary, 0, len(items))
	for _, item := range items {
		summary := VendorSummary{
			Vendor:     item.Vendor,
			LiveStatus: domain.DeriveMapStatus(item.Session, now),
		}
		if item.Session != nil {
			id := item.Session.ID
			summary.LiveSessionID = &id
		}
		summaries = append(summaries, summary)
	}
	return summaries, scoped.Limit, scoped.Offset, nil
}

// Detail returns a publicly visible vendor. Vendors the current policy would
// not let go live are reported as not found.
func (s *VendorService) Detail(ctx context.Context, id uuid.UUID) (*VendorDetail, error) {
	vendor, err := s.vendors.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrVendorNotFound
		}
		return nil, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.CanGoLive(*vendor) {
		return nil, ErrVendorNotFound
	}

	session, err := s.sessions.FindActiveByVendor(ctx, vendor.ID)
	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		session = nil
	}

	aggregate, err := s.reviews.AggregateByVendor(ctx, vendor.ID)
	if err != nil {
		return nil, err
	}
	favorites, err := s.favorites.CountByVendor(ctx, vendor.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &VendorDetail{
		Vendor:         vendor,
		Session:        session,
		Status:         domain.DeriveDetailStatus(session, now),
		TimeRemaining:  domain.MinutesRemaining(session, now),
		Reviews:        *aggregate,
		FavoritesCount: favorites,
	}, nil
}

func (s *VendorService) ListForAdmin(ctx context.Context, filter domain.VendorAdminFilter) ([]domain.Vendor, int, int, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, 0, fmt.Errorf("%w: unknown status %q", ErrVendorValidation, *filter.Status)
	}
	filter.Limit, filter.Offset = normalizePagination(filter.Limit, filter.Offset, 50, 200)
	vendors, err := s.vendors.ListForAdmin(ctx, filter)
	if err != nil {
		return nil, 0, 0, err
	}
	return vendors, filter.Limit, filter.Offset, nil
}

func (s *VendorService) Approve(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	return s.decide(ctx, id, domain.VendorStatusApproved)
}

func (s *VendorService) Reject(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	return s.decide(ctx, id, domain.VendorStatusRejected)
}

// Suspend deactivates the vendor and force-ends any running session. The
// suspension stands even when the force end fails; starts are refused for an
// inactive vendor either way.
func (s *VendorService) Suspend(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	vendor, err := s.vendors.SetActive(ctx, id, false)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrVendorNotFound
		}
		return nil, err
	}
	logger := s.log.WithField("vendor_id", id)
	logger.Info("vendor suspended")
	if s.liveEnder != nil {
		if _, err := s.liveEnder.ForceEnd(ctx, id); err != nil && !errors.Is(err, ErrLiveSessionNotFound) {
			logger.WithError(err).Warn("force end after suspension failed")
		}
	}
	return vendor, nil
}

func (s *VendorService) Reinstate(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	vendor, err := s.vendors.SetActive(ctx, id, true)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrVendorNotFound
		}
		return nil, err
	}
	s.log.WithField("vendor_id", id).Info("vendor reinstated")
	return vendor, nil
}

func (s *VendorService) decide(ctx context.Context, id uuid.UUID, status domain.VendorStatus) (*domain.Vendor, error) {
	vendor, err := s.vendors.SetStatus(ctx, id, status)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrVendorNotFound
		}
		return nil, err
	}
	logger := s.log.WithFields(logrus.Fields{"vendor_id": id, "status": status})
	logger.Info("vendor status changed")

	if status == domain.VendorStatusRejected && s.liveEnder != nil {
		if _, err := s.liveEnder.ForceEnd(ctx, id); err != nil && !errors.Is(err, ErrLiveSessionNotFound) {
			logger.WithError(err).Warn("force end after rejection failed")
		}
	}
	s.mailOwner(ctx, vendor, logger)
	return vendor, nil
}

func (s *VendorService) mailOwner(ctx context.Context, vendor *domain.Vendor, logger logrus.FieldLogger) {
	if s.mailer == nil || s.users == nil {
		return
	}
	owner, err := s.users.FindByID(ctx, vendor.OwnerID)
	if err != nil {
		logger.WithError(err).Warn("load vendor owner for status mail failed")
		return
	}
	if err := s.mailer.SendVendorStatus(ctx, owner.Email, vendor.BusinessName, vendor.Status); err != nil {
		logger.WithError(err).Warn("vendor status mail failed")
	}
}

func validateVendorFields(fields domain.VendorFields) error {
	check := func(name string, value *string, max int) error {
		if value != nil && utf8.RuneCountInString(strings.TrimSpace(*value)) > max {
			return fmt.Errorf("%w: %s must be at most %d characters", ErrVendorValidation, name, max)
		}
		return nil
	}
	if err := check("business_name", fields.BusinessName, maxBusinessNameLength); err != nil {
		return err
	}
	if err := check("description", fields.Description, maxDescriptionLength); err != nil {
		return err
	}
	if err := check("category", fields.Category, maxCategoryLength); err != nil {
		return err
	}
	return check("phone", fields.Phone, maxPhoneLength)
}

func normalizeCategory(value *string) *string {
	normalized := normalizeString(value)
	if normalized == nil {
		return nil
	}
	lower := strings.ToLower(*normalized)
	return &lower
}
