package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

type PlatformSettingsService struct {
	settings ports.PlatformSettingsRepository
	log      logrus.FieldLogger
}

func NewPlatformSettingsService(settings ports.PlatformSettingsRepository, logger logrus.FieldLogger) *PlatformSettingsService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PlatformSettingsService{settings: settings, log: logger}
}

func (s *PlatformSettingsService) Get(ctx context.Context) (domain.PlatformSettings, error) {
	return s.settings.Get(ctx)
}

// Update applies a partial change. Omitted fields keep their current value.
func (s *PlatformSettingsService) Update(ctx context.Context, adminID uuid.UUID, update domain.PlatformSettingsUpdate) (domain.PlatformSettings, error) {
	current, err := s.settings.Get(ctx)
	if err != nil {
		return domain.PlatformSettings{}, err
	}
	if update.RequireVendorApproval != nil {
		current.RequireVendorApproval = *update.RequireVendorApproval
	}
	if update.AllowAutoVendorApproval != nil {
		current.AllowAutoVendorApproval = *update.AllowAutoVendorApproval
	}

	saved, err := s.settings.Save(ctx, current, adminID)
	if err != nil {
		return domain.PlatformSettings{}, err
	}
	s.log.WithFields(logrus.Fields{
		"admin_id":                   adminID,
		"require_vendor_approval":    saved.RequireVendorApproval,
		"allow_auto_vendor_approval": saved.AllowAutoVendorApproval,
	}).Info("platform settings updated")
	return saved, nil
}
