package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

type PlatformSettingsRepository struct {
	db *sqlx.DB
}

func NewPlatformSettingsRepo(db *sqlx.DB) *PlatformSettingsRepository {
	return &PlatformSettingsRepository{db: db}
}

// Get reads the singleton settings row, falling back to defaults until one
// has been saved.
func (r *PlatformSettingsRepository) Get(ctx context.Context) (domain.PlatformSettings, error) {
	query := `
		SELECT require_vendor_approval, allow_auto_vendor_approval, updated_at, updated_by
		FROM platform_settings
		WHERE id = 1`

	var settings domain.PlatformSettings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DefaultPlatformSettings(), nil
		}
		return domain.PlatformSettings{}, err
	}
	return settings, nil
}

func (r *PlatformSettingsRepository) Save(ctx context.Context, settings domain.PlatformSettings, updatedBy uuid.UUID) (domain.PlatformSettings, error) {
	query := `
		INSERT INTO platform_settings (id, require_vendor_approval, allow_auto_vendor_approval, updated_at, updated_by)
		VALUES (1, $1, $2, NOW(), $3)
		ON CONFLICT (id) DO UPDATE SET
			require_vendor_approval = EXCLUDED.require_vendor_approval,
			allow_auto_vendor_approval = EXCLUDED.allow_auto_vendor_approval,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
		RETURNING require_vendor_approval, allow_auto_vendor_approval, updated_at, updated_by`

	var saved domain.PlatformSettings
	if err := r.db.GetContext(ctx, &saved, query,
		settings.RequireVendorApproval,
		settings.AllowAutoVendorApproval,
		updatedBy,
	); err != nil {
		return domain.PlatformSettings{}, err
	}
	return saved, nil
}

var _ ports.PlatformSettingsRepository = (*PlatformSettingsRepository)(nil)
