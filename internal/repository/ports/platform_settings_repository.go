package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/aqui-app/aqui-api/internal/domain"
)

type PlatformSettingsRepository interface {
	Get(ctx context.Context) (domain.PlatformSettings, error)
	Save(ctx context.Context, settings domain.PlatformSettings, updatedBy uuid.UUID) (domain.PlatformSettings, error)
}
