package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aqui-app/aqui-api/internal/domain"
)

type NotificationRepository interface {
	CreateMany(ctx context.Context, notifications []domain.Notification) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
}
