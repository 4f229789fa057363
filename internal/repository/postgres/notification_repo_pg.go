package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepo(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateMany inserts notifications in one round trip via unnest.
func (r *NotificationRepository) CreateMany(ctx context.Context, notifications []domain.Notification) (int, error) {
	if len(notifications) == 0 {
		return 0, nil
	}

	userIDs := make([]string, 0, len(notifications))
	kinds := make([]string, 0, len(notifications))
	titles := make([]string, 0, len(notifications))
	bodies := make([]sql.NullString, 0, len(notifications))
	vendorIDs := make([]sql.NullString, 0, len(notifications))
	for _, n := range notifications {
		userIDs = append(userIDs, n.UserID.String())
		kinds = append(kinds, string(n.Kind))
		titles = append(titles, n.Title)
		bodies = append(bodies, nullString(n.Body))
		if n.VendorID != nil {
			vendorIDs = append(vendorIDs, sql.NullString{String: n.VendorID.String(), Valid: true})
		} else {
			vendorIDs = append(vendorIDs, sql.NullString{})
		}
	}

	const query = `
		INSERT INTO notification (user_id, kind, title, body, vendor_id)
		SELECT u::uuid, k, t, b, v::uuid
		FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::text[]) AS x(u, k, t, b, v)
	`
	result, err := r.db.ExecContext(ctx, query,
		pq.Array(userIDs),
		pq.Array(kinds),
		pq.Array(titles),
		pq.Array(bodies),
		pq.Array(vendorIDs),
	)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter) ([]domain.Notification, error) {
	where := "WHERE user_id = $1"
	if filter.UnreadOnly {
		where += " AND read_at IS NULL"
	}
	query := fmt.Sprintf(`
		SELECT id, user_id, kind, title, body, vendor_id, read_at, created_at
		FROM notification
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, where)

	notifications := make([]domain.Notification, 0)
	if err := r.db.SelectContext(ctx, &notifications, query, userID, filter.Limit, filter.Offset); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `SELECT COUNT(*) FROM notification WHERE user_id = $1 AND read_at IS NULL`
	var count int64
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead returns sql.ErrNoRows when the notification does not belong to the user.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error {
	const query = `
		UPDATE notification
		SET read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND user_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, userID, at)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	const query = `UPDATE notification SET read_at = $2 WHERE user_id = $1 AND read_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, userID, at)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

var _ ports.NotificationRepository = (*NotificationRepository)(nil)
