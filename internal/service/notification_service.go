package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationService struct {
	notifications ports.NotificationRepository
	favorites     ports.FavoriteRepository
	now           func() time.Time
}

func NewNotificationService(notifications ports.NotificationRepository, favorites ports.FavoriteRepository) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		favorites:     favorites,
		now:           time.Now,
	}
}

// NotifyVendorLive writes one vendor_live row per follower of the vendor,
// skipping the vendor's own account.
func (s *NotificationService) NotifyVendorLive(ctx context.Context, vendor *domain.Vendor, session *domain.LiveSession) (int, error) {
	followers, err := s.favorites.ListUserIDsByVendor(ctx, vendor.ID)
	if err != nil {
		return 0, err
	}

	body := liveNotificationBody(session)
	vendorID := vendor.ID
	rows := make([]domain.Notification, 0, len(followers))
	for _, userID := range followers {
		if userID == vendor.OwnerID {
			continue
		}
		rows = append(rows, domain.Notification{
			UserID:   userID,
			Kind:     domain.NotificationVendorLive,
			Title:    fmt.Sprintf("%s is live now", vendor.BusinessName),
			Body:     body,
			VendorID: &vendorID,
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return s.notifications.CreateMany(ctx, rows)
}

type NotificationListResult struct {
	Items  []domain.Notification
	Unread int64
	Limit  int
	Offset int
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter) (*NotificationListResult, error) {
	filter.Limit, filter.Offset = normalizePagination(filter.Limit, filter.Offset, 20, 100)
	items, err := s.notifications.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	unread, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &NotificationListResult{Items: items, Unread: unread, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.notifications.MarkRead(ctx, userID, id, s.now()); err != nil {
		if isNotFound(err) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID, s.now())
}

func liveNotificationBody(session *domain.LiveSession) *string {
	var body string
	switch {
	case session.Address != nil && *session.Address != "":
		body = "Find them at " + *session.Address
	case session.WasScheduledDuration != nil:
		body = fmt.Sprintf("Open for the next %d minutes", *session.WasScheduledDuration)
	default:
		return nil
	}
	return &body
}
