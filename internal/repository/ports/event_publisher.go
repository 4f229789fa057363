package ports

import (
	"context"

	"github.com/aqui-app/aqui-api/internal/domain"
)

type LiveSessionPublisher interface {
	PublishLiveSession(ctx context.Context, event domain.LiveSessionEvent) error
}

type VendorMailer interface {
	SendVendorStatus(ctx context.Context, email, businessName string, status domain.VendorStatus) error
}
