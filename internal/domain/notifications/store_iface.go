package notifications

import "context"

type StoreAPI interface {
	CreateNotification(ctx context.Context, tenantID, userID, ntype, title, body string) error
	ListNotifications(ctx context.Context, tenantID, userID string, limit, offset int) ([]Notification, error)
	CountUnread(ctx context.Context, tenantID, userID string) (int, error)
	MarkRead(ctx context.Context, tenantID, userID, notificationID string) error
	Settings(ctx context.Context, tenantID string) (Settings, error)
	UpdateSettings(ctx context.Context, tenantID string, settings Settings) error
	UserEmail(ctx context.Context, tenantID, userID string) (string, error)
}
