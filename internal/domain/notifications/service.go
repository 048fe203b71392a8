package notifications

import (
	"context"
	"log/slog"

	"hrflow/internal/platform/email"
)

type Service struct {
	store       StoreAPI
	mailer      email.Mailer
	defaultFrom string
}

func New(store StoreAPI, mailer email.Mailer, defaultFrom string) *Service {
	return &Service{store: store, mailer: mailer, defaultFrom: defaultFrom}
}

// Notify writes an in-app notification and, when the tenant has email
// notifications enabled, mirrors it to the user's mailbox. Email failures
// are logged and swallowed; the in-app row is the source of truth.
func (s *Service) Notify(ctx context.Context, tenantID, userID, ntype, title, body string) error {
	if err := s.store.CreateNotification(ctx, tenantID, userID, ntype, title, body); err != nil {
		return err
	}
	if s.mailer == nil {
		return nil
	}

	settings, err := s.store.Settings(ctx, tenantID)
	if err != nil {
		slog.Warn("notification settings lookup failed", "err", err)
		return nil
	}
	if !settings.EmailEnabled {
		return nil
	}
	from := settings.EmailFrom
	if from == "" {
		from = s.defaultFrom
	}

	to, err := s.store.UserEmail(ctx, tenantID, userID)
	if err != nil {
		slog.Warn("notification email lookup failed", "err", err)
		return nil
	}
	if to == "" {
		return nil
	}
	if _, err := s.mailer.Send(ctx, email.Message{From: from, To: to, Subject: title, HTML: body}); err != nil {
		slog.Warn("notification email send failed", "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, tenantID, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, tenantID, userID, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, tenantID, userID string) (int, error) {
	return s.store.CountUnread(ctx, tenantID, userID)
}

func (s *Service) MarkRead(ctx context.Context, tenantID, userID, notificationID string) error {
	return s.store.MarkRead(ctx, tenantID, userID, notificationID)
}

func (s *Service) GetSettings(ctx context.Context, tenantID string) (Settings, error) {
	return s.store.Settings(ctx, tenantID)
}

func (s *Service) UpdateSettings(ctx context.Context, tenantID string, settings Settings) error {
	return s.store.UpdateSettings(ctx, tenantID, settings)
}
