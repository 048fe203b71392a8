package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"hrflow/internal/platform/email"
)

// Dispatcher drains due scheduled emails and hands them to the mail
// provider.
type Dispatcher struct {
	store       StoreAPI
	mailer      email.Mailer
	logger      *slog.Logger
	from        string
	batchSize   int
	concurrency int
	sendTimeout time.Duration
	now         func() time.Time
}

func NewDispatcher(store StoreAPI, mailer email.Mailer, logger *slog.Logger, from string, batchSize, concurrency int, sendTimeout time.Duration) *Dispatcher {
	if batchSize <= 0 {
		batchSize = 50
	}
	if concurrency <= 0 {
		concurrency = 10
	}
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}
	return &Dispatcher{
		store:       store,
		mailer:      mailer,
		logger:      logger,
		from:        from,
		batchSize:   batchSize,
		concurrency: concurrency,
		sendTimeout: sendTimeout,
		now:         time.Now,
	}
}

// Run dispatches one batch of due rows. Rows are sent concurrently; a
// failing row is retried on its backoff schedule or marked failed once its
// retries are exhausted, and never affects the other rows in the batch.
func (d *Dispatcher) Run(ctx context.Context) (Stats, error) {
	started := d.now()
	stats := Stats{}

	due, err := d.store.ListDue(ctx, started, d.batchSize)
	if err != nil {
		return stats, fmt.Errorf("list due emails: %w", err)
	}
	if len(due) == 0 {
		stats.Duration = d.now().Sub(started)
		return stats, nil
	}

	var processed, failed atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(d.concurrency)
	for _, row := range due {
		row := row
		group.Go(func() error {
			switch d.dispatchOne(groupCtx, row) {
			case dispatchSent:
				processed.Add(1)
			case dispatchErrored:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = group.Wait()

	stats.Processed = int(processed.Load())
	stats.Errors = int(failed.Load())
	stats.Duration = d.now().Sub(started)
	return stats, nil
}

type dispatchResult int

const (
	dispatchSkipped dispatchResult = iota
	dispatchSent
	dispatchErrored
)

func (d *Dispatcher) dispatchOne(ctx context.Context, row ScheduledEmail) dispatchResult {
	claimed, err := d.store.ClaimPending(ctx, row.ID, d.now().Add(d.sendTimeout*2))
	if err != nil {
		d.logger.Error("claim scheduled email",
			slog.String("id", row.ID),
			slog.String("error", err.Error()))
		return dispatchErrored
	}
	if !claimed {
		// Another pass took the row first.
		return dispatchSkipped
	}

	if err := row.EmailData.Validate(); err != nil {
		d.fail(ctx, row, err)
		return dispatchErrored
	}

	subject, body := RenderEmail(row.EmailType, row.EmailData)
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	messageID, err := d.mailer.Send(sendCtx, email.Message{
		From:    d.from,
		To:      row.RecipientEmail,
		Subject: subject,
		HTML:    body,
	})
	if err != nil {
		d.fail(ctx, row, err)
		return dispatchErrored
	}

	if err := d.store.MarkSent(ctx, row.ID, messageID, d.now()); err != nil {
		d.logger.Error("mark email sent",
			slog.String("id", row.ID),
			slog.String("error", err.Error()))
		return dispatchErrored
	}

	d.logger.Info("scheduled email sent",
		slog.String("id", row.ID),
		slog.String("type", string(row.EmailType)),
		slog.String("to", row.RecipientEmail))
	return dispatchSent
}

// fail puts the row back on its backoff schedule while retries remain, and
// marks it terminally failed otherwise. The next attempt is anchored to the
// failure time, not the original schedule.
func (d *Dispatcher) fail(ctx context.Context, row ScheduledEmail, sendErr error) {
	failedAt := d.now()
	attempt := row.RetryCount + 1
	if attempt <= row.MaxRetries {
		next := failedAt.Add(BackoffDelay(attempt))
		if err := d.store.Reschedule(ctx, row.ID, next, sendErr.Error()); err != nil {
			d.logger.Error("reschedule email",
				slog.String("id", row.ID),
				slog.String("error", err.Error()))
			return
		}
		d.logger.Warn("scheduled email retry",
			slog.String("id", row.ID),
			slog.String("to", row.RecipientEmail),
			slog.Int("attempt", attempt),
			slog.Time("nextAttempt", next),
			slog.String("error", sendErr.Error()))
		return
	}

	if err := d.store.MarkFailed(ctx, row.ID, sendErr.Error()); err != nil {
		d.logger.Error("mark email failed",
			slog.String("id", row.ID),
			slog.String("error", err.Error()))
		return
	}
	d.logger.Error("scheduled email exhausted retries",
		slog.String("id", row.ID),
		slog.String("to", row.RecipientEmail),
		slog.Int("retries", row.RetryCount),
		slog.String("error", sendErr.Error()))
}
