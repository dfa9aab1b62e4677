package mail

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Worker drains the reset mail queue into a Sender, reconnecting to the
// broker with exponential backoff when the connection drops.
type Worker struct {
	dial       func() (*Client, error)
	sender     Sender
	logger     *slog.Logger
	retryDelay time.Duration
}

func NewWorker(dial func() (*Client, error), sender Sender, logger *slog.Logger) *Worker {
	return &Worker{dial: dial, sender: sender, logger: logger, retryDelay: time.Second}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for attempt := 0; ; {
		client, err := w.dial()
		if err == nil {
			attempt = 0
			err = client.Consume(ctx, w.Deliver)
			client.Close()
		}
		if ctx.Err() != nil {
			return nil
		}

		delay := exponentialBackoff(attempt)
		attempt++
		w.logger.WarnContext(ctx, "Mail queue unavailable, reconnecting", "error", err, "delay", delay, "attempt", attempt)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// Deliver renders and sends one queued email. A failed send pauses before
// returning so the requeued message is not retried in a tight loop.
func (w *Worker) Deliver(ctx context.Context, msg ResetMail) error {
	err := w.sender.Send(ctx, PasswordReset(msg.To, msg.Link))
	if err == nil {
		w.logger.InfoContext(ctx, "Delivered password reset email", "queued_at", msg.Timestamp)
		return nil
	}
	select {
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	case <-time.After(w.retryDelay):
	}
	return err
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt > 5 {
		return 30 * time.Second
	}
	return min(time.Duration(1<<attempt)*time.Second, 30*time.Second)
}
