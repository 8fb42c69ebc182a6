package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eapache/go-resiliency/retrier"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
)

const (
	DefaultTimeout = 60 * time.Second
	DefaultBackoff = 500 * time.Millisecond
)

// Resilient ограничивает каждый вызов таймаутом и повторяет временные ошибки с экспоненциальной паузой.
// Отмена контекста и отклоненные запросы не повторяются
type Resilient struct {
	next    Completer
	timeout time.Duration
	retrier *retrier.Retrier
}

func NewResilient(next Completer, timeout time.Duration, retries int, backoff time.Duration) *Resilient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if retries < 0 {
		retries = 0
	}
	if backoff <= 0 {
		backoff = DefaultBackoff
	}

	return &Resilient{
		next:    next,
		timeout: timeout,
		retrier: retrier.New(retrier.ExponentialBackoff(retries, backoff), classifier{}),
	}
}

func (r *Resilient) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	var (
		text    string
		attempt int
	)

	err := r.retrier.RunCtx(ctx, func(ctx context.Context) error {
		attempt++

		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		out, err := r.next.Complete(callCtx, prompt, temperature)
		if err != nil {
			slog.Debug("completion call failed", "attempt", attempt, "error", err)
			return err
		}

		text = out
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrCompletion) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", model.ErrCompletion, err)
	}

	return text, nil
}

type classifier struct{}

func (classifier) Classify(err error) retrier.Action {
	switch {
	case err == nil:
		return retrier.Succeed
	case errors.Is(err, context.Canceled), errors.Is(err, ErrRejected):
		return retrier.Fail
	default:
		return retrier.Retry
	}
}
