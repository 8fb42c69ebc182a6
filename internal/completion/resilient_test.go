package completion

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
)

type flakyCompleter struct {
	failures int32
	err      error
	calls    atomic.Int32
	block    bool
}

func (f *flakyCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	n := f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if n <= f.failures {
		return "", f.err
	}
	return "ok: " + prompt, nil
}

func TestResilient_RetriesTransientErrors(t *testing.T) {
	next := &flakyCompleter{failures: 2, err: fmt.Errorf("%w: 503", model.ErrCompletion)}
	r := NewResilient(next, time.Second, 3, time.Millisecond)

	text, err := r.Complete(context.Background(), "p", 0.2)

	assert.Equal(t, nil, err)
	assert.Equal(t, "ok: p", text)
	assert.Equal(t, int32(3), next.calls.Load())
}

func TestResilient_GivesUpAfterRetries(t *testing.T) {
	next := &flakyCompleter{failures: 10, err: errors.New("connection reset")}
	r := NewResilient(next, time.Second, 2, time.Millisecond)

	_, err := r.Complete(context.Background(), "p", 0.2)

	assert.Equal(t, true, errors.Is(err, model.ErrCompletion))
	assert.Equal(t, int32(3), next.calls.Load())
}

func TestResilient_DoesNotRetryRejected(t *testing.T) {
	next := &flakyCompleter{failures: 10, err: fmt.Errorf("%w: %w", model.ErrCompletion, ErrRejected)}
	r := NewResilient(next, time.Second, 5, time.Millisecond)

	_, err := r.Complete(context.Background(), "p", 0.2)

	assert.Equal(t, true, errors.Is(err, ErrRejected))
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestResilient_CallTimeout(t *testing.T) {
	next := &flakyCompleter{block: true}
	r := NewResilient(next, 10*time.Millisecond, 1, time.Millisecond)

	_, err := r.Complete(context.Background(), "p", 0.2)

	assert.Equal(t, true, errors.Is(err, model.ErrCompletion))
	assert.Equal(t, true, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestResilient_CancelledContextIsNotRetried(t *testing.T) {
	next := &flakyCompleter{block: true}
	r := NewResilient(next, time.Second, 5, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := r.Complete(ctx, "p", 0.2)

	assert.Equal(t, true, errors.Is(err, context.Canceled))
	assert.Equal(t, int32(1), next.calls.Load())
}
