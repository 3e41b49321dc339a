package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// stubProvider returns canned output after an optional delay.
type stubProvider struct {
	text  string
	err   error
	delay time.Duration
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	return s.text, s.err
}

func (s *stubProvider) Generate(ctx context.Context, system, prompt string, options ...Option) (string, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.text, s.err
}

func TestInvokeWithDeadlineSuccess(t *testing.T) {
	p := &stubProvider{text: "local insights here"}

	res := InvokeWithDeadline(context.Background(), p, "system", "prompt", time.Second)

	assert.True(t, res.OK())
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, "local insights here", res.Text)
	assert.NoError(t, res.Err)
}

func TestInvokeWithDeadlineTimeout(t *testing.T) {
	p := &stubProvider{text: "too late", delay: 200 * time.Millisecond}

	start := time.Now()
	res := InvokeWithDeadline(context.Background(), p, "system", "prompt", 20*time.Millisecond)

	assert.False(t, res.OK())
	assert.Equal(t, OutcomeTimeout, res.Outcome)
	assert.Empty(t, res.Text)
	// The deadline bounds the wait, not the slow call
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestInvokeWithDeadlineError(t *testing.T) {
	wantErr := errors.New("model endpoint unreachable")
	p := &stubProvider{err: wantErr}

	res := InvokeWithDeadline(context.Background(), p, "system", "prompt", time.Second)

	assert.Equal(t, OutcomeError, res.Outcome)
	assert.ErrorIs(t, res.Err, wantErr)
}

func TestInvokeWithDeadlineContextCancelled(t *testing.T) {
	p := &stubProvider{text: "never seen", delay: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	res := InvokeWithDeadline(ctx, p, "system", "prompt", 5*time.Second)

	assert.Equal(t, OutcomeError, res.Outcome)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "timeout", OutcomeTimeout.String())
	assert.Equal(t, "error", OutcomeError.String())
}
