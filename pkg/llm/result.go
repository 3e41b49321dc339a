package llm

import (
	"context"
	"time"
)

// Outcome tags the result of a single model invocation. Consumers must
// branch on the tag; there is no implicit default text.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeTimeout
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "error"
	}
}

// InvocationResult is the tagged outcome of one gateway call.
type InvocationResult struct {
	Outcome Outcome
	Text    string
	Err     error
}

func (r InvocationResult) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// InvokeWithDeadline runs a Generate call under its own timeout, independently
// of the surrounding request. If the deadline passes, the in-flight call is
// abandoned but not killed: the goroutine is left to finish on its own and its
// result is discarded. The buffered channel keeps it from leaking.
func InvokeWithDeadline(ctx context.Context, p Provider, system, prompt string, timeout time.Duration, opts ...Option) InvocationResult {
	done := make(chan InvocationResult, 1)

	go func() {
		text, err := p.Generate(ctx, system, prompt, opts...)
		if err != nil {
			done <- InvocationResult{Outcome: OutcomeError, Err: err}
			return
		}
		done <- InvocationResult{Outcome: OutcomeSuccess, Text: text}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res
	case <-timer.C:
		return InvocationResult{Outcome: OutcomeTimeout}
	case <-ctx.Done():
		return InvocationResult{Outcome: OutcomeError, Err: ctx.Err()}
	}
}
