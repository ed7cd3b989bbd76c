// Package call bounds calls to external collaborators with a timeout and
// retries transient failures with exponential backoff.
package call

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrServiceUnavailable is returned when a collaborator does not answer in time
var ErrServiceUnavailable = errors.New("service unavailable")

// Policy configures how a call is bounded and retried
type Policy struct {
	// Timeout bounds each attempt
	Timeout time.Duration
	// MaxTries is the total number of attempts, including the first
	MaxTries uint
	// InitialInterval is the delay before the first retry
	InitialInterval time.Duration
	// Budget caps the whole call, retries and waits included. It must stay
	// below the HTTP request deadline so a slow store still gets a 503.
	Budget time.Duration
	// Permanent lists errors that are returned immediately without retrying
	Permanent []error
}

// DefaultPolicy returns the policy used for storage calls
func DefaultPolicy() Policy {
	return Policy{
		Timeout:         2 * time.Second,
		MaxTries:        3,
		InitialInterval: 50 * time.Millisecond,
		Budget:          4 * time.Second,
	}
}

// WithPermanent returns a copy of p that treats errs as permanent
func (p Policy) WithPermanent(errs ...error) Policy {
	p.Permanent = append(append([]error(nil), p.Permanent...), errs...)
	return p
}

func (p Policy) isPermanent(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	for _, perm := range p.Permanent {
		if errors.Is(err, perm) {
			return true
		}
	}
	return false
}

// Do runs fn under p. Running out of time, whether per attempt, on the budget
// or on the caller's deadline, is reported as ErrServiceUnavailable. Caller
// cancellation is returned as is.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	if p.MaxTries == 0 {
		p.MaxTries = 1
	}

	budgetCtx := ctx
	if p.Budget > 0 {
		var cancel context.CancelFunc
		budgetCtx, cancel = context.WithTimeout(ctx, p.Budget)
		defer cancel()
	}

	operation := func() (T, error) {
		attemptCtx := budgetCtx
		if p.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(budgetCtx, p.Timeout)
			defer cancel()
		}
		result, err := fn(attemptCtx)
		if err != nil && p.isPermanent(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}

	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.MaxTries),
	}
	if p.Budget > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(p.Budget))
	}

	result, err := backoff.Retry(budgetCtx, operation, opts...)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(ctx.Err(), context.Canceled) {
		return result, ErrServiceUnavailable
	}
	return result, err
}
