package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

// isRetryable reports whether a provider error is worth another call.
// Cancellation, missing binaries, missing keys and malformed requests are not.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, dlerrors.ErrCommandNotFound),
		errors.Is(err, dlerrors.ErrAPIKeyMissing),
		errors.Is(err, dlerrors.ErrProviderNotFound),
		errors.Is(err, dlerrors.ErrRoleNotConfigured):
		return false
	}
	return true
}

// retryPolicy bounds transient-failure retries with exponential backoff.
type retryPolicy struct {
	attempts int
	backoff  time.Duration
}

func (p retryPolicy) do(ctx context.Context, logger *zerolog.Logger, call func(context.Context) (string, error)) (string, error) {
	attempts := p.attempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.backoff

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := call(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info().Int("attempt", attempt).Msg("provider call succeeded after retry")
			}
			return out, nil
		}

		if !isRetryable(err) {
			return "", err
		}

		lastErr = err
		if attempt < attempts {
			logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_attempts", attempts).
				Dur("backoff", backoff).
				Msg("provider call failed, will retry after backoff")

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			case <-timer.C:
				backoff *= 2
			}
		}
	}

	if errors.Is(lastErr, dlerrors.ErrProviderInvocation) || errors.Is(lastErr, dlerrors.ErrProviderEmptyResponse) {
		return "", fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return "", fmt.Errorf("%w: max retries exceeded: %w", dlerrors.ErrProviderInvocation, lastErr)
}
