// Package bootstrap wires configuration into engines, stores and clients for
// the worker manager and the operator CLI.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"provider-matching-workers/internal/common/logger"
)

// RetryWithBackoff runs operation up to maxRetries times, doubling the delay
// after each failure.
func RetryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		if err = operation(); err == nil {
			return nil
		}
		if i == maxRetries-1 {
			break
		}

		log.Warn(operationName+" failed, retrying", map[string]interface{}{
			"error":       err,
			"attempt":     i + 1,
			"maxRetries":  maxRetries,
			"nextRetryIn": delay.String(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled: %w", operationName, ctx.Err())
		}
		delay *= 2
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
