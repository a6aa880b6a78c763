// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

// conflictRetryDelay is the pause before the single retry of a conflicting write.
const conflictRetryDelay = 20 * time.Millisecond

// withConflictRetry runs fn and, if it fails with ErrConflict, runs it once more.
// fn must re-read whatever state it depends on.
func withConflictRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(1, retry.NewConstant(conflictRetryDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, ErrConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
}
