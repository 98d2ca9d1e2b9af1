// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package queue

import (
	"context"
	"log/slog"
	"sync"

	"github.com/z5labs/userform/pkg/slogfield"

	"golang.org/x/sync/errgroup"
)

// ProcessBatch processes every item concurrently and returns the
// items p processed without error, in no particular order. Failures
// are logged and left out of the result. A panic in p counts as a failure.
func ProcessBatch[T any](ctx context.Context, log *slog.Logger, p Processor[T], items []T) []T {
	var (
		mu        sync.Mutex
		processed = make([]T, 0, len(items))
	)

	// one failed item must not cancel the others
	g := new(errgroup.Group)
	for _, it := range items {
		g.Go(func() error {
			err := process(ctx, p, it)
			if err != nil {
				log.ErrorContext(ctx, "failed to process item", slogfield.Error(err))
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			processed = append(processed, it)
			return nil
		})
	}
	_ = g.Wait()
	return processed
}
