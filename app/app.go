// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app provides helpers for common userform.App implementation patterns.
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/z5labs/userform"
	"github.com/z5labs/userform/internal/try"
	"github.com/z5labs/userform/lifecycle"

	"golang.org/x/sync/errgroup"
)

type runFunc func(context.Context) error

func (f runFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Recover will wrap the give [userform.App] with panic recovery.
// The recovered value is returned as a [try.PanicError] which
// unwraps to the value if it implements [error].
func Recover(app userform.App) userform.App {
	return runFunc(func(ctx context.Context) (err error) {
		defer try.Recover(&err)

		return app.Run(ctx)
	})
}

// WithSignalNotifications wraps a given [userform.App] in an implementation
// that cancels the [context.Context] that's passed to app.Run if an [os.Signal]
// is received by the running process.
func WithSignalNotifications(app userform.App, signals ...os.Signal) userform.App {
	return runFunc(func(ctx context.Context) error {
		sigCtx, cancel := signal.NotifyContext(ctx, signals...)
		defer cancel()

		return app.Run(sigCtx)
	})
}

// PostRun wraps a given [userform.App] such that the given hook is always
// executed after app.Run returns, regardless if it returned an error or panicked.
func PostRun(app userform.App, hook lifecycle.Hook) userform.App {
	return runFunc(func(ctx context.Context) (err error) {
		defer runPostRunHook(ctx, hook, &err)
		defer try.Recover(&err)

		return app.Run(ctx)
	})
}

// WithLifecycle runs the app with a lifecycle [lifecycle.Context] in its
// [context.Context] and executes every post run hook registered on it,
// during or before app.Run, once app.Run returns.
func WithLifecycle(app userform.App, lc *lifecycle.Context) userform.App {
	return runFunc(func(ctx context.Context) (err error) {
		defer func() {
			runPostRunHook(ctx, lc.PostRun(), &err)
		}()
		defer try.Recover(&err)

		return app.Run(lifecycle.NewContext(ctx, lc))
	})
}

func runPostRunHook(ctx context.Context, hook lifecycle.Hook, err *error) {
	if hook == nil {
		return
	}

	hookErr := hook.Run(context.WithoutCancel(ctx))

	// errors.Join will not return an error if both
	// *err and hookErr are nil.
	*err = errors.Join(*err, hookErr)
}

// Concurrently runs every given [userform.App] at the same time. The first
// one to fail cancels the others.
func Concurrently(apps ...userform.App) userform.App {
	return runFunc(func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		for _, a := range apps {
			g.Go(func() error {
				return a.Run(gctx)
			})
		}
		return g.Wait()
	})
}
