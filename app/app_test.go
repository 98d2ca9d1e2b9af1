// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"context"
	"errors"
	"testing"

	"github.com/z5labs/userform/internal/try"
	"github.com/z5labs/userform/lifecycle"

	"github.com/stretchr/testify/assert"
)

func TestRecover(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the underlying App returns an error", func(t *testing.T) {
			appErr := errors.New("failed to run")
			app := Recover(runFunc(func(ctx context.Context) error {
				return appErr
			}))

			err := app.Run(context.Background())
			if !assert.Equal(t, appErr, err) {
				return
			}
		})

		t.Run("if the underlying App panics with an error value", func(t *testing.T) {
			appErr := errors.New("failed to run")
			app := Recover(runFunc(func(ctx context.Context) error {
				panic(appErr)
			}))

			err := app.Run(context.Background())
			if !assert.ErrorIs(t, err, appErr) {
				return
			}
		})

		t.Run("if the underlying App panics with a non-error value", func(t *testing.T) {
			app := Recover(runFunc(func(ctx context.Context) error {
				panic("hello world")
			}))

			err := app.Run(context.Background())

			var perr try.PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.NotEmpty(t, perr.Error()) {
				return
			}
			if !assert.Equal(t, "hello world", perr.Value) {
				return
			}
		})
	})
}

func TestWithSignalNotifications(t *testing.T) {
	t.Run("will propogate context cancellation", func(t *testing.T) {
		t.Run("if the parent context is cancelled", func(t *testing.T) {
			app := WithSignalNotifications(runFunc(func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			}))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := app.Run(ctx)
			if !assert.ErrorIs(t, err, context.Canceled) {
				return
			}
		})
	})
}

func TestPostRun(t *testing.T) {
	t.Run("will run the hook", func(t *testing.T) {
		t.Run("if the underlying App returns an error", func(t *testing.T) {
			appErr := errors.New("failed to run")
			hookErr := errors.New("failed to flush")

			called := false
			app := PostRun(
				runFunc(func(ctx context.Context) error {
					return appErr
				}),
				lifecycle.HookFunc(func(ctx context.Context) error {
					called = true
					return hookErr
				}),
			)

			err := app.Run(context.Background())
			if !assert.True(t, called) {
				return
			}
			if !assert.ErrorIs(t, err, appErr) {
				return
			}
			if !assert.ErrorIs(t, err, hookErr) {
				return
			}
		})

		t.Run("if the underlying App panics", func(t *testing.T) {
			called := false
			app := PostRun(
				runFunc(func(ctx context.Context) error {
					panic("hello world")
				}),
				lifecycle.HookFunc(func(ctx context.Context) error {
					called = true
					return nil
				}),
			)

			err := app.Run(context.Background())
			if !assert.True(t, called) {
				return
			}

			var perr try.PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
		})
	})
}

func TestWithLifecycle(t *testing.T) {
	t.Run("will run hooks registered while running", func(t *testing.T) {
		t.Run("if the App registers a post run hook", func(t *testing.T) {
			called := false
			app := WithLifecycle(
				runFunc(func(ctx context.Context) error {
					lc, ok := lifecycle.FromContext(ctx)
					if !ok {
						return errors.New("missing lifecycle context")
					}
					lc.OnPostRun(lifecycle.HookFunc(func(ctx context.Context) error {
						called = true
						return nil
					}))
					return nil
				}),
				&lifecycle.Context{},
			)

			err := app.Run(context.Background())
			if !assert.Nil(t, err) {
				return
			}
			if !assert.True(t, called) {
				return
			}
		})
	})
}

func TestConcurrently(t *testing.T) {
	t.Run("will cancel the other apps", func(t *testing.T) {
		t.Run("if one app fails", func(t *testing.T) {
			appErr := errors.New("failed to consume")

			app := Concurrently(
				runFunc(func(ctx context.Context) error {
					<-ctx.Done()
					return nil
				}),
				runFunc(func(ctx context.Context) error {
					return appErr
				}),
			)

			err := app.Run(context.Background())
			if !assert.ErrorIs(t, err, appErr) {
				return
			}
		})
	})
}
