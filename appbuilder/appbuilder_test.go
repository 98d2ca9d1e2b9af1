// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package appbuilder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/z5labs/userform"
	"github.com/z5labs/userform/config"
	"github.com/z5labs/userform/internal/try"
	"github.com/z5labs/userform/lifecycle"

	"github.com/stretchr/testify/assert"
)

type appFunc func(context.Context) error

func (f appFunc) Run(ctx context.Context) error {
	return f(ctx)
}

func TestRecover(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the underlying AppBuilder panics", func(t *testing.T) {
			builder := Recover(userform.AppBuilderFunc[struct{}](func(ctx context.Context, cfg struct{}) (userform.App, error) {
				panic("hello world")
			}))

			_, err := builder.Build(context.Background(), struct{}{})

			var perr try.PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.Equal(t, "hello world", perr.Value) {
				return
			}
		})
	})
}

func TestFromConfig(t *testing.T) {
	type myConfig struct {
		Intake struct {
			Mode string `config:"mode"`
		} `config:"intake"`
	}

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the config source fails to apply", func(t *testing.T) {
			builder := FromConfig(userform.AppBuilderFunc[myConfig](func(ctx context.Context, cfg myConfig) (userform.App, error) {
				return nil, nil
			}))

			_, err := builder.Build(context.Background(), config.FromYaml(strings.NewReader("intake: [")))

			var yerr config.InvalidYamlError
			if !assert.ErrorAs(t, err, &yerr) {
				return
			}
		})

		t.Run("if the config can not be unmarshalled", func(t *testing.T) {
			builder := FromConfig(userform.AppBuilderFunc[myConfig](func(ctx context.Context, cfg myConfig) (userform.App, error) {
				return nil, nil
			}))

			_, err := builder.Build(context.Background(), config.Map{"intake": "as_is"})
			if !assert.Error(t, err) {
				return
			}
		})
	})

	t.Run("will build the app", func(t *testing.T) {
		t.Run("if the config is valid", func(t *testing.T) {
			var mode string
			builder := FromConfig(userform.AppBuilderFunc[myConfig](func(ctx context.Context, cfg myConfig) (userform.App, error) {
				mode = cfg.Intake.Mode
				return appFunc(func(context.Context) error { return nil }), nil
			}))

			_, err := builder.Build(context.Background(), config.FromYaml(strings.NewReader("intake:\n  mode: symmetric\n")))
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, "symmetric", mode) {
				return
			}
		})
	})
}

func TestLifecycle(t *testing.T) {
	t.Run("will run post run hooks", func(t *testing.T) {
		t.Run("if the app finishes running", func(t *testing.T) {
			called := false
			builder := Lifecycle(userform.AppBuilderFunc[struct{}](func(ctx context.Context, cfg struct{}) (userform.App, error) {
				lc, ok := lifecycle.FromContext(ctx)
				if !ok {
					return nil, errors.New("missing lifecycle context")
				}
				lc.OnPostRun(lifecycle.HookFunc(func(ctx context.Context) error {
					called = true
					return nil
				}))
				return appFunc(func(context.Context) error { return nil }), nil
			}))

			app, err := builder.Build(context.Background(), struct{}{})
			if !assert.Nil(t, err) {
				return
			}
			if !assert.False(t, called) {
				return
			}

			err = app.Run(context.Background())
			if !assert.Nil(t, err) {
				return
			}
			if !assert.True(t, called) {
				return
			}
		})

		t.Run("if the builder fails", func(t *testing.T) {
			buildErr := errors.New("failed to build")
			hookErr := errors.New("failed to shutdown")
			builder := Lifecycle(userform.AppBuilderFunc[struct{}](func(ctx context.Context, cfg struct{}) (userform.App, error) {
				lc, _ := lifecycle.FromContext(ctx)
				lc.OnPostRun(lifecycle.HookFunc(func(ctx context.Context) error {
					return hookErr
				}))
				return nil, buildErr
			}))

			_, err := builder.Build(context.Background(), struct{}{})
			if !assert.ErrorIs(t, err, buildErr) {
				return
			}
			if !assert.ErrorIs(t, err, hookErr) {
				return
			}
		})
	})
}
