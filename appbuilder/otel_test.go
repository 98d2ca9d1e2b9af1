// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package appbuilder

import (
	"context"
	"errors"
	"testing"

	"github.com/z5labs/userform"

	"github.com/stretchr/testify/assert"
)

type otelInitFunc func(context.Context) error

func (f otelInitFunc) InitializeOTel(ctx context.Context) error {
	return f(ctx)
}

func TestOTel(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the context is already cancelled", func(t *testing.T) {
			builder := OTel(userform.AppBuilderFunc[otelInitFunc](func(ctx context.Context, cfg otelInitFunc) (userform.App, error) {
				return nil, nil
			}))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := builder.Build(ctx, otelInitFunc(func(context.Context) error {
				return nil
			}))
			if !assert.ErrorIs(t, err, context.Canceled) {
				return
			}
		})

		t.Run("if the OTel SDK fails to initialize", func(t *testing.T) {
			initErr := errors.New("failed to init")
			builder := OTel(userform.AppBuilderFunc[otelInitFunc](func(ctx context.Context, cfg otelInitFunc) (userform.App, error) {
				return nil, nil
			}))

			_, err := builder.Build(context.Background(), otelInitFunc(func(context.Context) error {
				return initErr
			}))
			if !assert.ErrorIs(t, err, initErr) {
				return
			}
		})

		t.Run("if the underlying AppBuilder fails", func(t *testing.T) {
			buildErr := errors.New("failed to build")
			builder := OTel(userform.AppBuilderFunc[otelInitFunc](func(ctx context.Context, cfg otelInitFunc) (userform.App, error) {
				return nil, buildErr
			}))

			_, err := builder.Build(context.Background(), otelInitFunc(func(context.Context) error {
				return nil
			}))
			if !assert.ErrorIs(t, err, buildErr) {
				return
			}
		})
	})

	t.Run("will run the built app", func(t *testing.T) {
		t.Run("if the OTel SDK initializes", func(t *testing.T) {
			ran := false
			builder := OTel(userform.AppBuilderFunc[otelInitFunc](func(ctx context.Context, cfg otelInitFunc) (userform.App, error) {
				return appFunc(func(context.Context) error {
					ran = true
					return nil
				}), nil
			}))

			app, err := builder.Build(context.Background(), otelInitFunc(func(context.Context) error {
				return nil
			}))
			if !assert.Nil(t, err) {
				return
			}

			err = app.Run(context.Background())
			if !assert.Nil(t, err) {
				return
			}
			if !assert.True(t, ran) {
				return
			}
		})
	})
}
