// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package appbuilder provides middleware for [userform.AppBuilder]s.
package appbuilder

import (
	"context"
	"errors"

	"github.com/z5labs/userform"
	"github.com/z5labs/userform/app"
	"github.com/z5labs/userform/config"
	"github.com/z5labs/userform/internal/try"
	"github.com/z5labs/userform/lifecycle"
)

// Recover will wrap the given [userform.AppBuilder] with panic recovery.
func Recover[T any](builder userform.AppBuilder[T]) userform.AppBuilder[T] {
	return userform.AppBuilderFunc[T](func(ctx context.Context, cfg T) (_ userform.App, err error) {
		defer try.Recover(&err)

		return builder.Build(ctx, cfg)
	})
}

// FromConfig returns a [userform.AppBuilder] which unmarshals
// the given [userform.AppBuilder]s input type, T, from a [config.Source].
func FromConfig[T any](builder userform.AppBuilder[T]) userform.AppBuilder[config.Source] {
	return userform.AppBuilderFunc[config.Source](func(ctx context.Context, src config.Source) (userform.App, error) {
		m, err := config.Read(src)
		if err != nil {
			return nil, err
		}

		var cfg T
		err = m.Unmarshal(&cfg)
		if err != nil {
			return nil, err
		}

		return builder.Build(ctx, cfg)
	})
}

// Lifecycle makes a [lifecycle.Context] available to the given builder, and
// every builder it wraps, and runs its post run hooks once the built
// [userform.App] stops running.
func Lifecycle[T any](builder userform.AppBuilder[T]) userform.AppBuilder[T] {
	return userform.AppBuilderFunc[T](func(ctx context.Context, cfg T) (userform.App, error) {
		lc := &lifecycle.Context{}

		base, err := builder.Build(lifecycle.NewContext(ctx, lc), cfg)
		if err != nil {
			hookErr := lc.PostRun().Run(ctx)
			if hookErr != nil {
				return nil, errors.Join(err, hookErr)
			}
			return nil, err
		}
		return app.WithLifecycle(base, lc), nil
	})
}
