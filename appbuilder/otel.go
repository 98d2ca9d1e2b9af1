// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package appbuilder

import (
	"context"
	"errors"

	"github.com/z5labs/userform"
	"github.com/z5labs/userform/app"
	"github.com/z5labs/userform/lifecycle"

	"go.opentelemetry.io/otel"
)

// OTelInitializer represents anything which can initialize the OTel SDK.
type OTelInitializer interface {
	InitializeOTel(context.Context) error
}

// OTel is a [userform.AppBuilder] middleware which initializes the OTel SDK.
// It also ensures that the OTel SDK is properly shutdown when the built [userform.App]
// stops running.
func OTel[T OTelInitializer](builder userform.AppBuilder[T]) userform.AppBuilder[T] {
	return userform.AppBuilderFunc[T](func(ctx context.Context, cfg T) (userform.App, error) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		err := cfg.InitializeOTel(ctx)
		if err != nil {
			return nil, err
		}

		onPostRun := lifecycle.MultiHook(
			tryShutdown(otel.GetTracerProvider()),
			tryShutdown(otel.GetMeterProvider()),
		)

		base, err := builder.Build(ctx, cfg)
		if err != nil {
			shutdownErr := onPostRun.Run(ctx)
			if shutdownErr == nil {
				return nil, err
			}
			return nil, errors.Join(err, shutdownErr)
		}

		lc, ok := lifecycle.FromContext(ctx)
		if !ok {
			return app.PostRun(base, onPostRun), nil
		}

		lc.OnPostRun(onPostRun)
		return base, nil
	})
}

type shutdowner interface {
	Shutdown(context.Context) error
}

func tryShutdown(v any) lifecycle.HookFunc {
	return func(ctx context.Context) error {
		if v == nil {
			return nil
		}

		s, ok := v.(shutdowner)
		if !ok {
			return nil
		}
		return s.Shutdown(ctx)
	}
}
