// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package service builds the userform applications from a [Config].
package service

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"syscall"

	"github.com/z5labs/userform"
	"github.com/z5labs/userform/api"
	"github.com/z5labs/userform/app"
	"github.com/z5labs/userform/forward"
	"github.com/z5labs/userform/gateway"
	"github.com/z5labs/userform/http/httphealth"
	"github.com/z5labs/userform/http/httpvalidate"
	"github.com/z5labs/userform/lifecycle"
	"github.com/z5labs/userform/pkg/health"
	"github.com/z5labs/userform/rest"
	"github.com/z5labs/userform/rest/mux"
	"github.com/z5labs/userform/user"
	"github.com/z5labs/userform/web"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version is reported in the OpenAPI document.
var Version = "dev"

// Paths served by the HTTP application.
const (
	IndexPath       = "/"
	OpenApiJsonPath = "/openapi.json"
	OpenApiYamlPath = "/openapi.yaml"
	LivenessPath    = "/health/liveness"
	ReadinessPath   = "/health/readiness"
	MetricsPath     = "/metrics"
)

type options struct {
	out      io.Writer
	results  io.Writer
	registry *prometheus.Registry
	ls       net.Listener
	signals  []os.Signal
}

// Option
type Option func(*options)

// Output sets where logs are written to. Defaults to [os.Stdout].
func Output(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// Results sets where the one-shot [Validate] app writes its outcome.
// Defaults to [os.Stdout].
func Results(w io.Writer) Option {
	return func(o *options) {
		o.results = w
	}
}

// Registry sets the registry metrics are registered with and served from.
func Registry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// Listener overrides the port from the config.
func Listener(ls net.Listener) Option {
	return func(o *options) {
		o.ls = ls
	}
}

// Signals sets the signals which stop the built app.
// Defaults to SIGINT and SIGTERM. With no signals the
// app only stops when its context is cancelled.
func Signals(signals ...os.Signal) Option {
	return func(o *options) {
		o.signals = signals
	}
}

func newOptions(opts ...Option) *options {
	o := &options{
		out:     os.Stdout,
		results: os.Stdout,
		signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = NewRegistry()
	}
	return o
}

// NewRegistry returns a registry with the Go runtime and process
// collectors registered. Pass it to every builder with [Registry]
// when they run in one process.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func withSignals(a userform.App, o *options) userform.App {
	if len(o.signals) == 0 {
		return a
	}
	return app.WithSignalNotifications(a, o.signals...)
}

// the intake label keeps gateways sharing a registry apart.
func newGateway(cfg Config, logHandler slog.Handler, reg prometheus.Registerer, source string) *gateway.Gateway {
	opts := []gateway.Option{
		gateway.LogHandler(logHandler),
		gateway.Registerer(prometheus.WrapRegistererWith(prometheus.Labels{"intake": source}, reg)),
	}
	if cfg.Forward.Url != "" {
		fopts := []forward.Option{
			forward.LogHandler(logHandler),
			forward.Retries(cfg.Forward.Retries),
		}
		if cfg.Forward.Timeout > 0 {
			fopts = append(fopts, forward.Timeout(cfg.Forward.Timeout))
		}
		opts = append(opts, gateway.WithSink(forward.New(cfg.Forward.Url, fopts...)))
	}
	return gateway.New(user.Schema(), opts...)
}

// Http returns the builder for the HTTP application serving the
// form page, the parse endpoint, its OpenAPI document, health
// checks and metrics.
func Http(opts ...Option) userform.AppBuilder[Config] {
	o := newOptions(opts...)

	return userform.AppBuilderFunc[Config](func(ctx context.Context, cfg Config) (userform.App, error) {
		logHandler := cfg.LogHandler(o.out)
		gw := newGateway(cfg, logHandler, o.registry, "http")

		ready := &health.Binary{}
		alive := health.MetricFunc(func(context.Context) bool {
			return true
		})

		restOpts := []rest.Option{
			rest.LogHandler(logHandler),
			rest.ListenOn(cfg.Http.Port),
			rest.Title("userform"),
			rest.Version(Version),
			rest.OpenApiEndpoint(mux.MethodGet, OpenApiJsonPath, rest.OpenApiJsonHandler),
			rest.OpenApiEndpoint(mux.MethodGet, OpenApiYamlPath, rest.OpenApiYamlHandler),
			rest.Register(api.ParseUser(
				gw,
				api.LogHandler(logHandler),
				api.Mode(cfg.Intake.Mode),
			)),
			rest.Handle(mux.MethodGet, IndexPath, web.NewHandler(
				web.LogHandler(logHandler),
				web.Action(api.ParseUserPattern),
				web.Mode(cfg.Intake.Mode),
			)),
			rest.Handle(mux.MethodGet, LivenessPath, httphealth.NewHandler(alive)),
			rest.Handle(mux.MethodGet, ReadinessPath, httphealth.NewHandler(ready)),
			rest.Handle(mux.MethodGet, MetricsPath, promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})),
		}
		if cfg.Http.ShutdownTimeout > 0 {
			restOpts = append(restOpts, rest.ShutdownTimeout(cfg.Http.ShutdownTimeout))
		}
		if cfg.Http.MaxBodyBytes > 0 {
			restOpts = append(restOpts, rest.Middleware(httpvalidate.Middleware(
				httpvalidate.MaxBodyBytes(cfg.Http.MaxBodyBytes),
			)))
		}
		if o.ls != nil {
			restOpts = append(restOpts, rest.Listener(o.ls))
		}

		restApp := rest.NewApp(restOpts...)
		_, err := restApp.Handler()
		if err != nil {
			return nil, err
		}

		ready.MarkHealthy()
		if lc, ok := lifecycle.FromContext(ctx); ok {
			lc.OnPostRun(lifecycle.HookFunc(func(context.Context) error {
				ready.MarkUnhealthy()
				return nil
			}))
		}

		return withSignals(restApp, o), nil
	})
}

// Concurrently builds every builder with the same config and runs the
// built apps side by side. The first app to fail stops the others.
func Concurrently(builders ...userform.AppBuilder[Config]) userform.AppBuilder[Config] {
	return userform.AppBuilderFunc[Config](func(ctx context.Context, cfg Config) (userform.App, error) {
		apps := make([]userform.App, 0, len(builders))
		for _, b := range builders {
			a, err := b.Build(ctx, cfg)
			if err != nil {
				return nil, err
			}
			apps = append(apps, a)
		}
		return app.Concurrently(apps...), nil
	})
}
