// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelconfig builds OpenTelemetry tracer providers for the supported exporters.
package otelconfig

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Common
type Common struct {
	ServiceName string `config:"service_name"`
}

// CommonOption
type CommonOption interface {
	GoogleCloudOption
	LocalOption
	OTLPOption
}

type commonOptionFunc func(*Common)

func (f commonOptionFunc) ApplyGCP(cfg *GoogleCloudConfig) {
	f(&cfg.Common)
}

func (f commonOptionFunc) ApplyOTLP(cfg *OTLPConfig) {
	f(&cfg.Common)
}

func (f commonOptionFunc) ApplyLocal(cfg *LocalConfig) {
	f(&cfg.Common)
}

// ServiceName
func ServiceName(name string) CommonOption {
	return commonOptionFunc(func(c *Common) {
		c.ServiceName = name
	})
}

// Initializer
type Initializer interface {
	Init(context.Context) (trace.TracerProvider, error)
}

// Noop leaves the global tracer provider as is.
var Noop = noopConfiger{}

type noopConfiger struct{}

func (noopConfiger) Init(_ context.Context) (trace.TracerProvider, error) {
	return otel.GetTracerProvider(), nil
}

// Exporter names accepted by [Config].
const (
	ExporterNone        = "none"
	ExporterLocal       = "local"
	ExporterOTLP        = "otlp"
	ExporterGoogleCloud = "gcp"
)

// Config selects and configures an exporter. It is meant to be
// decoded from the service config.
type Config struct {
	Common `config:",squash"`

	Exporter  string `config:"exporter"`
	Target    string `config:"target"`
	ProjectId string `config:"project_id"`
}

// UnknownExporterError
type UnknownExporterError struct {
	Exporter string
}

// Error implements the [error] interface.
func (e UnknownExporterError) Error() string {
	return fmt.Sprintf("unknown otel exporter: %q", e.Exporter)
}

// Initializer returns the [Initializer] for the configured exporter.
// An empty exporter means [Noop].
func (cfg Config) Initializer() (Initializer, error) {
	switch strings.ToLower(cfg.Exporter) {
	case "", ExporterNone:
		return Noop, nil
	case ExporterLocal:
		return Local(ServiceName(cfg.ServiceName)), nil
	case ExporterOTLP:
		return OTLP(ServiceName(cfg.ServiceName), OTLPTarget(cfg.Target)), nil
	case ExporterGoogleCloud:
		return GoogleCloud(ServiceName(cfg.ServiceName), GoogleCloudProjectId(cfg.ProjectId)), nil
	default:
		return nil, UnknownExporterError{Exporter: cfg.Exporter}
	}
}

// Setup initializes a tracer provider with i and registers it, along
// with the W3C trace context propagator, as the global ones.
func Setup(ctx context.Context, i Initializer) error {
	tp, err := i.Init(ctx)
	if err != nil {
		return err
	}
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return nil
}

// LocalConfig
type LocalConfig struct {
	Common

	Out io.Writer
}

// LocalOption
type LocalOption interface {
	ApplyLocal(*LocalConfig)
}

type localOptionFunc func(*LocalConfig)

func (f localOptionFunc) ApplyLocal(cfg *LocalConfig) {
	f(cfg)
}

// Writer sets where the local exporter writes spans to. Defaults to [os.Stdout].
func Writer(w io.Writer) LocalOption {
	return localOptionFunc(func(lc *LocalConfig) {
		lc.Out = w
	})
}

// Local returns an Initializer which writes spans as JSON.
func Local(opts ...LocalOption) Initializer {
	cfg := LocalConfig{
		Out: os.Stdout,
	}
	for _, opt := range opts {
		opt.ApplyLocal(&cfg)
	}
	return cfg
}

// Init implements the [Initializer] interface.
func (cfg LocalConfig) Init(ctx context.Context) (trace.TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(cfg.Out),
	)
	if err != nil {
		return nil, err
	}

	res, err := serviceResource(ctx, cfg.Common)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return tp, nil
}

func serviceResource(ctx context.Context, c Common) (*resource.Resource, error) {
	return resource.New(
		ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(c.ServiceName),
		),
	)
}
