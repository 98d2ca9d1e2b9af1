// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelconfig

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// OTLPConfig
type OTLPConfig struct {
	Common

	// gRPC target string which is passed to grpc.DialContext
	Target string

	DialTimeout time.Duration
}

// OTLPOption
type OTLPOption interface {
	ApplyOTLP(*OTLPConfig)
}

type otlpOptionFunc func(*OTLPConfig)

func (f otlpOptionFunc) ApplyOTLP(cfg *OTLPConfig) {
	f(cfg)
}

// OTLPTarget
func OTLPTarget(target string) OTLPOption {
	return otlpOptionFunc(func(oc *OTLPConfig) {
		oc.Target = target
	})
}

// OTLPDialTimeout bounds how long Init waits for the collector
// connection. Defaults to 1 second.
func OTLPDialTimeout(d time.Duration) OTLPOption {
	return otlpOptionFunc(func(oc *OTLPConfig) {
		oc.DialTimeout = d
	})
}

// OTLP returns an Initializer which exports spans to an OTLP collector over gRPC.
func OTLP(opts ...OTLPOption) Initializer {
	c := OTLPConfig{
		DialTimeout: time.Second,
	}
	for _, opt := range opts {
		opt.ApplyOTLP(&c)
	}
	return c
}

// Init implements the [Initializer] interface.
func (cfg OTLPConfig) Init(ctx context.Context) (trace.TracerProvider, error) {
	res, err := serviceResource(ctx, cfg.Common)
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	conn, err := grpc.DialContext(
		dialCtx,
		cfg.Target,
		// TLS is expected to be terminated by a local collector sidecar.
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp),
	)
	return tp, nil
}
