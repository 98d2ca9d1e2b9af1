// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gateway validates candidate user records and reports the outcome.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/z5labs/userform/intake"
	"github.com/z5labs/userform/pkg/noop"
	"github.com/z5labs/userform/pkg/otelslog"
	"github.com/z5labs/userform/pkg/slogfield"
	"github.com/z5labs/userform/schema"
	"github.com/z5labs/userform/user"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrSubmissionInFlight is returned by Submit when the context is done
// before an earlier submission for the same form finished.
var ErrSubmissionInFlight = errors.New("gateway: submission already in flight for form")

type options struct {
	logHandler slog.Handler
	sink       Sink
	registerer prometheus.Registerer
}

// Option configures a Gateway.
type Option func(*options)

// LogHandler configures the underlying slog.Handler.
func LogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logHandler = otelslog.NewHandler(h)
	}
}

// WithSink delivers every validated user to s.
func WithSink(s Sink) Option {
	return func(o *options) {
		o.sink = s
	}
}

// Registerer registers the gateway metrics with reg.
func Registerer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// Gateway validates candidates against a schema. It is safe for concurrent use.
type Gateway struct {
	log     *slog.Logger
	schema  schema.Object
	sink    Sink
	metrics *metrics
	guards  formGuards
}

// New returns a Gateway which validates candidates against s.
func New(s schema.Object, opts ...Option) *Gateway {
	o := &options{
		logHandler: noop.LogHandler{},
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Gateway{
		log:     slog.New(o.logHandler),
		schema:  s,
		sink:    o.sink,
		metrics: newMetrics(o.registerer),
	}
}

// Validate never fails. An invalid candidate is a Rejected result.
func (g *Gateway) Validate(ctx context.Context, c intake.Candidate) Result {
	spanCtx, span := otel.Tracer("gateway").Start(ctx, "Gateway.Validate")
	defer span.End()

	start := time.Now()
	res := g.validate(c)
	g.metrics.duration.Observe(time.Since(start).Seconds())

	switch x := res.(type) {
	case Rejected:
		g.metrics.validations.WithLabelValues("rejected").Inc()
		for _, it := range x.Issues {
			g.metrics.issues.WithLabelValues(it.Path, string(it.Code)).Inc()
		}
		span.SetAttributes(attribute.Int("userform.num_of_issues", len(x.Issues)))
		span.SetStatus(codes.Error, x.Issues.Error())

		g.log.ErrorContext(
			spanCtx,
			"rejected user form",
			slogfield.NumOfIssues(len(x.Issues)),
			slog.Any("issues", []schema.Issue(x.Issues)),
		)
	case Validated:
		g.metrics.validations.WithLabelValues("validated").Inc()

		g.log.InfoContext(spanCtx, "validated user form", slog.Any("user", x.User))
		g.deliver(spanCtx, x.User)
	}
	return res
}

func (g *Gateway) validate(c intake.Candidate) Result {
	rec, iss := g.schema.Parse(c)
	if len(iss) > 0 {
		return Rejected{Issues: iss}
	}

	u, err := user.FromRecord(rec)
	if err == nil {
		return Validated{User: u}
	}

	var ferr user.FieldTypeError
	if !errors.As(err, &ferr) {
		return Rejected{Issues: schema.Issues{{Code: schema.CodeInvalidType, Message: err.Error()}}}
	}
	return Rejected{Issues: schema.Issues{{
		Path:    ferr.Field,
		Code:    schema.CodeInvalidType,
		Message: ferr.Error(),
	}}}
}

func (g *Gateway) deliver(ctx context.Context, u user.User) {
	if g.sink == nil {
		return
	}

	spanCtx, span := otel.Tracer("gateway").Start(ctx, "Gateway.deliver")
	defer span.End()

	err := g.sink.Deliver(spanCtx, u)
	if err == nil {
		return
	}
	span.RecordError(err)
	g.metrics.sinkFailures.Inc()
	g.log.ErrorContext(spanCtx, "failed to deliver validated user", slogfield.Error(err))
}

// Submit validates c while holding the guard for formID, so submissions
// for the same form never overlap. A submission made while another is
// in flight waits for it. If ctx is done first, ErrSubmissionInFlight is
// returned wrapped together with the context error.
func (g *Gateway) Submit(ctx context.Context, formID string, c intake.Candidate) (Result, error) {
	release, waited, err := g.guards.acquire(ctx, formID)
	if waited {
		g.metrics.submissionWaits.Inc()
	}
	if err != nil {
		g.log.WarnContext(ctx, "gave up waiting on in flight submission", slogfield.FormID(formID), slogfield.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSubmissionInFlight, err)
	}
	defer release()

	g.metrics.submissionsActive.Inc()
	defer g.metrics.submissionsActive.Dec()

	return g.Validate(ctx, c), nil
}
