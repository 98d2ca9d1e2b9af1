// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package queue

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/z5labs/userform/gateway"
	"github.com/z5labs/userform/intake"
	"github.com/z5labs/userform/pkg/otelslog"
	"github.com/z5labs/userform/pkg/slogfield"
	"github.com/z5labs/userform/schema"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Submission is a url-encoded user form taken off a queue.
type Submission struct {
	// FormID keys the per-form guard of the gateway.
	FormID string

	// Body holds the form fields, e.g. "userId=...&userName=...".
	Body []byte
}

// Submitter is implemented by [gateway.Gateway].
type Submitter interface {
	Submit(ctx context.Context, formID string, c intake.Candidate) (gateway.Result, error)
}

// Mode selects how a [FormProcessor] reads the timestamp fields.
// It has no effect on the runtimes.
func Mode(m intake.Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// FormProcessor validates each [Submission] it is given.
//
// A rejected or malformed form still counts as processed, since
// delivering it again can never change the outcome. Only a failed
// submission is returned as an error so the message is redelivered.
type FormProcessor struct {
	log       *slog.Logger
	mode      intake.Mode
	submitter Submitter
}

// NewFormProcessor
func NewFormProcessor(s Submitter, opts ...Option) *FormProcessor {
	o := newOptions(opts...)
	return &FormProcessor{
		log:       otelslog.New(o.logHandler),
		mode:      o.mode,
		submitter: s,
	}
}

// Process implements the [Processor] interface.
func (p *FormProcessor) Process(ctx context.Context, sub Submission) error {
	spanCtx, span := otel.Tracer("queue").Start(ctx, "FormProcessor.Process", trace.WithAttributes(
		attribute.String("userform.form_id", sub.FormID),
	))
	defer span.End()

	vals, err := url.ParseQuery(string(sub.Body))
	if err != nil {
		p.log.ErrorContext(
			spanCtx,
			"dropping malformed form submission",
			slogfield.FormID(sub.FormID),
			slogfield.Error(err),
		)
		return nil
	}

	c := intake.FromValues(vals, intake.WithMode(p.mode))
	res, err := p.submitter.Submit(spanCtx, sub.FormID, c)
	if err != nil {
		span.RecordError(err)
		return err
	}

	switch x := res.(type) {
	case gateway.Rejected:
		p.log.InfoContext(
			spanCtx,
			"form submission rejected",
			slogfield.FormID(sub.FormID),
			slogfield.NumOfIssues(len(x.Issues)),
			slog.Any("issues", []schema.Issue(x.Issues)),
		)
	case gateway.Validated:
		p.log.InfoContext(spanCtx, "form submission validated", slogfield.FormID(sub.FormID))
	}
	return nil
}
