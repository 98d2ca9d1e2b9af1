// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package api implements the HTTP operations for parsing submitted user forms.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"

	"github.com/z5labs/userform/gateway"
	"github.com/z5labs/userform/intake"
	"github.com/z5labs/userform/pkg/noop"
	"github.com/z5labs/userform/pkg/otelslog"
	"github.com/z5labs/userform/pkg/slogfield"
	"github.com/z5labs/userform/rest"
	"github.com/z5labs/userform/rest/endpoint"
	"github.com/z5labs/userform/rest/mux"
	"github.com/z5labs/userform/schema"
	"github.com/z5labs/userform/user"
)

// FormIDHeader optionally identifies the form instance a submission came from.
const FormIDHeader = "X-Form-Id"

// ParseUserPattern is the path the form is submitted to.
const ParseUserPattern = "/users/parse"

// Form documents the url-encoded fields of a submitted user form.
type Form struct {
	UserID        string `json:"userId" description:"UUID v4 of the user"`
	UserName      string `json:"userName" description:"Between 1 and 50 characters"`
	UserEmail     string `json:"userEmail" description:"Email address"`
	UserCreatedAt string `json:"userCreatedAt" description:"RFC 3339 timestamp or date"`
	UserUpdatedAt string `json:"userUpdatedAt" description:"RFC 3339 timestamp or date"`
}

// ParseResponse is returned when a form validated.
type ParseResponse struct {
	Success bool      `json:"success"`
	Data    user.User `json:"data"`
}

// RejectionBody is returned when a form was rejected.
type RejectionBody struct {
	Success bool           `json:"success"`
	Issues  []schema.Issue `json:"issues"`
}

// RejectedError is returned by the parse handler for rejected forms.
// It renders itself as a 422 with the issue list.
type RejectedError struct {
	Issues schema.Issues
}

// Error implements the [error] interface.
func (e RejectedError) Error() string {
	return e.Issues.Error()
}

// ServeHTTP implements the [http.Handler] interface.
func (e RejectedError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	endpoint.WriteJson(w, http.StatusUnprocessableEntity, RejectionBody{Issues: e.Issues})
}

// SubmissionInFlightError is returned when the request was cancelled
// while waiting on another submission for the same form.
type SubmissionInFlightError struct {
	FormID string
	Cause  error
}

// Error implements the [error] interface.
func (e SubmissionInFlightError) Error() string {
	return fmt.Sprintf("submission for form %s still in flight: %s", e.FormID, e.Cause)
}

// Unwrap
func (e SubmissionInFlightError) Unwrap() error {
	return e.Cause
}

// ServeHTTP implements the [http.Handler] interface.
func (e SubmissionInFlightError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	endpoint.WriteJson(w, http.StatusConflict, endpoint.ErrorBody{Error: e.Error()})
}

// Submitter is implemented by [gateway.Gateway].
type Submitter interface {
	Submit(ctx context.Context, formID string, c intake.Candidate) (gateway.Result, error)
}

type options struct {
	logHandler slog.Handler
	mode       intake.Mode
}

// Option
type Option func(*options)

// LogHandler
func LogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logHandler = h
	}
}

// Mode selects how the timestamp fields are read from the form.
func Mode(m intake.Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

type parseHandler struct {
	log       *slog.Logger
	mode      intake.Mode
	submitter Submitter
}

// ParseUser returns the endpoint which validates a submitted form.
//
// The form instance is identified by the X-Form-Id header or, when absent,
// by the host of the client. Overlapping submissions for one form instance
// are handled one at a time.
func ParseUser(s Submitter, opts ...Option) rest.Endpoint {
	o := &options{
		logHandler: noop.LogHandler{},
		mode:       intake.ModeAsIs,
	}
	for _, opt := range opts {
		opt(o)
	}

	h := &parseHandler{
		log:       slog.New(otelslog.NewHandler(o.logHandler)),
		mode:      o.mode,
		submitter: s,
	}

	return rest.Endpoint{
		Method:  mux.MethodPost,
		Pattern: ParseUserPattern,
		Operation: endpoint.NewOperation[endpoint.FormRequest[Form], endpoint.JsonResponse[ParseResponse], *endpoint.FormRequest[Form], *endpoint.JsonResponse[ParseResponse]](
			endpoint.ProducesJson[endpoint.FormRequest[Form], ParseResponse](
				endpoint.ConsumesForm[Form, ParseResponse](h),
			),
			endpoint.Summary("Parse a user form"),
			endpoint.Description("Validates the submitted form fields against the user schema."),
			endpoint.Tags("users"),
			endpoint.Headers(endpoint.Header{
				Name:        FormIDHeader,
				Description: "Identifies the form instance. Defaults to the client host.",
				Pattern:     `^[\x21-\x7e]{1,128}$`,
			}),
			endpoint.ReturnsJson[RejectionBody](http.StatusUnprocessableEntity),
			endpoint.ReturnsJson[endpoint.ErrorBody](http.StatusBadRequest),
			endpoint.ReturnsJson[endpoint.ErrorBody](http.StatusConflict),
			endpoint.ReturnsJson[endpoint.ErrorBody](http.StatusUnsupportedMediaType),
		),
	}
}

func (h *parseHandler) Handle(ctx context.Context, values *url.Values) (*ParseResponse, error) {
	formID := formID(ctx)

	c := intake.FromValues(*values, intake.WithMode(h.mode))
	res, err := h.submitter.Submit(ctx, formID, c)
	if err != nil {
		h.log.WarnContext(ctx, "failed to submit user form", slogfield.FormID(formID), slogfield.Error(err))
		return nil, SubmissionInFlightError{FormID: formID, Cause: err}
	}

	switch x := res.(type) {
	case gateway.Validated:
		return &ParseResponse{Success: true, Data: x.User}, nil
	case gateway.Rejected:
		return nil, RejectedError{Issues: x.Issues}
	default:
		return nil, fmt.Errorf("unexpected validation result: %T", res)
	}
}

func formID(ctx context.Context) string {
	if id := endpoint.HeaderValue(ctx, FormIDHeader); id != "" {
		return id
	}

	addr := endpoint.RemoteAddr(ctx)
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
