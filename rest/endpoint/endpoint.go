// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package endpoint lifts typed request handlers into [http.Handler]s
// which also describe themselves as OpenAPI operations.
package endpoint

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/z5labs/userform/pkg/ptr"

	"github.com/swaggest/openapi-go/openapi3"
)

// Handler
type Handler[Req, Resp any] interface {
	Handle(context.Context, *Req) (*Resp, error)
}

// HandlerFunc
type HandlerFunc[Req, Resp any] func(context.Context, *Req) (*Resp, error)

// Handle implements the [Handler] interface.
func (f HandlerFunc[Req, Resp]) Handle(ctx context.Context, req *Req) (*Resp, error) {
	return f(ctx, req)
}

// ContentTyper
type ContentTyper interface {
	ContentType() string
}

// Validator
type Validator interface {
	Validate() error
}

// OpenApiV3Schemaer
type OpenApiV3Schemaer interface {
	OpenApiV3Schema() (*openapi3.Schema, error)
}

// ErrorHandler
type ErrorHandler interface {
	HandleError(context.Context, http.ResponseWriter, error)
}

// ErrorHandlerFunc
type ErrorHandlerFunc func(context.Context, http.ResponseWriter, error)

// HandleError implements the [ErrorHandler] interface.
func (f ErrorHandlerFunc) HandleError(ctx context.Context, w http.ResponseWriter, err error) {
	f(ctx, w, err)
}

// DefaultStatusCode is the status code written for successful responses
// unless overridden with [StatusCode].
var DefaultStatusCode = http.StatusOK

// ErrNilHandlerResponse is returned when a [Handler] succeeds without a response.
var ErrNilHandlerResponse = errors.New("handler returned nil response")

type documentedResponse struct {
	status      int
	contentType string
	schema      OpenApiV3Schemaer
}

type options struct {
	statusCode  int
	summary     string
	description string
	tags        []string
	headers     []Header
	responses   []documentedResponse
	errHandler  ErrorHandler
}

// Option
type Option func(*options)

// StatusCode sets the status code written when the [Handler] succeeds.
func StatusCode(statusCode int) Option {
	return func(o *options) {
		o.statusCode = statusCode
	}
}

// Summary
func Summary(s string) Option {
	return func(o *options) {
		o.summary = s
	}
}

// Description
func Description(s string) Option {
	return func(o *options) {
		o.description = s
	}
}

// Tags
func Tags(tags ...string) Option {
	return func(o *options) {
		o.tags = append(o.tags, tags...)
	}
}

// Headers registers request headers which will be validated
// before the [Handler] is called and documented as parameters.
func Headers(hs ...Header) Option {
	return func(o *options) {
		o.headers = append(o.headers, hs...)
	}
}

// Returns documents an additional response without a body.
func Returns(status int) Option {
	return func(o *options) {
		o.responses = append(o.responses, documentedResponse{status: status})
	}
}

// ReturnsJson documents an additional JSON response whose body is shaped like T.
func ReturnsJson[T any](status int) Option {
	return func(o *options) {
		o.responses = append(o.responses, documentedResponse{
			status:      status,
			contentType: jsonContentType,
			schema:      JsonResponse[T]{},
		})
	}
}

// OnError overrides how errors returned from validation or the [Handler] are written.
func OnError(eh ErrorHandler) Option {
	return func(o *options) {
		o.errHandler = eh
	}
}

// Operation
type Operation[I, O any, Req Request[I], Resp Response[O]] struct {
	handler Handler[I, O]

	statusCode  int
	summary     string
	description string
	tags        []string
	headers     []Header
	responses   []documentedResponse
	validators  []func(*http.Request) error

	errHandler ErrorHandler
}

// NewOperation initializes an [Operation].
func NewOperation[I, O any, Req Request[I], Resp Response[O]](h Handler[I, O], opts ...Option) *Operation[I, O, Req, Resp] {
	o := &options{
		statusCode: DefaultStatusCode,
		errHandler: ErrorHandlerFunc(defaultErrorHandler),
	}
	for _, opt := range opts {
		opt(o)
	}

	var req I
	validators := []func(*http.Request) error{
		validateContentType(Req(&req).ContentType()),
	}
	for _, h := range o.headers {
		validators = append(validators, validateHeader(h))
	}

	return &Operation[I, O, Req, Resp]{
		handler:     h,
		statusCode:  o.statusCode,
		summary:     o.summary,
		description: o.description,
		tags:        o.tags,
		headers:     o.headers,
		responses:   o.responses,
		validators:  validators,
		errHandler:  o.errHandler,
	}
}

// defaultErrorHandler lets errors which know how to render themselves
// do so and otherwise responds with a 500.
func defaultErrorHandler(ctx context.Context, w http.ResponseWriter, err error) {
	var h http.Handler
	if errors.As(err, &h) {
		h.ServeHTTP(w, nil)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
}

// OpenApi returns the OpenAPI operation describing this endpoint.
func (op *Operation[I, O, Req, Resp]) OpenApi() openapi3.Operation {
	spec := openapi3.Operation{
		Tags: op.tags,
	}
	if op.summary != "" {
		spec.Summary = ptr.Ref(op.summary)
	}
	if op.description != "" {
		spec.Description = ptr.Ref(op.description)
	}

	for _, h := range op.headers {
		spec.Parameters = append(spec.Parameters, openapi3.ParameterOrRef{
			Parameter: h.parameter(),
		})
	}

	var req I
	reqSchema, err := Req(&req).OpenApiV3Schema()
	if err == nil && reqSchema != nil {
		spec.RequestBody = &openapi3.RequestBodyOrRef{
			RequestBody: &openapi3.RequestBody{
				Required: ptr.Ref(true),
				Content: map[string]openapi3.MediaType{
					Req(&req).ContentType(): {
						Schema: &openapi3.SchemaOrRef{Schema: reqSchema},
					},
				},
			},
		}
	}

	var resp O
	responses := append(
		[]documentedResponse{{
			status:      op.statusCode,
			contentType: Resp(&resp).ContentType(),
			schema:      Resp(&resp),
		}},
		op.responses...,
	)

	spec.Responses.MapOfResponseOrRefValues = make(map[string]openapi3.ResponseOrRef, len(responses))
	for _, r := range responses {
		spec.Responses.MapOfResponseOrRefValues[strconv.Itoa(r.status)] = openapi3.ResponseOrRef{
			Response: r.openapi(),
		}
	}
	return spec
}

func (r documentedResponse) openapi() *openapi3.Response {
	resp := &openapi3.Response{
		Description: http.StatusText(r.status),
	}
	if r.schema == nil || r.contentType == "" {
		return resp
	}

	schema, err := r.schema.OpenApiV3Schema()
	if err != nil || schema == nil {
		return resp
	}
	resp.Content = map[string]openapi3.MediaType{
		r.contentType: {
			Schema: &openapi3.SchemaOrRef{Schema: schema},
		},
	}
	return resp
}

// ServeHTTP implements the [http.Handler] interface.
func (op *Operation[I, O, Req, Resp]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := inject(r.Context(), w, r, injectRequest, injectResponseHeaders)

	err := validateRequest(r, op.validators...)
	if err != nil {
		op.errHandler.HandleError(ctx, w, err)
		return
	}

	var req I
	_, err = Req(&req).ReadFrom(r.Body)
	if err != nil {
		op.errHandler.HandleError(ctx, w, InvalidBodyError{Cause: err})
		return
	}

	err = Req(&req).Validate()
	if err != nil {
		op.errHandler.HandleError(ctx, w, err)
		return
	}

	resp, err := op.handler.Handle(ctx, &req)
	if err != nil {
		op.errHandler.HandleError(ctx, w, err)
		return
	}
	if resp == nil {
		op.errHandler.HandleError(ctx, w, ErrNilHandlerResponse)
		return
	}

	if ct := Resp(resp).ContentType(); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(op.statusCode)
	_, _ = Resp(resp).WriteTo(w)
}
