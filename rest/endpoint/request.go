// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"context"
	"io"
	"net/url"

	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// Request
type Request[T any] interface {
	*T

	ContentTyper
	Validator
	OpenApiV3Schemaer
	io.ReaderFrom
}

// EmptyRequest is used by operations which do not read a request body.
type EmptyRequest struct{}

// ContentType implements the [ContentTyper] interface.
func (*EmptyRequest) ContentType() string {
	return ""
}

// Validate implements the [Validator] interface.
func (*EmptyRequest) Validate() error {
	return nil
}

// OpenApiV3Schema implements the [OpenApiV3Schemaer] interface.
func (*EmptyRequest) OpenApiV3Schema() (*openapi3.Schema, error) {
	return nil, nil
}

// ReadFrom implements the [io.ReaderFrom] interface.
func (*EmptyRequest) ReadFrom(r io.Reader) (int64, error) {
	return 0, nil
}

type emptyRequestHandler[Resp any] struct {
	inner interface {
		Handle(context.Context) (*Resp, error)
	}
}

// ConsumesNothing adapts a handler which takes no input.
func ConsumesNothing[Resp any](h interface {
	Handle(context.Context) (*Resp, error)
}) Handler[EmptyRequest, Resp] {
	return emptyRequestHandler[Resp]{inner: h}
}

func (h emptyRequestHandler[Resp]) Handle(ctx context.Context, _ *EmptyRequest) (*Resp, error) {
	return h.inner.Handle(ctx)
}

const formContentType = "application/x-www-form-urlencoded"

// FormRequest reads an url-encoded form body. The type parameter T
// only describes the form fields in the OpenAPI schema.
type FormRequest[T any] struct {
	values url.Values
}

// ContentType implements the [ContentTyper] interface.
func (*FormRequest[T]) ContentType() string {
	return formContentType
}

// Validate implements the [Validator] interface.
func (*FormRequest[T]) Validate() error {
	return nil
}

// OpenApiV3Schema implements the [OpenApiV3Schemaer] interface.
func (*FormRequest[T]) OpenApiV3Schema() (*openapi3.Schema, error) {
	var t T
	return reflectSchema(t)
}

// ReadFrom implements the [io.ReaderFrom] interface.
func (req *FormRequest[T]) ReadFrom(r io.Reader) (int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return int64(len(b)), err
	}
	req.values, err = url.ParseQuery(string(b))
	return int64(len(b)), err
}

// Values returns the decoded form fields.
func (req *FormRequest[T]) Values() url.Values {
	return req.values
}

type formRequestHandler[T, Resp any] struct {
	inner Handler[url.Values, Resp]
}

// ConsumesForm adapts a handler of decoded form values into one which
// reads an url-encoded request body.
func ConsumesForm[T, Resp any](h Handler[url.Values, Resp]) Handler[FormRequest[T], Resp] {
	return formRequestHandler[T, Resp]{inner: h}
}

func (h formRequestHandler[T, Resp]) Handle(ctx context.Context, req *FormRequest[T]) (*Resp, error) {
	values := req.Values()
	if values == nil {
		values = url.Values{}
	}
	return h.inner.Handle(ctx, &values)
}

func reflectSchema(v any) (*openapi3.Schema, error) {
	var reflector jsonschema.Reflector
	jsonSchema, err := reflector.Reflect(v)
	if err != nil {
		return nil, err
	}
	var schemaOrRef openapi3.SchemaOrRef
	schemaOrRef.FromJSONSchema(jsonSchema.ToSchemaOrBool())
	return schemaOrRef.Schema, nil
}
