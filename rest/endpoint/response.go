// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/swaggest/openapi-go/openapi3"
)

// Response
type Response[T any] interface {
	*T

	ContentTyper
	OpenApiV3Schemaer
	io.WriterTo
}

const jsonContentType = "application/json"

// JsonResponseHandler wraps a given [Handler] and handles writing the underlying
// response type, Resp, to JSON.
type JsonResponseHandler[Req, Resp any] struct {
	inner Handler[Req, Resp]
}

// ProducesJson constructs a [JsonResponseHandler] from the given [Handler].
func ProducesJson[Req, Resp any](h Handler[Req, Resp]) *JsonResponseHandler[Req, Resp] {
	return &JsonResponseHandler[Req, Resp]{
		inner: h,
	}
}

// Handle implements the [Handler] interface.
func (h *JsonResponseHandler[Req, Resp]) Handle(ctx context.Context, req *Req) (*JsonResponse[Resp], error) {
	resp, err := h.inner.Handle(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, ErrNilHandlerResponse
	}
	return &JsonResponse[Resp]{inner: resp}, nil
}

// JsonResponse
type JsonResponse[T any] struct {
	inner *T
}

// NewJsonResponse
func NewJsonResponse[T any](v *T) *JsonResponse[T] {
	return &JsonResponse[T]{inner: v}
}

// ContentType implements the [ContentTyper] interface.
func (*JsonResponse[T]) ContentType() string {
	return jsonContentType
}

// OpenApiV3Schema implements the [OpenApiV3Schemaer] interface.
func (JsonResponse[T]) OpenApiV3Schema() (*openapi3.Schema, error) {
	var t T
	return reflectSchema(t)
}

// WriteTo implements the [io.WriterTo] interface.
func (resp *JsonResponse[T]) WriteTo(w io.Writer) (int64, error) {
	b, err := json.Marshal(resp.inner)
	if err != nil {
		return 0, err
	}
	return io.Copy(w, bytes.NewReader(b))
}

// WriteJson writes v as the JSON body of a response with the given status code.
// It is meant for errors which render themselves.
func WriteJson(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
