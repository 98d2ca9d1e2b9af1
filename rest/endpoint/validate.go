// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"regexp"

	"github.com/z5labs/userform/pkg/ptr"

	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorBody is the JSON body written by the request errors in this package.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	WriteJson(w, status, ErrorBody{Error: err.Error()})
}

func validateRequest(r *http.Request, validators ...func(*http.Request) error) error {
	for _, validator := range validators {
		err := validator(r)
		if err != nil {
			return err
		}
	}
	return nil
}

// InvalidContentTypeError represents when a request body was sent
// with a Content-Type the endpoint does not consume.
type InvalidContentTypeError struct {
	ContentType string
}

// Error implements the [error] interface.
func (e InvalidContentTypeError) Error() string {
	return fmt.Sprintf("received invalid content type for endpoint: %s", e.ContentType)
}

// ServeHTTP implements the [http.Handler] interface.
func (e InvalidContentTypeError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusUnsupportedMediaType, e)
}

func validateContentType(contentType string) func(*http.Request) error {
	return func(r *http.Request) error {
		if contentType == "" {
			return nil
		}
		got := r.Header.Get("Content-Type")
		mediaType, _, err := mime.ParseMediaType(got)
		if err != nil || mediaType != contentType {
			return InvalidContentTypeError{ContentType: got}
		}
		return nil
	}
}

// InvalidBodyError represents when a request body could not be read.
type InvalidBodyError struct {
	Cause error
}

// Error implements the [error] interface.
func (e InvalidBodyError) Error() string {
	return fmt.Sprintf("failed to read request body: %s", e.Cause)
}

// Unwrap
func (e InvalidBodyError) Unwrap() error {
	return e.Cause
}

// ServeHTTP implements the [http.Handler] interface.
func (e InvalidBodyError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := http.StatusBadRequest
	var maxErr *http.MaxBytesError
	if errors.As(e.Cause, &maxErr) {
		status = http.StatusRequestEntityTooLarge
	}
	writeError(w, status, e)
}

// Header describes a request header an endpoint reads.
type Header struct {
	Name        string
	Description string
	Pattern     string
	Required    bool
}

func (h Header) parameter() *openapi3.Parameter {
	schema := &openapi3.Schema{
		Type: ptr.Ref(openapi3.SchemaTypeString),
	}
	if h.Pattern != "" {
		schema.Pattern = ptr.Ref(h.Pattern)
	}

	p := &openapi3.Parameter{
		Name:     h.Name,
		In:       openapi3.ParameterInHeader,
		Required: ptr.Ref(h.Required),
		Schema:   &openapi3.SchemaOrRef{Schema: schema},
	}
	if h.Description != "" {
		p.Description = ptr.Ref(h.Description)
	}
	return p
}

// InvalidHeaderError
type InvalidHeaderError struct {
	Header string
}

// Error implements the [error] interface.
func (e InvalidHeaderError) Error() string {
	return fmt.Sprintf("received invalid header for endpoint: %s", e.Header)
}

// ServeHTTP implements the [http.Handler] interface.
func (e InvalidHeaderError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusBadRequest, e)
}

// MissingRequiredHeaderError
type MissingRequiredHeaderError struct {
	Header string
}

// Error implements the [error] interface.
func (e MissingRequiredHeaderError) Error() string {
	return fmt.Sprintf("missing required header for endpoint: %s", e.Header)
}

// ServeHTTP implements the [http.Handler] interface.
func (e MissingRequiredHeaderError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusBadRequest, e)
}

func validateHeader(h Header) func(*http.Request) error {
	var pattern *regexp.Regexp
	if h.Pattern != "" {
		pattern = regexp.MustCompile(h.Pattern)
	}

	return func(r *http.Request) error {
		val := r.Header.Get(h.Name)
		if val == "" {
			if h.Required {
				return MissingRequiredHeaderError{Header: h.Name}
			}
			return nil
		}
		if pattern != nil && !pattern.MatchString(val) {
			return InvalidHeaderError{Header: h.Name}
		}
		return nil
	}
}
