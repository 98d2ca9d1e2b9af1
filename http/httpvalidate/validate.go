// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package httpvalidate guards [http.Handler]s with request validators
// which reject a request before it reaches the handler.
package httpvalidate

import (
	"net/http"
)

// Validator represents an http.Request validator.
type Validator interface {
	Validate(http.ResponseWriter, *http.Request) bool
}

// ValidatorFunc implements Validator for funcs.
type ValidatorFunc func(http.ResponseWriter, *http.Request) bool

// Validate implements the Validator interface.
func (f ValidatorFunc) Validate(w http.ResponseWriter, r *http.Request) bool {
	return f(w, r)
}

// Handler is an http.Handler which applies request validators
// before passing the request to a wrapped http.Handler.
type Handler struct {
	validators []Validator
	base       http.Handler
}

// Request allows you to wrap a given http.Handler with request validators.
func Request(h http.Handler, validators ...Validator) *Handler {
	return &Handler{
		validators: validators,
		base:       h,
	}
}

// Middleware returns a func which wraps any [http.Handler] with the given validators.
func Middleware(validators ...Validator) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return Request(h, validators...)
	}
}

// ServeHTTP implements the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	for _, validator := range h.validators {
		valid := validator.Validate(w, req)
		if !valid {
			return
		}
	}
	h.base.ServeHTTP(w, req)
}

// MaxBodyBytes rejects requests which declare a body larger than n bytes
// and limits the body of every other request to n bytes. Handlers reading
// past the limit get an [*http.MaxBytesError].
func MaxBodyBytes(n int64) Validator {
	return ValidatorFunc(func(w http.ResponseWriter, r *http.Request) bool {
		if r.ContentLength > n {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return false
		}
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, n)
		}
		return true
	})
}
