// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package mux defines a simple API for all http multiplexers to implement.
package mux

import (
	"fmt"
	"net/http"
	"path"
	"slices"
	"strings"
	"sync"
)

// Method defines an HTTP method expected to be used in a RESTful API.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodHead   Method = http.MethodHead
	MethodPut    Method = http.MethodPut
	MethodPost   Method = http.MethodPost
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
)

// this list is pulled from the OpenAPI v3 Path Item Object documentation.
var supportedMethods = []Method{
	http.MethodGet,
	http.MethodPut,
	http.MethodPost,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodHead,
	http.MethodPatch,
	http.MethodTrace,
}

// HttpOption defines a configuration option for [Http].
type HttpOption func(*Http)

// NotFoundHandler will register the given [http.Handler] to handle
// any HTTP requests that do not match any other method-pattern combinations.
func NotFoundHandler(h http.Handler) HttpOption {
	return func(mux *Http) {
		mux.notFound = h
	}
}

// MethodNotAllowedHandler will register the given [http.Handler] to handle
// any HTTP requests whose method does not match the method registered to a pattern.
func MethodNotAllowedHandler(h http.Handler) HttpOption {
	return func(mux *Http) {
		mux.methodNotAllowed = h
	}
}

// Http wraps a [http.ServeMux] and provides some helpers around overriding
// the default "HTTP 404 Not Found" and "HTTP 405 Method Not Allowed" behaviour.
type Http struct {
	mux *http.ServeMux

	initFallbacksOnce sync.Once
	notFound          http.Handler
	methodNotAllowed  http.Handler

	pathMethods map[string][]Method
}

// NewHttp initializes a request multiplexer using the standard [http.ServeMux.]
func NewHttp(opts ...HttpOption) *Http {
	mux := &Http{
		mux:         http.NewServeMux(),
		pathMethods: make(map[string][]Method),
	}
	for _, opt := range opts {
		opt(mux)
	}
	return mux
}

// Handle will register the [http.Handler] for the given method and pattern
// with the underlying [http.ServeMux]. The pattern is also registered with
// or without a trailing slash so "/users/parse/" and "/users/parse" behave the same.
func (m *Http) Handle(method Method, pattern string, h http.Handler) {
	m.route(method, pattern, h)

	alt, ok := alternatePattern(pattern)
	if !ok {
		return
	}
	m.route(method, alt, h)
}

func (m *Http) route(method Method, pattern string, h http.Handler) {
	m.pathMethods[pattern] = append(m.pathMethods[pattern], method)
	m.mux.Handle(fmt.Sprintf("%s %s", method, pattern), h)
}

func alternatePattern(pattern string) (string, bool) {
	// {$} is a special case where we only want to exact match the path pattern.
	if strings.HasSuffix(pattern, "{$}") {
		return "", false
	}

	if strings.HasSuffix(pattern, "/") {
		withoutTrailingSlash := strings.TrimSuffix(pattern, "/")
		return withoutTrailingSlash, len(withoutTrailingSlash) > 0
	}

	// "..." must be the final segment so it can't be followed by a "/".
	if strings.Contains(path.Base(pattern), "...") {
		return "", false
	}
	return pattern + "/", true
}

// ServeHTTP implements the [http.Handler] interface.
func (m *Http) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.initFallbacksOnce.Do(m.registerFallbackHandlers)

	m.mux.ServeHTTP(w, r)
}

func (m *Http) registerFallbackHandlers() {
	if m.notFound != nil {
		m.mux.Handle("/{path...}", m.notFound)
	}
	if m.methodNotAllowed == nil {
		return
	}

	for path, methods := range m.pathMethods {
		for _, method := range diffSets(supportedMethods, methods) {
			// a GET route already answers HEAD requests
			if method == http.MethodHead && slices.Contains(methods, http.MethodGet) {
				continue
			}
			m.mux.Handle(fmt.Sprintf("%s %s", method, path), m.methodNotAllowed)
		}
	}
}

func diffSets[T comparable](xs, ys []T) []T {
	zs := make([]T, 0, len(xs))
	for _, x := range xs {
		if slices.Contains(ys, x) {
			continue
		}
		zs = append(zs, x)
	}
	return zs
}
