// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mux

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type statusCodeHandler int

func (h statusCodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(int(h))
}

func serve(m *Http, method, target string) int {
	w := httptest.NewRecorder()
	m.ServeHTTP(w, httptest.NewRequest(method, "http://example.com"+target, nil))
	return w.Result().StatusCode
}

func TestNotFoundHandler(t *testing.T) {
	testCases := []struct {
		Name            string
		RegisterPattern string
		RequestPath     string
		NotFound        bool
	}{
		{
			Name:        "should match not found if no other endpoints are registered and '/' is requested",
			RequestPath: "/",
			NotFound:    true,
		},
		{
			Name:        "should match not found if no other endpoints are registered and a sub path is requested",
			RequestPath: "/users",
			NotFound:    true,
		},
		{
			Name:            "should match not found if other endpoints are registered and '/' is requested",
			RegisterPattern: "/users/parse",
			RequestPath:     "/",
			NotFound:        true,
		},
		{
			Name:            "should match not found if other endpoints are registered and unknown sub-path is requested",
			RegisterPattern: "/users/parse",
			RequestPath:     "/users/create",
			NotFound:        true,
		},
		{
			Name:            "should match not found if '/{$}' is registered and a sub-path is requested",
			RegisterPattern: "/{$}",
			RequestPath:     "/users",
			NotFound:        true,
		},
		{
			Name:            "should not match not found if endpoint pattern is requested",
			RegisterPattern: "/users/parse",
			RequestPath:     "/users/parse",
			NotFound:        false,
		},
		{
			Name:            "should not match not found if endpoint pattern is requested with a trailing slash",
			RegisterPattern: "/users/parse",
			RequestPath:     "/users/parse/",
			NotFound:        false,
		},
		{
			Name:            "should not match not found if a trailing slash pattern is requested without it",
			RegisterPattern: "/health/",
			RequestPath:     "/health",
			NotFound:        false,
		},
		{
			Name:            "should not match not found if '/{$}' is registered and '/' requested",
			RegisterPattern: "/{$}",
			RequestPath:     "/",
			NotFound:        false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			m := NewHttp(NotFoundHandler(statusCodeHandler(http.StatusNotFound)))
			if testCase.RegisterPattern != "" {
				m.Handle(MethodGet, testCase.RegisterPattern, statusCodeHandler(http.StatusOK))
			}

			status := serve(m, http.MethodGet, testCase.RequestPath)
			if testCase.NotFound {
				assert.Equal(t, http.StatusNotFound, status)
				return
			}
			assert.Equal(t, http.StatusOK, status)
		})
	}
}

func TestMethodNotAllowedHandler(t *testing.T) {
	t.Run("will call the registered handler", func(t *testing.T) {
		t.Run("if the correct method is used", func(t *testing.T) {
			m := NewHttp(MethodNotAllowedHandler(statusCodeHandler(http.StatusMethodNotAllowed)))
			m.Handle(MethodPost, "/users/parse", statusCodeHandler(http.StatusOK))

			if !assert.Equal(t, http.StatusOK, serve(m, http.MethodPost, "/users/parse")) {
				return
			}
		})

		t.Run("if more than one method is registered for the same path", func(t *testing.T) {
			m := NewHttp(MethodNotAllowedHandler(statusCodeHandler(http.StatusMethodNotAllowed)))
			m.Handle(MethodGet, "/", statusCodeHandler(http.StatusOK))
			m.Handle(MethodPost, "/", statusCodeHandler(http.StatusCreated))

			if !assert.Equal(t, http.StatusOK, serve(m, http.MethodGet, "/")) {
				return
			}
			if !assert.Equal(t, http.StatusCreated, serve(m, http.MethodPost, "/")) {
				return
			}
		})

		t.Run("if HEAD is requested for a GET route", func(t *testing.T) {
			m := NewHttp(MethodNotAllowedHandler(statusCodeHandler(http.StatusMethodNotAllowed)))
			m.Handle(MethodGet, "/health/liveness", statusCodeHandler(http.StatusOK))

			if !assert.Equal(t, http.StatusOK, serve(m, http.MethodHead, "/health/liveness")) {
				return
			}
		})
	})

	t.Run("will return method not allowed", func(t *testing.T) {
		t.Run("if an incorrect method is used", func(t *testing.T) {
			m := NewHttp(MethodNotAllowedHandler(statusCodeHandler(http.StatusMethodNotAllowed)))
			m.Handle(MethodPost, "/users/parse", statusCodeHandler(http.StatusOK))

			if !assert.Equal(t, http.StatusMethodNotAllowed, serve(m, http.MethodGet, "/users/parse")) {
				return
			}
			if !assert.Equal(t, http.StatusMethodNotAllowed, serve(m, http.MethodDelete, "/users/parse/")) {
				return
			}
		})
	})
}

func TestDiffSets(t *testing.T) {
	t.Run("will keep the order of the first set", func(t *testing.T) {
		got := diffSets([]Method{MethodGet, MethodPut, MethodPost}, []Method{MethodPut})

		if !assert.Equal(t, []Method{MethodGet, MethodPost}, got) {
			return
		}
	})
}
