// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package httphealth exposes [health.Metric]s over HTTP.
package httphealth

import (
	"encoding/json"
	"net/http"

	"github.com/z5labs/userform/pkg/health"
)

// Status is the body written by the handlers returned from [NewHandler].
type Status struct {
	Healthy bool `json:"healthy"`
}

// NewHandler wraps a health.Metric into an http.Handler.
//
// If m.Healthy returns true, then HTTP status code 200 is
// returned, else, HTTP status code 503 is returned.
func NewHandler(m health.Metric) http.Handler {
	if h, ok := m.(http.Handler); ok {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := Status{Healthy: m.Healthy(r.Context())}

		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(code)
		if r.Method == http.MethodHead {
			return
		}
		_ = json.NewEncoder(w).Encode(status)
	})
}
