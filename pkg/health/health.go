// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package health provides the health metrics reported by the userform service.
package health

import (
	"context"
	"sync"
)

// Metric represents anything that can report its health status.
type Metric interface {
	Healthy(context.Context) bool
}

// Binary is a Metric which is either healthy or not.
// The zero value is unhealthy until MarkHealthy is called.
type Binary struct {
	mu      sync.RWMutex
	healthy bool
}

// MarkHealthy flips the metric to healthy.
func (m *Binary) MarkHealthy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthy = true
}

// MarkUnhealthy flips the metric to unhealthy.
func (m *Binary) MarkUnhealthy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthy = false
}

// Healthy implements the Metric interface.
func (m *Binary) Healthy(ctx context.Context) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy
}

// MetricFunc is a func variant of Metric.
type MetricFunc func(context.Context) bool

// Healthy implements the Metric interface.
func (f MetricFunc) Healthy(ctx context.Context) bool {
	return f(ctx)
}

// AndMetric represents multiple Metrics all and'd together.
type AndMetric []Metric

// And returns a Metric which is only healthy when every given Metric is.
func And(metrics ...Metric) AndMetric {
	return AndMetric(metrics)
}

// Healthy implements the Metric interface.
func (m AndMetric) Healthy(ctx context.Context) bool {
	for _, metric := range m {
		if !metric.Healthy(ctx) {
			return false
		}
	}
	return true
}
