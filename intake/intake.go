// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package intake turns raw user form values into a candidate user record.
package intake

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/z5labs/userform/schema"
	"github.com/z5labs/userform/user"
)

// Form field names as submitted by the user form.
const (
	FormFieldID        = "userId"
	FormFieldName      = "userName"
	FormFieldEmail     = "userEmail"
	FormFieldCreatedAt = "userCreatedAt"
	FormFieldUpdatedAt = "userUpdatedAt"
)

// Mode controls how the updatedAt form field is converted.
type Mode string

const (
	// ModeAsIs converts createdAt into a timestamp but passes updatedAt
	// through as the raw string.
	ModeAsIs Mode = "as_is"

	// ModeSymmetric converts both createdAt and updatedAt into timestamps.
	ModeSymmetric Mode = "symmetric"
)

// UnknownModeError is returned when a Mode is decoded from an unknown value.
type UnknownModeError struct {
	Value string
}

// Error implements the error interface.
func (e UnknownModeError) Error() string {
	return fmt.Sprintf("unknown intake mode: %q", e.Value)
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// An empty value decodes to ModeAsIs.
func (m *Mode) UnmarshalText(b []byte) error {
	switch Mode(strings.ToLower(string(b))) {
	case "", ModeAsIs:
		*m = ModeAsIs
	case ModeSymmetric:
		*m = ModeSymmetric
	default:
		return UnknownModeError{Value: string(b)}
	}
	return nil
}

// Candidate is an unvalidated user record keyed by the user schema field names.
type Candidate map[string]any

type options struct {
	mode Mode
}

// Option configures how a Candidate is built.
type Option func(*options)

// WithMode sets the Mode, which defaults to ModeAsIs.
func WithMode(m Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

var fieldMapping = []struct {
	form   string
	record string
}{
	{form: FormFieldID, record: user.FieldID},
	{form: FormFieldName, record: user.FieldName},
	{form: FormFieldEmail, record: user.FieldEmail},
	{form: FormFieldCreatedAt, record: user.FieldCreatedAt},
	{form: FormFieldUpdatedAt, record: user.FieldUpdatedAt},
}

// FromValues builds a Candidate from submitted form values.
// Absent form fields are absent keys, except for the timestamp
// fields which are converted with ParseTimestamp.
func FromValues(vals url.Values, opts ...Option) Candidate {
	return build(func(name string) (string, bool) {
		if !vals.Has(name) {
			return "", false
		}
		return vals.Get(name), true
	}, opts...)
}

// FromMap builds a Candidate from a flat map of form field names to
// values, e.g. a decoded queue message.
func FromMap(m map[string]string, opts ...Option) Candidate {
	return build(func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}, opts...)
}

func build(lookup func(string) (string, bool), opts ...Option) Candidate {
	o := &options{mode: ModeAsIs}
	for _, opt := range opts {
		opt(o)
	}

	c := make(Candidate, len(fieldMapping))
	for _, fm := range fieldMapping {
		raw, ok := lookup(fm.form)

		switch {
		case fm.record == user.FieldCreatedAt:
			c[fm.record] = parseIfPresent(raw, ok)
		case fm.record == user.FieldUpdatedAt && o.mode == ModeSymmetric:
			c[fm.record] = parseIfPresent(raw, ok)
		case ok:
			c[fm.record] = raw
		}
	}
	return c
}

// parseIfPresent yields a schema.InvalidDate for absent or unparseable
// input, which the user schema rejects.
func parseIfPresent(raw string, ok bool) any {
	if !ok {
		return schema.InvalidDate{}
	}
	t, ok := ParseTimestamp(raw)
	if !ok {
		return schema.InvalidDate{Raw: raw}
	}
	return t
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseTimestamp parses RFC 3339 timestamps, with or without fractional
// seconds, local date times, as produced by datetime-local inputs, and
// plain dates. Local values are read as UTC and every result is converted
// to UTC. The bool is false for anything else.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
