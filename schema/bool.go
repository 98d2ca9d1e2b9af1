// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package schema

import (
	"fmt"
	"slices"
	"strings"
)

var (
	defaultTruthy = []string{"true", "1", "yes", "on", "y", "enabled"}
	defaultFalsy  = []string{"false", "0", "no", "off", "n", "disabled"}
)

// StringBoolField parses string values, e.g. checkbox values, into a bool.
type StringBoolField struct {
	truthy        []string
	falsy         []string
	caseSensitive bool
}

// StringBool returns a StringBoolField with the default truthy and falsy sets.
func StringBool() StringBoolField {
	return StringBoolField{
		truthy: defaultTruthy,
		falsy:  defaultFalsy,
	}
}

// Truthy replaces the set of values parsed as true.
func (f StringBoolField) Truthy(values ...string) StringBoolField {
	f.truthy = slices.Clone(values)
	return f
}

// Falsy replaces the set of values parsed as false.
func (f StringBoolField) Falsy(values ...string) StringBoolField {
	f.falsy = slices.Clone(values)
	return f
}

// CaseSensitive disables case folding when matching values.
func (f StringBoolField) CaseSensitive() StringBoolField {
	f.caseSensitive = true
	return f
}

// ParseValue implements the Field interface.
func (f StringBoolField) ParseValue(v any) (any, Issues) {
	if b, ok := v.(bool); ok {
		return b, nil
	}

	s, ok := v.(string)
	if !ok {
		return nil, Issues{invalidType("string", v)}
	}
	s = strings.TrimSpace(s)

	if f.contains(f.truthy, s) {
		return true, nil
	}
	if f.contains(f.falsy, s) {
		return false, nil
	}
	return nil, Issues{{
		Code:    CodeInvalidValue,
		Message: fmt.Sprintf("expected one of %v or %v", f.truthy, f.falsy),
		Params: map[string]any{
			"truthy": f.truthy,
			"falsy":  f.falsy,
		},
	}}
}

func (f StringBoolField) contains(values []string, s string) bool {
	return slices.ContainsFunc(values, func(v string) bool {
		if f.caseSensitive {
			return v == s
		}
		return strings.EqualFold(v, s)
	})
}
