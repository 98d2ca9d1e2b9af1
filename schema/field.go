// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package schema

// Field validates and normalizes a single value. Issues returned by
// a Field leave Path empty, the enclosing Object fills it in.
type Field interface {
	ParseValue(v any) (any, Issues)
}

// FieldFunc is a func variant of Field.
type FieldFunc func(any) (any, Issues)

// ParseValue implements the Field interface.
func (f FieldFunc) ParseValue(v any) (any, Issues) {
	return f(v)
}
