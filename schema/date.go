// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package schema

import (
	"fmt"
	"time"
)

// InvalidDate marks a value that should have been a date but could not
// be read as one. Raw holds the original input, if there was any.
type InvalidDate struct {
	Raw string
}

// String implements the [fmt.Stringer] interface.
func (d InvalidDate) String() string {
	return fmt.Sprintf("invalid date: %q", d.Raw)
}

// DateField is a Field for time.Time values. An InvalidDate is reported
// as an invalid_date issue.
type DateField struct {
	min *time.Time
	max *time.Time
}

// Date returns a DateField with no bounds.
func Date() DateField {
	return DateField{}
}

// Min requires the date to not be before t.
func (f DateField) Min(t time.Time) DateField {
	f.min = &t
	return f
}

// Max requires the date to not be after t.
func (f DateField) Max(t time.Time) DateField {
	f.max = &t
	return f
}

// ParseValue implements the Field interface.
func (f DateField) ParseValue(v any) (any, Issues) {
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case *time.Time:
		if x == nil {
			return nil, Issues{invalidType("date", nil)}
		}
		t = *x
	case InvalidDate:
		return nil, Issues{{
			Code:    CodeInvalidDate,
			Message: "invalid date",
		}}
	default:
		return nil, Issues{invalidType("date", v)}
	}

	if f.min != nil && t.Before(*f.min) {
		return nil, Issues{{
			Code:    CodeTooSmall,
			Message: fmt.Sprintf("date must be on or after %s", f.min.Format(time.RFC3339)),
			Params:  map[string]any{"minimum": *f.min},
		}}
	}
	if f.max != nil && t.After(*f.max) {
		return nil, Issues{{
			Code:    CodeTooBig,
			Message: fmt.Sprintf("date must be on or before %s", f.max.Format(time.RFC3339)),
			Params:  map[string]any{"maximum": *f.max},
		}}
	}
	return t, nil
}
