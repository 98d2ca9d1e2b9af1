// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package schema

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Code classifies an Issue.
type Code string

const (
	CodeRequired      Code = "required"
	CodeInvalidType   Code = "invalid_type"
	CodeTooSmall      Code = "too_small"
	CodeTooBig        Code = "too_big"
	CodeInvalidFormat Code = "invalid_format"
	CodeInvalidDate   Code = "invalid_date"
	CodeInvalidEnum   Code = "invalid_enum"
	CodeInvalidValue  Code = "invalid_value"
)

// Issue is a single validation failure.
type Issue struct {
	// Path is the field name the issue belongs to.
	Path    string         `json:"path"`
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

// Issues is a collection of validation failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3

	var sb strings.Builder
	n := min(len(iss), maxShown)
	for i, it := range iss[:n] {
		if i > 0 {
			sb.WriteString("; ")
		}
		fmt.Fprintf(&sb, "%s at %s", it.Code, it.Path)
	}
	if len(iss) > n {
		fmt.Fprintf(&sb, "; ... (total %d)", len(iss))
	}
	return sb.String()
}

// At returns every issue whose path is the given field name.
func (iss Issues) At(path string) Issues {
	var out Issues
	for _, it := range iss {
		if it.Path == path {
			out = append(out, it)
		}
	}
	return out
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

func withPath(path string, iss Issues) Issues {
	for i := range iss {
		if iss[i].Path == "" {
			iss[i].Path = path
			continue
		}
		iss[i].Path = path + "." + iss[i].Path
	}
	return iss
}

func invalidType(expected string, v any) Issue {
	received := typeName(v)
	return Issue{
		Code:    CodeInvalidType,
		Message: fmt.Sprintf("expected %s, received %s", expected, received),
		Params: map[string]any{
			"expected": expected,
			"received": received,
		},
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case time.Time, *time.Time:
		return "date"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
