// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package slogfield standardizes the attribute keys used across userform logs.
package slogfield

import (
	"log/slog"
	"time"
)

// Any returns an slog.Attr for the supplied value.
func Any(key string, value any) slog.Attr {
	return slog.Any(key, value)
}

// Bool returns an slog.Attr for a bool.
func Bool(key string, value bool) slog.Attr {
	return slog.Bool(key, value)
}

// Duration returns an slog.Attr for a time.Duration.
func Duration(key string, d time.Duration) slog.Attr {
	return slog.Duration(key, d)
}

// Error returns an slog.Attr for a error.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// String returns an slog.Attr for a string.
func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

// Strings returns an slog.Attr for a slice of strings.
func Strings(key string, values []string) slog.Attr {
	return slog.Any(key, values)
}

// Int returns an slog.Attr for a int.
func Int(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Int64 returns an slog.Attr for a int64.
func Int64(key string, n int64) slog.Attr {
	return slog.Int64(key, n)
}

// Uint32 returns an slog.Attr for a uint32.
func Uint32(key string, n uint32) slog.Attr {
	return slog.Uint64(key, uint64(n))
}

// Time returns an slog.Attr for a time.Time.
func Time(key string, t time.Time) slog.Attr {
	return slog.Time(key, t)
}

// FormID returns the slog.Attr identifying the form instance a submission came from.
func FormID(id string) slog.Attr {
	return slog.String("form_id", id)
}

// Source returns the slog.Attr naming where a submission was received from
// e.g. "http", "sqs", "pubsub" or "kafka".
func Source(name string) slog.Attr {
	return slog.String("submission_source", name)
}

// NumOfIssues returns the slog.Attr for the number of validation issues.
func NumOfIssues(n int) slog.Attr {
	return slog.Int("num_of_issues", n)
}
