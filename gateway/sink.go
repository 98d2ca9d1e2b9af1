// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gateway

import (
	"context"

	"github.com/z5labs/userform/user"
)

// Sink receives every validated user record.
type Sink interface {
	Deliver(context.Context, user.User) error
}

// SinkFunc is a func variant of Sink.
type SinkFunc func(context.Context, user.User) error

// Deliver implements the Sink interface.
func (f SinkFunc) Deliver(ctx context.Context, u user.User) error {
	return f(ctx, u)
}
