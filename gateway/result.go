// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gateway

import (
	"github.com/z5labs/userform/schema"
	"github.com/z5labs/userform/user"
)

// Result is the outcome of validating a candidate. It is
// either a Validated or a Rejected.
type Result interface {
	isResult()
}

// Validated carries the normalized user record.
type Validated struct {
	User user.User
}

func (Validated) isResult() {}

// Rejected carries every validation issue found.
type Rejected struct {
	Issues schema.Issues
}

func (Rejected) isResult() {}
