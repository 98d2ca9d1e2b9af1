// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package key defines how config values are addressed inside a Store.
package key

import "strings"

// Keyer represents anything which can address a config value.
type Keyer interface {
	Keys() []string
}

// Name is a single, top level key.
type Name string

// Keys implements the Keyer interface.
func (n Name) Keys() []string {
	return []string{string(n)}
}

// Chain is a path of keys where each key is
// nested under the one before it.
type Chain []string

// Keys implements the Keyer interface.
func (c Chain) Keys() []string {
	return c
}

// String implements the fmt.Stringer interface.
func (c Chain) String() string {
	return strings.Join(c, ".")
}
