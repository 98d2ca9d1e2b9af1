// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package schema describes the shape of a record as an immutable set of
// field constraints and converts validation failures into an [Issues] list.
//
// Field level checks are delegated to go-playground/validator and UUIDs are
// parsed with google/uuid. An [Object] never changes once built; Pick, Omit,
// Partial, Required and Extend all return a new [Object].
package schema
