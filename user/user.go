// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package user defines the validated user record and its schema.
package user

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/z5labs/userform/schema"
)

// Schema property names.
const (
	FieldID        = "id"
	FieldName      = "name"
	FieldEmail     = "email"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// User is a user record which passed validation.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Schema returns the schema every User satisfies.
func Schema() schema.Object {
	return schema.NewObject(
		schema.Prop(FieldID, schema.String().UUID(4)),
		schema.Prop(FieldName, schema.String().Min(1).Max(50)),
		schema.Prop(FieldEmail, schema.String().Email()),
		schema.Prop(FieldCreatedAt, schema.Date()),
		schema.Prop(FieldUpdatedAt, schema.Date()),
	)
}

// FieldTypeError is returned by FromRecord when a record value
// does not have the type User expects.
type FieldTypeError struct {
	Field string
	Value any
}

// Error implements the error interface.
func (e FieldTypeError) Error() string {
	return fmt.Sprintf("unexpected type for user field %s: %T", e.Field, e.Value)
}

// FromRecord converts a record returned by Schema().Parse into a User.
func FromRecord(rec map[string]any) (User, error) {
	var u User
	var err error
	if u.ID, err = get[string](rec, FieldID); err != nil {
		return User{}, err
	}
	if u.Name, err = get[string](rec, FieldName); err != nil {
		return User{}, err
	}
	if u.Email, err = get[string](rec, FieldEmail); err != nil {
		return User{}, err
	}
	if u.CreatedAt, err = get[time.Time](rec, FieldCreatedAt); err != nil {
		return User{}, err
	}
	if u.UpdatedAt, err = get[time.Time](rec, FieldUpdatedAt); err != nil {
		return User{}, err
	}
	return u, nil
}

func get[T any](rec map[string]any, field string) (T, error) {
	v, ok := rec[field].(T)
	if !ok {
		return v, FieldTypeError{Field: field, Value: rec[field]}
	}
	return v, nil
}

// LogValue implements the slog.LogValuer interface.
func (u User) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", u.ID),
		slog.String("name", u.Name),
		slog.String("email", u.Email),
		slog.Time("created_at", u.CreatedAt),
		slog.Time("updated_at", u.UpdatedAt),
	)
}
