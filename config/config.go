// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/z5labs/userform/config/key"

	"github.com/mitchellh/mapstructure"
)

// Store represents a general key value structure.
type Store interface {
	Set(key.Keyer, any) error
}

// Source defines valid config sources as those who can
// serialize themselves into a key value like structure.
type Source interface {
	Apply(Store) error
}

// SourceFunc is a func variant of Source.
type SourceFunc func(Store) error

// Apply implements the Source interface.
func (f SourceFunc) Apply(store Store) error {
	return f(store)
}

// ErrEmptyKey is returned by Map.Set when a Keyer has no keys.
var ErrEmptyKey = errors.New("config: key must not be empty")

// Map is a Store which nests chained keys as map[string]any values.
// It is also a Source, so one Map can be layered onto another.
type Map map[string]any

// Set implements the Store interface.
func (m Map) Set(k key.Keyer, v any) error {
	keys := k.Keys()
	if len(keys) == 0 {
		return ErrEmptyKey
	}

	cur := map[string]any(m)
	for _, name := range keys[:len(keys)-1] {
		next, ok := cur[name].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[name] = next
		}
		cur = next
	}
	cur[keys[len(keys)-1]] = v
	return nil
}

// Apply implements the Source interface.
func (m Map) Apply(store Store) error {
	return setKeyChain(store, nil, m)
}

func setKeyChain(store Store, chain key.Chain, m map[string]any) error {
	for name, v := range m {
		ch := make(key.Chain, len(chain), len(chain)+1)
		copy(ch, chain)
		ch = append(ch, name)

		switch x := v.(type) {
		case Map:
			v = map[string]any(x)
		}

		sub, ok := v.(map[string]any)
		if ok {
			err := setKeyChain(store, ch, sub)
			if err != nil {
				return err
			}
			continue
		}

		err := store.Set(ch, v)
		if err != nil {
			return err
		}
	}
	return nil
}

// Manager holds the merged result of every Source.
type Manager struct {
	store Map
}

// Read applies every Source, in order, to a fresh Map.
// Subsequent sources override previous sources.
func Read(srcs ...Source) (*Manager, error) {
	store := make(Map)
	for _, src := range srcs {
		err := src.Apply(store)
		if err != nil {
			return nil, err
		}
	}
	m := &Manager{
		store: store,
	}
	return m, nil
}

// Unmarshal decodes the merged config into v using the "config" struct tag.
// Input is weakly typed since environment variables are always strings. String values are decoded into [encoding.TextUnmarshaler]s, e.g. [log/slog.Level],
// and [time.Duration]s accept either a duration string or an integer.
func (m *Manager) Unmarshal(v any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "config",
		Result:           v,
		WeaklyTypedInput: true,
		DecodeHook: composeDecodeHooks(
			textUnmarshalerHookFunc(),
			timeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(m.store)
}

var errInvalidDecodeCondition = errors.New("invalid decode condition")

// TypeCoercionError occurs when attempting to unmarshal a config
// value to a struct field whose type does not match the config
// value type, up to, coercion.
type TypeCoercionError struct {
	from  reflect.Value
	to    reflect.Value
	Cause error
}

// Error implements the error interface.
func (e TypeCoercionError) Error() string {
	return fmt.Sprintf("failed to coerce value from %s to %s: %s", e.from.Type(), e.to.Type(), e.Cause)
}

// Unwrap implements the implicit interface for usage with errors.Is and errors.As.
func (e TypeCoercionError) Unwrap() error {
	return e.Cause
}

func composeDecodeHooks(hs ...mapstructure.DecodeHookFunc) mapstructure.DecodeHookFuncValue {
	return func(f, t reflect.Value) (any, error) {
		for _, h := range hs {
			v, err := mapstructure.DecodeHookExec(h, f, t)
			if err == nil {
				return v, nil
			}
			if errors.Is(err, errInvalidDecodeCondition) {
				continue
			}
			return nil, TypeCoercionError{
				from:  f,
				to:    t,
				Cause: err,
			}
		}
		return f.Interface(), nil
	}
}

func textUnmarshalerHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return nil, errInvalidDecodeCondition
		}
		s, ok := data.(string)
		if !ok {
			return nil, errInvalidDecodeCondition
		}
		result := reflect.New(t).Interface()
		u, ok := result.(encoding.TextUnmarshaler)
		if !ok {
			return nil, errInvalidDecodeCondition
		}
		err := u.UnmarshalText([]byte(s))
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}

func timeDurationHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(time.Duration(0)) {
			return nil, errInvalidDecodeCondition
		}

		switch x := data.(type) {
		case string:
			return time.ParseDuration(x)
		case int:
			return time.Duration(int64(x)), nil
		case int64:
			return time.Duration(x), nil
		default:
			return nil, errInvalidDecodeCondition
		}
	}
}
