// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"os"
	"strings"

	"github.com/z5labs/userform/config/key"
)

type envOptions struct {
	prefix string
}

// EnvOption configures how environment style variables are mapped to keys.
type EnvOption func(*envOptions)

// EnvPrefix only keeps variables which start with prefix followed by an
// underscore. The prefix is stripped, the rest is lower cased and split on
// double underscores into a key chain, e.g. USERFORM_INTAKE__MODE becomes
// intake.mode.
func EnvPrefix(prefix string) EnvOption {
	return func(eo *envOptions) {
		eo.prefix = prefix
	}
}

func (eo envOptions) keyOf(name string) (key.Keyer, bool) {
	if eo.prefix == "" {
		return key.Name(name), true
	}

	rest, ok := strings.CutPrefix(name, eo.prefix+"_")
	if !ok || rest == "" {
		return nil, false
	}
	return key.Chain(strings.Split(strings.ToLower(rest), "__")), true
}

func (eo envOptions) apply(store Store, vars map[string]string) error {
	for name, v := range vars {
		k, ok := eo.keyOf(name)
		if !ok {
			continue
		}
		err := store.Set(k, v)
		if err != nil {
			return err
		}
	}
	return nil
}

// Env represents a Source where its underlying values
// are extracted from environment variables.
type Env struct {
	environ func() []string
	opts    envOptions
}

// FromEnv returns a Source which will apply its config
// from the environment variables available to the
// current process.
func FromEnv(opts ...EnvOption) Env {
	src := Env{
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(&src.opts)
	}
	return src
}

// Apply implements the Source interface.
func (src Env) Apply(store Store) error {
	vars := make(map[string]string)
	for _, pair := range src.environ() {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		vars[k] = v
	}
	return src.opts.apply(store, vars)
}
