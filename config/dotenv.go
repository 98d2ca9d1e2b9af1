// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"io"

	"github.com/z5labs/userform/internal/try"

	"github.com/joho/godotenv"
)

// Dotenv represents a Source where its underlying format is a .env file.
type Dotenv struct {
	r    io.Reader
	opts envOptions
}

// FromDotenv returns a Source which will apply its config from the
// KEY=value pairs parsed from the given io.Reader. Keys are mapped the
// same way as FromEnv maps environment variables.
func FromDotenv(r io.Reader, opts ...EnvOption) Dotenv {
	src := Dotenv{r: r}
	for _, opt := range opts {
		opt(&src.opts)
	}
	return src
}

// InvalidDotenvError occurs if the underlying io.Reader contains an invalid .env file.
type InvalidDotenvError struct {
	Cause error
}

// Error implements the error interface.
func (e InvalidDotenvError) Error() string {
	return fmt.Sprintf("invalid dotenv: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e InvalidDotenvError) Unwrap() error {
	return e.Cause
}

// Apply implements the Source interface.
func (src Dotenv) Apply(store Store) (err error) {
	defer try.Close(&err, src.r)

	vars, err := godotenv.Parse(src.r)
	if err != nil {
		return InvalidDotenvError{Cause: err}
	}
	return src.opts.apply(store, vars)
}
