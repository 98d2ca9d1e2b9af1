// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command userform validates user forms submitted over HTTP,
// from a queue or from the command line.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/z5labs/userform/pkg/slogfield"
)

func main() {
	cmd := newRootCmd()
	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return
	}
	if !rejected(err) {
		log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
		log.Error("failed to run", slogfield.Error(err))
	}
	os.Exit(1)
}
