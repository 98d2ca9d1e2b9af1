// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/z5labs/userform/api"
	"github.com/z5labs/userform/intake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleArgs = []string{
	"--id", "3fa85f64-5717-4562-b3fc-2c963f66afa6",
	"--name", "John",
	"--email", "john@x.com",
	"--created-at", "2024-01-01T00:00:00Z",
	"--updated-at", "2024-01-02T00:00:00Z",
}

func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	cmd := newRootCmd()
	cmd.SetArgs(args)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	if stdin != nil {
		cmd.SetIn(stdin)
	}

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte(content), 0o600)
	require.Nil(t, err)
	return path
}

func TestValidateCmd(t *testing.T) {
	t.Run("will print the validated user", func(t *testing.T) {
		t.Run("if a config file enables symmetric mode", func(t *testing.T) {
			cfgFile := writeFile(t, "override.yaml", "intake:\n  mode: symmetric\n")

			out, err := execute(t, nil, append([]string{"validate", "--config", cfgFile}, sampleArgs...)...)
			if !assert.Nil(t, err) {
				return
			}

			var resp api.ParseResponse
			err = json.Unmarshal([]byte(out), &resp)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.True(t, resp.Success) {
				return
			}
			if !assert.Equal(t, "John", resp.Data.Name) {
				return
			}
		})

		t.Run("if an environment variable enables symmetric mode", func(t *testing.T) {
			t.Setenv("USERFORM_INTAKE__MODE", "symmetric")

			_, err := execute(t, nil, append([]string{"validate"}, sampleArgs...)...)
			if !assert.Nil(t, err) {
				return
			}
		})

		t.Run("if an env file enables symmetric mode", func(t *testing.T) {
			envFile := writeFile(t, ".env", "USERFORM_INTAKE__MODE=symmetric\n")

			_, err := execute(t, nil, append([]string{"validate", "--env-file", envFile}, sampleArgs...)...)
			if !assert.Nil(t, err) {
				return
			}
		})

		t.Run("if the form is read from stdin", func(t *testing.T) {
			cfgFile := writeFile(t, "override.yaml", "intake:\n  mode: symmetric\n")
			body := strings.Join([]string{
				intake.FormFieldID + "=3fa85f64-5717-4562-b3fc-2c963f66afa6",
				intake.FormFieldName + "=Jane",
				intake.FormFieldEmail + "=jane%40x.com",
				intake.FormFieldCreatedAt + "=2024-01-01",
				intake.FormFieldUpdatedAt + "=2024-01-02",
			}, "&")

			out, err := execute(t, strings.NewReader(body+"\n"), "validate", "--stdin", "--config", cfgFile, "--name", "Joan")
			if !assert.Nil(t, err) {
				return
			}

			var resp api.ParseResponse
			err = json.Unmarshal([]byte(out), &resp)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, "Joan", resp.Data.Name) {
				return
			}
			if !assert.Equal(t, "jane@x.com", resp.Data.Email) {
				return
			}
		})
	})

	t.Run("will return a rejected error", func(t *testing.T) {
		t.Run("if updatedAt is passed through as is", func(t *testing.T) {
			out, err := execute(t, nil, append([]string{"validate"}, sampleArgs...)...)
			if !assert.True(t, rejected(err)) {
				return
			}

			var body api.RejectionBody
			err = json.Unmarshal([]byte(out), &body)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.False(t, body.Success) {
				return
			}
			if !assert.Len(t, body.Issues, 1) {
				return
			}
		})

		t.Run("if no fields are given", func(t *testing.T) {
			_, err := execute(t, nil, "validate")
			if !assert.True(t, rejected(err)) {
				return
			}
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if a config file does not exist", func(t *testing.T) {
			_, err := execute(t, nil, "validate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
			if !assert.NotNil(t, err) {
				return
			}
			if !assert.False(t, rejected(err)) {
				return
			}
		})

		t.Run("if the env file does not exist", func(t *testing.T) {
			_, err := execute(t, nil, "validate", "--env-file", filepath.Join(t.TempDir(), ".env"))
			if !assert.ErrorIs(t, err, os.ErrNotExist) {
				return
			}
		})
	})
}

func TestConsumeCmd(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the sqs queue is not configured", func(t *testing.T) {
			_, err := execute(t, nil, "consume", "sqs")
			if !assert.ErrorContains(t, err, "queue.sqs.queue_url") {
				return
			}
		})

		t.Run("if the kafka brokers are not configured", func(t *testing.T) {
			_, err := execute(t, nil, "consume", "kafka")
			if !assert.ErrorContains(t, err, "queue.kafka.brokers") {
				return
			}
		})
	})
}

func TestServeCmd(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the queue to consume is unknown", func(t *testing.T) {
			_, err := execute(t, nil, "serve", "--consume", "carrier-pigeon")
			if !assert.ErrorContains(t, err, "unknown queue") {
				return
			}
		})

		t.Run("if the queue to consume is not configured", func(t *testing.T) {
			_, err := execute(t, nil, "serve", "--consume", "pubsub")
			if !assert.ErrorContains(t, err, "queue.pubsub.subscription") {
				return
			}
		})
	})
}

func TestFlagName(t *testing.T) {
	testCases := map[string]string{
		intake.FormFieldID:        "id",
		intake.FormFieldName:      "name",
		intake.FormFieldEmail:     "email",
		intake.FormFieldCreatedAt: "created-at",
		intake.FormFieldUpdatedAt: "updated-at",
	}
	for field, want := range testCases {
		t.Run("will convert "+field, func(t *testing.T) {
			if !assert.Equal(t, want, flagName(field)) {
				return
			}
		})
	}
}
