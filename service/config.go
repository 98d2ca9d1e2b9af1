// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/z5labs/userform/intake"
	"github.com/z5labs/userform/pkg/maskslog"
	"github.com/z5labs/userform/pkg/otelconfig"
	"github.com/z5labs/userform/user"
)

// Config is decoded from the embedded config.yaml, any
// override files and USERFORM_ prefixed environment variables.
type Config struct {
	Logging struct {
		Level slog.Level `config:"level"`
	} `config:"logging"`

	OTel otelconfig.Config `config:"otel"`

	Intake struct {
		Mode intake.Mode `config:"mode"`
	} `config:"intake"`

	Http struct {
		Port            uint          `config:"port"`
		ShutdownTimeout time.Duration `config:"shutdown_timeout"`
		MaxBodyBytes    int64         `config:"max_body_bytes"`
	} `config:"http"`

	Forward struct {
		Url     string        `config:"url"`
		Retries int           `config:"retries"`
		Timeout time.Duration `config:"timeout"`
	} `config:"forward"`

	Queue QueueConfig `config:"queue"`
}

// QueueConfig
type QueueConfig struct {
	MaxConcurrentProcessors uint `config:"max_concurrent_processors"`

	Sqs struct {
		QueueUrl          string `config:"queue_url"`
		Region            string `config:"region"`
		Endpoint          string `config:"endpoint"`
		MaxNumOfMessages  int32  `config:"max_num_of_messages"`
		VisibilityTimeout int32  `config:"visibility_timeout"`
		WaitTimeSeconds   int32  `config:"wait_time_seconds"`
	} `config:"sqs"`

	PubSub struct {
		Subscription     string `config:"subscription"`
		MaxNumOfMessages int32  `config:"max_num_of_messages"`

		// Endpoint points the client at an emulator. Requests are sent
		// without authentication over plaintext gRPC when it is set.
		Endpoint string `config:"endpoint"`
	} `config:"pubsub"`

	Kafka struct {
		Brokers []string `config:"brokers"`
		Topic   string   `config:"topic"`
		GroupId string   `config:"group_id"`
	} `config:"kafka"`
}

// InitializeOTel implements the [appbuilder.OTelInitializer] interface.
func (cfg Config) InitializeOTel(ctx context.Context) error {
	i, err := cfg.OTel.Initializer()
	if err != nil {
		return err
	}
	return otelconfig.Setup(ctx, i)
}

// LogHandler returns the JSON handler every component logs through.
// Email addresses are masked before they are written.
func (cfg Config) LogHandler(w io.Writer) slog.Handler {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     cfg.Logging.Level,
		AddSource: true,
	})
	return maskslog.NewHandler(h, maskslog.Attr(user.FieldEmail, maskslog.EmailAttr))
}
