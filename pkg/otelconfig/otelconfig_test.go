// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelconfig

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestConfig_Initializer(t *testing.T) {
	t.Run("will return the noop initializer", func(t *testing.T) {
		t.Run("if no exporter is configured", func(t *testing.T) {
			i, err := Config{}.Initializer()
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, Noop, i) {
				return
			}
		})
	})

	t.Run("will return the matching initializer", func(t *testing.T) {
		testCases := []struct {
			Name string
			Cfg  Config
			Want Initializer
		}{
			{
				Name: "local",
				Cfg:  Config{Exporter: "LOCAL"},
				Want: LocalConfig{},
			},
			{
				Name: "otlp",
				Cfg:  Config{Exporter: ExporterOTLP, Target: "localhost:4317"},
				Want: OTLPConfig{},
			},
			{
				Name: "google cloud",
				Cfg:  Config{Exporter: ExporterGoogleCloud, ProjectId: "p"},
				Want: GoogleCloudConfig{},
			},
		}

		for _, testCase := range testCases {
			t.Run("if the exporter is "+testCase.Name, func(t *testing.T) {
				i, err := testCase.Cfg.Initializer()
				if !assert.Nil(t, err) {
					return
				}
				if !assert.IsType(t, testCase.Want, i) {
					return
				}
			})
		}
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the exporter is unknown", func(t *testing.T) {
			_, err := Config{Exporter: "jaeger"}.Initializer()

			var uerr UnknownExporterError
			if !assert.ErrorAs(t, err, &uerr) {
				return
			}
			if !assert.Equal(t, "jaeger", uerr.Exporter) {
				return
			}
		})
	})
}

func TestLocalConfig_Init(t *testing.T) {
	t.Run("will write spans to the writer", func(t *testing.T) {
		t.Run("if the tracer provider is shutdown", func(t *testing.T) {
			var buf bytes.Buffer
			tp, err := Local(ServiceName("userform"), Writer(&buf)).Init(context.Background())
			if !assert.Nil(t, err) {
				return
			}

			_, span := tp.Tracer("test").Start(context.Background(), "validate")
			span.End()

			err = tp.(*sdktrace.TracerProvider).Shutdown(context.Background())
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Contains(t, buf.String(), `"Name":"validate"`) {
				return
			}
			if !assert.Contains(t, buf.String(), "userform") {
				return
			}
		})
	})
}

func TestOTLPConfig_Init(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the collector cannot be reached in time", func(t *testing.T) {
			i := OTLP(OTLPTarget("127.0.0.1:1"), OTLPDialTimeout(50*time.Millisecond))

			_, err := i.Init(context.Background())
			if !assert.Error(t, err) {
				return
			}
		})
	})
}
