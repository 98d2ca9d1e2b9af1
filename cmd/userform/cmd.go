// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/z5labs/userform"
	"github.com/z5labs/userform/api"
	"github.com/z5labs/userform/appbuilder"
	"github.com/z5labs/userform/config"
	"github.com/z5labs/userform/intake"
	"github.com/z5labs/userform/service"

	"github.com/spf13/cobra"
)

//go:embed config.yaml
var configDir embed.FS

const envPrefix = "USERFORM"

type flags struct {
	configFiles []string
	envFile     string
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:           "userform",
		Short:         "Validate user forms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringSliceVar(&f.configFiles, "config", nil, "yaml files overriding the default config, applied in order")
	cmd.PersistentFlags().StringVar(&f.envFile, "env-file", "", ".env file with "+envPrefix+"_ prefixed variables")

	cmd.AddCommand(
		serveCmd(f),
		consumeCmd(f),
		validateCmd(f),
	)
	return cmd
}

func serveCmd(f *flags) *cobra.Command {
	var consume string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form page and parse endpoint over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if consume == "" {
				return run(cmd, f, service.Http(service.Output(cmd.OutOrStdout())))
			}

			q, ok := queueBuilders[consume]
			if !ok {
				return fmt.Errorf("unknown queue: %s", consume)
			}
			reg := service.NewRegistry()
			return run(cmd, f, service.Concurrently(
				service.Http(service.Output(cmd.OutOrStdout()), service.Registry(reg)),
				q.builder(service.Output(cmd.OutOrStdout()), service.Registry(reg)),
			))
		},
	}
	cmd.Flags().StringVar(&consume, "consume", "", "also consume forms from a queue: sqs, pubsub or kafka")
	return cmd
}

type queueBuilder struct {
	short   string
	builder func(...service.Option) userform.AppBuilder[service.Config]
}

var queueBuilders = map[string]queueBuilder{
	"sqs":    {short: "Consume forms from AWS SQS", builder: service.Sqs},
	"pubsub": {short: "Consume forms from a Google Cloud PubSub subscription", builder: service.PubSub},
	"kafka":  {short: "Consume forms from a Kafka topic", builder: service.Kafka},
}

func consumeCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Validate url-encoded forms consumed from a queue",
	}

	for name, q := range queueBuilders {
		cmd.AddCommand(&cobra.Command{
			Use:   name,
			Short: q.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, f, q.builder(service.Output(cmd.OutOrStdout())))
			},
		})
	}
	return cmd
}

func run(cmd *cobra.Command, f *flags, builder userform.AppBuilder[service.Config]) error {
	srcs, err := f.sources()
	if err != nil {
		return err
	}

	return userform.Run(
		cmd.Context(),
		appbuilder.Recover(
			appbuilder.Lifecycle(
				appbuilder.OTel(builder),
			),
		),
		srcs...,
	)
}

func validateCmd(f *flags) *cobra.Command {
	var (
		form      = make(map[string]*string)
		fromStdin bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a single form and print the outcome as JSON",
		Long: "Validate a single form given as flags or as an url-encoded body on stdin.\n" +
			"Exits with status 1 if the form is rejected.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vals := url.Values{}
			if fromStdin {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				vals, err = url.ParseQuery(string(bytes.TrimSpace(b)))
				if err != nil {
					return err
				}
			}
			for field, v := range form {
				if cmd.Flags().Changed(flagName(field)) {
					vals.Set(field, *v)
				}
			}

			srcs, err := f.sources()
			if err != nil {
				return err
			}

			builder := appbuilder.FromConfig(
				appbuilder.Recover(
					service.Validate(
						vals,
						service.Output(cmd.ErrOrStderr()),
						service.Results(cmd.OutOrStdout()),
					),
				),
			)
			app, err := builder.Build(cmd.Context(), chain(srcs))
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}

	for _, field := range []string{
		intake.FormFieldID,
		intake.FormFieldName,
		intake.FormFieldEmail,
		intake.FormFieldCreatedAt,
		intake.FormFieldUpdatedAt,
	} {
		form[field] = cmd.Flags().String(flagName(field), "", fmt.Sprintf("value of the %s form field", field))
	}
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read an url-encoded form from stdin, flags override its fields")
	return cmd
}

// flagName turns a form field like userCreatedAt into created-at.
func flagName(field string) string {
	var b []byte
	for i, r := range field[len("user"):] {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b = append(b, '-')
			}
			r += 'a' - 'A'
		}
		b = append(b, byte(r))
	}
	return string(b)
}

func (f *flags) sources() ([]config.Source, error) {
	srcs := []config.Source{
		config.FromYaml(
			config.RenderTextTemplate(
				config.NewFileReader(configDir, "config.yaml"),
			),
		),
	}
	for _, name := range f.configFiles {
		srcs = append(srcs, config.FromYaml(
			config.RenderTextTemplate(
				config.NewFileReader(os.DirFS(filepath.Dir(name)), filepath.Base(name)),
			),
		))
	}
	if f.envFile != "" {
		b, err := os.ReadFile(f.envFile)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, config.FromDotenv(bytes.NewReader(b), config.EnvPrefix(envPrefix)))
	}
	srcs = append(srcs, config.FromEnv(config.EnvPrefix(envPrefix)))
	return srcs, nil
}

func chain(srcs []config.Source) config.Source {
	return config.SourceFunc(func(store config.Store) error {
		for _, src := range srcs {
			err := src.Apply(store)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// rejected forms were already reported on stdout.
func rejected(err error) bool {
	var rerr api.RejectedError
	return errors.As(err, &rerr)
}
