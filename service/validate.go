// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package service

import (
	"context"
	"encoding/json"
	"io"
	"net/url"

	"github.com/z5labs/userform"
	"github.com/z5labs/userform/api"
	"github.com/z5labs/userform/gateway"
	"github.com/z5labs/userform/intake"
)

// Validate returns the builder for the one-shot application which
// validates a single form and writes the outcome as JSON. A rejected
// form makes Run return an [api.RejectedError] after the outcome is written.
func Validate(form url.Values, opts ...Option) userform.AppBuilder[Config] {
	o := newOptions(opts...)

	return userform.AppBuilderFunc[Config](func(ctx context.Context, cfg Config) (userform.App, error) {
		logHandler := cfg.LogHandler(o.out)
		a := &validateApp{
			gw:   newGateway(cfg, logHandler, o.registry, "cli"),
			form: form,
			mode: cfg.Intake.Mode,
			out:  o.results,
		}
		return a, nil
	})
}

type validateApp struct {
	gw   *gateway.Gateway
	form url.Values
	mode intake.Mode
	out  io.Writer
}

// Run implements the [userform.App] interface.
func (a *validateApp) Run(ctx context.Context) error {
	c := intake.FromValues(a.form, intake.WithMode(a.mode))

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")

	switch x := a.gw.Validate(ctx, c).(type) {
	case gateway.Validated:
		return enc.Encode(api.ParseResponse{Success: true, Data: x.User})
	case gateway.Rejected:
		err := enc.Encode(api.RejectionBody{Success: false, Issues: x.Issues})
		if err != nil {
			return err
		}
		return api.RejectedError{Issues: x.Issues}
	}
	return nil
}
