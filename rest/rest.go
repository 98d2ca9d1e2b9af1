// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package rest serves HTTP endpoints which describe themselves with an OpenAPI document.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/z5labs/userform/pkg/noop"
	"github.com/z5labs/userform/pkg/otelslog"
	"github.com/z5labs/userform/pkg/slogfield"
	"github.com/z5labs/userform/rest/endpoint"
	"github.com/z5labs/userform/rest/mux"

	"github.com/swaggest/openapi-go/openapi3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Option represents configurable attributes of [App].
type Option func(*App)

// Listener allows you to configure the [net.Listener] for
// the underlying [http.Server] to use for serving requests.
//
// If this option is not supplied, then [net.Listen] will be
// used to create a [net.Listener] for "tcp" and address ":80".
func Listener(ls net.Listener) Option {
	return func(a *App) {
		a.ls = ls
	}
}

// ListenOn configures the port the [App] listens on when no
// [net.Listener] has been provided.
func ListenOn(port uint) Option {
	return func(a *App) {
		a.addr = fmt.Sprintf(":%d", port)
	}
}

// ShutdownTimeout bounds how long in-flight requests are given to
// complete once the [App] is asked to stop.
func ShutdownTimeout(d time.Duration) Option {
	return func(a *App) {
		a.shutdownTimeout = d
	}
}

// LogHandler
func LogHandler(h slog.Handler) Option {
	return func(a *App) {
		a.log = slog.New(otelslog.NewHandler(h))
	}
}

// OpenApiEndpoint registers a [http.Handler] with the underlying [http.ServeMux]
// meant for serving the OpenAPI schema.
func OpenApiEndpoint(method mux.Method, pattern string, f func(*openapi3.Spec) http.Handler) Option {
	return func(a *App) {
		a.openApiEndpoints = append(a.openApiEndpoints, func(m Mux) {
			m.Handle(method, pattern, f(a.spec))
		})
	}
}

type openApiHandler struct {
	spec        *openapi3.Spec
	contentType string
	marshal     func(*openapi3.Spec) ([]byte, error)
}

func (h openApiHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, err := h.marshal(h.spec)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", h.contentType)
	_, _ = io.Copy(w, bytes.NewReader(b))
}

// OpenApiJsonHandler returns an [http.Handler] which will respond with the OpenAPI schema as JSON.
func OpenApiJsonHandler(spec *openapi3.Spec) http.Handler {
	return openApiHandler{
		spec:        spec,
		contentType: "application/json",
		marshal: func(s *openapi3.Spec) ([]byte, error) {
			return json.Marshal(s)
		},
	}
}

// OpenApiYamlHandler returns an [http.Handler] which will respond with the OpenAPI schema as YAML.
func OpenApiYamlHandler(spec *openapi3.Spec) http.Handler {
	return openApiHandler{
		spec:        spec,
		contentType: "application/yaml",
		marshal:     marshalYaml,
	}
}

// marshalYaml goes through JSON so the custom marshalers of the
// openapi3 types decide the document shape. Decoding into a [yaml.Node]
// keeps the key order of the JSON document.
func marshalYaml(spec *openapi3.Spec) ([]byte, error) {
	b, err := json.Marshal(spec)
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	err = yaml.Unmarshal(b, &node)
	if err != nil {
		return nil, err
	}
	clearStyle(&node)
	return yaml.Marshal(&node)
}

// JSON is decoded by yaml.v3 as flow style so reset it to block style.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

// Operation represents anything that can handle HTTP requests
// and provide OpenAPI documentation for itself.
type Operation interface {
	http.Handler

	OpenApi() openapi3.Operation
}

// Endpoint represents all information necessary for registering
// an [Operation] with a [App].
type Endpoint struct {
	Method    mux.Method
	Pattern   string
	Operation Operation
}

// Register registers the [Endpoint] with both
// the App wide OpenAPI spec and the App wide HTTP server.
//
// "/" is always treated as "/{$}" because it would otherwise
// match too broadly and cause conflicts with other paths.
func Register(e Endpoint) Option {
	return func(app *App) {
		app.endpoints = append(app.endpoints, e)
	}
}

// Handle registers a plain [http.Handler] which is served but
// not documented in the OpenAPI spec e.g. health checks or static pages.
func Handle(method mux.Method, pattern string, h http.Handler) Option {
	return func(app *App) {
		app.handlers = append(app.handlers, Endpoint{
			Method:  method,
			Pattern: pattern,
			Operation: undocumented{
				Handler: h,
			},
		})
	}
}

type undocumented struct {
	http.Handler
}

func (undocumented) OpenApi() openapi3.Operation {
	return openapi3.Operation{}
}

// Middleware wraps the whole mux, outermost last.
func Middleware(f func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.middleware = append(a.middleware, f)
	}
}

// Title sets the title of the API in its OpenAPI spec.
//
// In order for your OpenAPI spec to be fully compliant
// with other tooling, this option is required.
func Title(s string) Option {
	return func(a *App) {
		a.spec.Info.Title = s
	}
}

// Version sets the API version in its OpenAPI spec.
//
// In order for your OpenAPI spec to be fully compliant
// with other tooling, this option is required.
func Version(s string) Option {
	return func(a *App) {
		a.spec.Info.Version = s
	}
}

// Mux
type Mux interface {
	http.Handler

	Handle(method mux.Method, pattern string, h http.Handler)
}

// WithMux
func WithMux(m Mux) Option {
	return func(a *App) {
		a.mux = m
	}
}

// App serves the registered endpoints over HTTP.
type App struct {
	log *slog.Logger

	ls              net.Listener
	addr            string
	shutdownTimeout time.Duration

	spec       *openapi3.Spec
	mux        Mux
	endpoints  []Endpoint
	handlers   []Endpoint
	middleware []func(http.Handler) http.Handler

	openApiEndpoints []func(Mux)

	initOnce sync.Once
	handler  http.Handler
	initErr  error

	listen func(network, addr string) (net.Listener, error)
}

// NewApp initializes a [App].
func NewApp(opts ...Option) *App {
	app := &App{
		log:  slog.New(otelslog.NewHandler(noop.LogHandler{})),
		addr: ":80",
		spec: &openapi3.Spec{
			Openapi: "3.0.3",
		},
		mux:             mux.NewHttp(mux.NotFoundHandler(notFound), mux.MethodNotAllowedHandler(methodNotAllowed)),
		shutdownTimeout: 10 * time.Second,
		listen:          net.Listen,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

var (
	notFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint.WriteJson(w, http.StatusNotFound, endpoint.ErrorBody{Error: "not found"})
	})

	methodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint.WriteJson(w, http.StatusMethodNotAllowed, endpoint.ErrorBody{Error: "method not allowed"})
	})
)

// Handler returns the fully registered and instrumented [http.Handler].
// Registration only happens once.
func (app *App) Handler() (http.Handler, error) {
	app.initOnce.Do(func() {
		for _, f := range app.openApiEndpoints {
			f(app.mux)
		}

		app.initErr = app.registerEndpoints()
		if app.initErr != nil {
			return
		}
		app.registerHandlers()

		var h http.Handler = app.mux
		for _, m := range app.middleware {
			h = m(h)
		}
		app.handler = otelhttp.NewHandler(
			h,
			"server",
			otelhttp.WithMessageEvents(otelhttp.ReadEvents, otelhttp.WriteEvents),
		)
	})
	return app.handler, app.initErr
}

// Run implements the [userform.App] interface.
func (app *App) Run(ctx context.Context) error {
	ls, err := app.listener()
	if err != nil {
		return err
	}

	h, err := app.Handler()
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Handler: h,
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		app.log.InfoContext(egctx, "serving http", slogfield.String("addr", ls.Addr().String()))
		return httpServer.Serve(ls)
	})
	eg.Go(func() error {
		<-egctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(egctx), app.shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = eg.Wait()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (app *App) listener() (net.Listener, error) {
	if app.ls != nil {
		return app.ls, nil
	}
	return app.listen("tcp", app.addr)
}

func (app *App) registerEndpoints() error {
	for _, e := range app.endpoints {
		// Per the net/http.ServeMux docs, https://pkg.go.dev/net/http#ServeMux:
		//
		// 		The special wildcard {$} matches only the end of the URL.
		//      For example, the pattern "/{$}" matches only the path "/",
		//      whereas the pattern "/" matches every path.
		//
		// This means that when registering the pattern with the OpenAPI spec
		// the {$} needs to be stripped because OpenAPI will believe it's
		// an actual path parameter.
		trimmedPattern := strings.TrimSuffix(e.Pattern, "{$}")

		// Per the net/http.ServeMux docs, https://pkg.go.dev/net/http#ServeMux:
		//
		//      A path can include wildcard segments of the form {NAME} or {NAME...}.
		//
		// The '...' wildcard has no equivalent in OpenAPI so we must remove it
		// before registering the OpenAPI operation with the spec.
		trimmedPattern = strings.ReplaceAll(trimmedPattern, "...", "")

		err := app.spec.AddOperation(strings.ToLower(string(e.Method)), trimmedPattern, e.Operation.OpenApi())
		if err != nil {
			return err
		}

		app.mux.Handle(
			e.Method,
			strictRoot(e.Pattern),
			otelhttp.WithRouteTag(trimmedPattern, e.Operation),
		)
	}
	return nil
}

func (app *App) registerHandlers() {
	for _, e := range app.handlers {
		app.mux.Handle(
			e.Method,
			strictRoot(e.Pattern),
			otelhttp.WithRouteTag(strings.TrimSuffix(e.Pattern, "{$}"), e.Operation),
		)
	}
}

// enforce strict matching for top-level path
// otherwise "/" would match too broadly and http.ServeMux
// will panic when other paths are registered e.g. /openapi.json
func strictRoot(pattern string) string {
	if pattern == "/" {
		return "/{$}"
	}
	return pattern
}
