// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/z5labs/userform/rest/endpoint"
	"github.com/z5labs/userform/rest/mux"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type echoForm struct {
	Msg string `json:"msg"`
}

type echoResponse struct {
	Msg string `json:"msg"`
}

func echoEndpoint() Endpoint {
	return Endpoint{
		Method:  mux.MethodPost,
		Pattern: "/echo",
		Operation: endpoint.NewOperation[endpoint.FormRequest[echoForm], endpoint.JsonResponse[echoResponse], *endpoint.FormRequest[echoForm], *endpoint.JsonResponse[echoResponse]](
			endpoint.ProducesJson[endpoint.FormRequest[echoForm], echoResponse](
				endpoint.ConsumesForm[echoForm, echoResponse](
					endpoint.HandlerFunc[url.Values, echoResponse](func(_ context.Context, v *url.Values) (*echoResponse, error) {
						return &echoResponse{Msg: v.Get("msg")}, nil
					}),
				),
			),
			endpoint.Summary("echo"),
		),
	}
}

func newTestApp(t *testing.T, opts ...Option) http.Handler {
	app := NewApp(append([]Option{
		Title("Echo"),
		Version("v0.0.0"),
		OpenApiEndpoint(mux.MethodGet, "/openapi.json", OpenApiJsonHandler),
		OpenApiEndpoint(mux.MethodGet, "/openapi.yaml", OpenApiYamlHandler),
		Register(echoEndpoint()),
	}, opts...)...)

	h, err := app.Handler()
	require.Nil(t, err)
	return h
}

func TestApp_Run(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if it fails to create a listener", func(t *testing.T) {
			app := NewApp()

			listenErr := errors.New("failed to listen")
			app.listen = func(network, addr string) (net.Listener, error) {
				return nil, listenErr
			}

			err := app.Run(context.Background())
			if !assert.ErrorIs(t, err, listenErr) {
				return
			}
		})
	})

	t.Run("will not return an error", func(t *testing.T) {
		t.Run("if the context.Context is cancelled", func(t *testing.T) {
			app := NewApp(ListenOn(0))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := app.Run(ctx)
			if !assert.Nil(t, err) {
				return
			}
		})
	})
}

func TestApp_Handler(t *testing.T) {
	t.Run("will serve registered endpoints", func(t *testing.T) {
		t.Run("if the request matches the endpoint", func(t *testing.T) {
			srv := httptest.NewServer(newTestApp(t))
			defer srv.Close()

			resp, err := http.PostForm(srv.URL+"/echo", url.Values{"msg": {"hello, world"}})
			if !assert.Nil(t, err) {
				return
			}
			defer resp.Body.Close()

			var echo echoResponse
			err = json.NewDecoder(resp.Body).Decode(&echo)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, "hello, world", echo.Msg) {
				return
			}
		})
	})

	t.Run("will serve plain handlers", func(t *testing.T) {
		t.Run("if they are registered with Handle", func(t *testing.T) {
			h := newTestApp(t, Handle(mux.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, "page")
			})))

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			if !assert.Equal(t, "page", w.Body.String()) {
				return
			}
		})
	})

	t.Run("will apply middleware", func(t *testing.T) {
		t.Run("if it is configured", func(t *testing.T) {
			h := newTestApp(t, Middleware(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("X-Wrapped", "true")
					next.ServeHTTP(w, r)
				})
			}))

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

			if !assert.Equal(t, "true", w.Result().Header.Get("X-Wrapped")) {
				return
			}
		})
	})

	t.Run("will respond with a JSON error", func(t *testing.T) {
		t.Run("if no endpoint matches the path", func(t *testing.T) {
			h := newTestApp(t)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

			resp := w.Result()
			if !assert.Equal(t, http.StatusNotFound, resp.StatusCode) {
				return
			}

			var body endpoint.ErrorBody
			err := json.NewDecoder(resp.Body).Decode(&body)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, "not found", body.Error) {
				return
			}
		})

		t.Run("if the method is not registered for the path", func(t *testing.T) {
			h := newTestApp(t)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo", nil))

			if !assert.Equal(t, http.StatusMethodNotAllowed, w.Result().StatusCode) {
				return
			}
		})
	})
}

func TestOpenApiHandlers(t *testing.T) {
	t.Run("will serve the OpenAPI document as JSON", func(t *testing.T) {
		h := newTestApp(t)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

		resp := w.Result()
		if !assert.Equal(t, http.StatusOK, resp.StatusCode) {
			return
		}

		var doc map[string]any
		err := json.NewDecoder(resp.Body).Decode(&doc)
		if !assert.Nil(t, err) {
			return
		}
		if !assert.Equal(t, "3.0.3", doc["openapi"]) {
			return
		}

		paths, ok := doc["paths"].(map[string]any)
		if !assert.True(t, ok) {
			return
		}
		if !assert.Contains(t, paths, "/echo") {
			return
		}
		if !assert.NotContains(t, paths, "/openapi.json") {
			return
		}
	})

	t.Run("will serve the OpenAPI document as YAML", func(t *testing.T) {
		h := newTestApp(t)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

		resp := w.Result()
		if !assert.Equal(t, http.StatusOK, resp.StatusCode) {
			return
		}
		if !assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type")) {
			return
		}

		b, err := io.ReadAll(resp.Body)
		if !assert.Nil(t, err) {
			return
		}
		if !assert.Contains(t, string(b), "openapi: 3.0.3") {
			return
		}

		var doc struct {
			Info struct {
				Title string `yaml:"title"`
			} `yaml:"info"`
			Paths map[string]any `yaml:"paths"`
		}
		err = yaml.Unmarshal(b, &doc)
		if !assert.Nil(t, err) {
			return
		}
		if !assert.Equal(t, "Echo", doc.Info.Title) {
			return
		}
		if !assert.Contains(t, doc.Paths, "/echo") {
			return
		}
	})
}
