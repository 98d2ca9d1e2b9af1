// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type greetingForm struct {
	Name string `json:"name"`
}

type greeting struct {
	Message string `json:"message"`
}

type teapotError struct{}

func (teapotError) Error() string { return "teapot" }

func (teapotError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
}

func greeter(f func(context.Context, *url.Values) (*greeting, error), opts ...Option) *Operation[FormRequest[greetingForm], JsonResponse[greeting], *FormRequest[greetingForm], *JsonResponse[greeting]] {
	return NewOperation[FormRequest[greetingForm], JsonResponse[greeting], *FormRequest[greetingForm], *JsonResponse[greeting]](
		ProducesJson[FormRequest[greetingForm], greeting](
			ConsumesForm[greetingForm, greeting](HandlerFunc[url.Values, greeting](f)),
		),
		opts...,
	)
}

func hello(_ context.Context, values *url.Values) (*greeting, error) {
	return &greeting{Message: "hello, " + values.Get("name")}, nil
}

func formRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestOperation_ServeHTTP(t *testing.T) {
	t.Run("will return the default success http status code", func(t *testing.T) {
		t.Run("if the underlying Handler succeeds", func(t *testing.T) {
			op := greeter(hello)

			w := httptest.NewRecorder()
			op.ServeHTTP(w, formRequest("name=bob"))

			resp := w.Result()
			if !assert.Equal(t, DefaultStatusCode, resp.StatusCode) {
				return
			}
			if !assert.Equal(t, "application/json", resp.Header.Get("Content-Type")) {
				return
			}

			var g greeting
			err := json.NewDecoder(resp.Body).Decode(&g)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, "hello, bob", g.Message) {
				return
			}
		})

		t.Run("if the content type carries parameters", func(t *testing.T) {
			op := greeter(hello)

			r := formRequest("name=bob")
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
			w := httptest.NewRecorder()
			op.ServeHTTP(w, r)

			if !assert.Equal(t, http.StatusOK, w.Result().StatusCode) {
				return
			}
		})
	})

	t.Run("will return the configured status code", func(t *testing.T) {
		t.Run("if StatusCode is set", func(t *testing.T) {
			op := greeter(hello, StatusCode(http.StatusCreated))

			w := httptest.NewRecorder()
			op.ServeHTTP(w, formRequest("name=bob"))

			if !assert.Equal(t, http.StatusCreated, w.Result().StatusCode) {
				return
			}
		})
	})

	t.Run("will return 415", func(t *testing.T) {
		t.Run("if the request is not form encoded", func(t *testing.T) {
			op := greeter(hello)

			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"bob"}`))
			r.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			op.ServeHTTP(w, r)

			resp := w.Result()
			if !assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode) {
				return
			}

			var body ErrorBody
			err := json.NewDecoder(resp.Body).Decode(&body)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.False(t, body.Success) {
				return
			}
			if !assert.Contains(t, body.Error, "application/json") {
				return
			}
		})
	})

	t.Run("will return 400", func(t *testing.T) {
		t.Run("if a required header is missing", func(t *testing.T) {
			op := greeter(hello, Headers(Header{Name: "X-Trace", Required: true}))

			w := httptest.NewRecorder()
			op.ServeHTTP(w, formRequest("name=bob"))

			if !assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode) {
				return
			}
		})

		t.Run("if a header does not match its pattern", func(t *testing.T) {
			op := greeter(hello, Headers(Header{Name: "X-Trace", Pattern: "^[a-z]+$"}))

			r := formRequest("name=bob")
			r.Header.Set("X-Trace", "123")
			w := httptest.NewRecorder()
			op.ServeHTTP(w, r)

			if !assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode) {
				return
			}
		})

		t.Run("if the body is not a valid form", func(t *testing.T) {
			op := greeter(hello)

			w := httptest.NewRecorder()
			op.ServeHTTP(w, formRequest("name=%zz"))

			if !assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode) {
				return
			}
		})
	})

	t.Run("will return 413", func(t *testing.T) {
		t.Run("if the body exceeds the reader limit", func(t *testing.T) {
			op := greeter(hello)

			w := httptest.NewRecorder()
			r := formRequest("name=" + strings.Repeat("a", 64))
			r.Body = http.MaxBytesReader(w, r.Body, 8)
			op.ServeHTTP(w, r)

			if !assert.Equal(t, http.StatusRequestEntityTooLarge, w.Result().StatusCode) {
				return
			}
		})
	})

	t.Run("will let the error write the response", func(t *testing.T) {
		t.Run("if the error implements http.Handler", func(t *testing.T) {
			op := greeter(func(_ context.Context, _ *url.Values) (*greeting, error) {
				return nil, teapotError{}
			})

			w := httptest.NewRecorder()
			op.ServeHTTP(w, formRequest("name=bob"))

			if !assert.Equal(t, http.StatusTeapot, w.Result().StatusCode) {
				return
			}
		})
	})

	t.Run("will return 500", func(t *testing.T) {
		t.Run("if the handler fails with a plain error", func(t *testing.T) {
			op := greeter(func(_ context.Context, _ *url.Values) (*greeting, error) {
				return nil, errors.New("boom")
			})

			w := httptest.NewRecorder()
			op.ServeHTTP(w, formRequest("name=bob"))

			if !assert.Equal(t, http.StatusInternalServerError, w.Result().StatusCode) {
				return
			}
		})

		t.Run("if the handler returns a nil response", func(t *testing.T) {
			op := greeter(func(_ context.Context, _ *url.Values) (*greeting, error) {
				return nil, nil
			})

			w := httptest.NewRecorder()
			op.ServeHTTP(w, formRequest("name=bob"))

			if !assert.Equal(t, http.StatusInternalServerError, w.Result().StatusCode) {
				return
			}
		})
	})

	t.Run("will call the custom error handler", func(t *testing.T) {
		t.Run("if one is configured", func(t *testing.T) {
			var caught error
			op := greeter(
				func(_ context.Context, _ *url.Values) (*greeting, error) {
					return nil, teapotError{}
				},
				OnError(ErrorHandlerFunc(func(_ context.Context, w http.ResponseWriter, err error) {
					caught = err
					w.WriteHeader(http.StatusBadGateway)
				})),
			)

			w := httptest.NewRecorder()
			op.ServeHTTP(w, formRequest("name=bob"))

			if !assert.Equal(t, http.StatusBadGateway, w.Result().StatusCode) {
				return
			}
			if !assert.ErrorIs(t, caught, teapotError{}) {
				return
			}
		})
	})
}

func TestInjectors(t *testing.T) {
	t.Run("will expose request details to the handler", func(t *testing.T) {
		t.Run("if the handler reads them from the context", func(t *testing.T) {
			var header, addr string
			op := greeter(func(ctx context.Context, v *url.Values) (*greeting, error) {
				header = HeaderValue(ctx, "X-Form-Id")
				addr = RemoteAddr(ctx)
				SetResponseHeader(ctx, "X-Seen", "yes")
				return &greeting{}, nil
			})

			r := formRequest("")
			r.Header.Set("X-Form-Id", "form-1")
			r.RemoteAddr = "10.0.0.1:1234"
			w := httptest.NewRecorder()
			op.ServeHTTP(w, r)

			if !assert.Equal(t, "form-1", header) {
				return
			}
			if !assert.Equal(t, "10.0.0.1:1234", addr) {
				return
			}
			if !assert.Equal(t, "yes", w.Result().Header.Get("X-Seen")) {
				return
			}
		})
	})

	t.Run("will return empty values", func(t *testing.T) {
		t.Run("if the context did not come from an operation", func(t *testing.T) {
			ctx := context.Background()
			SetResponseHeader(ctx, "X-Seen", "yes")

			if !assert.Empty(t, HeaderValue(ctx, "X-Form-Id")) {
				return
			}
			if !assert.Empty(t, RemoteAddr(ctx)) {
				return
			}
		})
	})
}

func TestOperation_OpenApi(t *testing.T) {
	t.Run("will document the form request body", func(t *testing.T) {
		op := greeter(hello)

		spec := op.OpenApi()
		if !assert.NotNil(t, spec.RequestBody) {
			return
		}
		if !assert.NotNil(t, spec.RequestBody.RequestBody) {
			return
		}
		if !assert.Contains(t, spec.RequestBody.RequestBody.Content, "application/x-www-form-urlencoded") {
			return
		}
	})

	t.Run("will document every response", func(t *testing.T) {
		op := greeter(
			hello,
			ReturnsJson[ErrorBody](http.StatusUnprocessableEntity),
			Returns(http.StatusInternalServerError),
		)

		spec := op.OpenApi()
		responses := spec.Responses.MapOfResponseOrRefValues
		if !assert.Len(t, responses, 3) {
			return
		}

		ok := responses["200"].Response
		if !assert.NotNil(t, ok) {
			return
		}
		if !assert.Contains(t, ok.Content, "application/json") {
			return
		}

		unprocessable := responses["422"].Response
		if !assert.NotNil(t, unprocessable) {
			return
		}
		if !assert.Contains(t, unprocessable.Content, "application/json") {
			return
		}

		internal := responses["500"].Response
		if !assert.NotNil(t, internal) {
			return
		}
		if !assert.Empty(t, internal.Content) {
			return
		}
	})

	t.Run("will document headers as parameters", func(t *testing.T) {
		op := greeter(hello, Headers(Header{Name: "X-Form-Id", Pattern: "^.+$"}), Summary("greet"))

		spec := op.OpenApi()
		if !assert.Len(t, spec.Parameters, 1) {
			return
		}

		param := spec.Parameters[0].Parameter
		if !assert.NotNil(t, param) {
			return
		}
		if !assert.Equal(t, "X-Form-Id", param.Name) {
			return
		}
		if !assert.NotNil(t, spec.Summary) {
			return
		}
		if !assert.Equal(t, "greet", *spec.Summary) {
			return
		}
	})
}
