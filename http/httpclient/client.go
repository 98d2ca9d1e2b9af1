// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package httpclient provides a production ready http.Client.
package httpclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/z5labs/userform/pkg/noop"
	"github.com/z5labs/userform/pkg/otelslog"
	"github.com/z5labs/userform/pkg/slogfield"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type circuitOptions struct {
	maxRequests uint32
	interval    time.Duration
	timeout     time.Duration
	tripCount   uint32
	statusCodes []int
}

func withCircuitOption(f func(*circuitOptions)) Option {
	return func(o *options) {
		if o.co == nil {
			o.co = &circuitOptions{
				tripCount: 5,
			}
		}
		f(o.co)
	}
}

// CircuitBreaker enables the circuit breaker with its default settings.
func CircuitBreaker() Option {
	return withCircuitOption(func(co *circuitOptions) {})
}

// HalfOpenRequests is the number of requests let through
// while the circuit is half open.
func HalfOpenRequests(n uint32) Option {
	return withCircuitOption(func(co *circuitOptions) {
		co.maxRequests = n
	})
}

// OpenStateTimeout is how long the circuit stays open before
// becoming half open.
func OpenStateTimeout(d time.Duration) Option {
	return withCircuitOption(func(co *circuitOptions) {
		co.timeout = d
	})
}

// CountResetInterval is the cyclic period in which the failure
// counts are cleared while the circuit is closed.
func CountResetInterval(d time.Duration) Option {
	return withCircuitOption(func(co *circuitOptions) {
		co.interval = d
	})
}

// TripAfter opens the circuit after n consecutive failures. Defaults to 5.
func TripAfter(n uint32) Option {
	return withCircuitOption(func(co *circuitOptions) {
		if n > 0 {
			co.tripCount = n
		}
	})
}

// TripOn sets the response status codes counted as failures by the circuit breaker.
// Defaults to 429, 500, 502, 503 and 504.
func TripOn(statusCodes ...int) Option {
	return withCircuitOption(func(co *circuitOptions) {
		co.statusCodes = append(co.statusCodes, statusCodes...)
	})
}

type retryOptions struct {
	maxRetries int
	waitMin    time.Duration
	waitMax    time.Duration
}

type options struct {
	timeout time.Duration
	rt      http.RoundTripper

	name       string
	logHandler slog.Handler

	co *circuitOptions
	ro *retryOptions
}

// Option
type Option func(*options)

// Name identifies the client in logs, traces and the circuit breaker.
func Name(s string) Option {
	return func(o *options) {
		o.name = s
	}
}

// RoundTripper
func RoundTripper(rt http.RoundTripper) Option {
	return func(wo *options) {
		wo.rt = rt
	}
}

// Timeout provides a global timeout value for the http.Client.
func Timeout(d time.Duration) Option {
	return func(wo *options) {
		wo.timeout = d
	}
}

// LogHandler
func LogHandler(h slog.Handler) Option {
	return func(wo *options) {
		wo.logHandler = h
	}
}

// Retry retries failed requests up to maxRetries times with an
// exponential backoff bounded by waitMin and waitMax.
func Retry(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(o *options) {
		o.ro = &retryOptions{
			maxRetries: maxRetries,
			waitMin:    waitMin,
			waitMax:    waitMax,
		}
	}
}

// New
func New(opts ...Option) *http.Client {
	o := &options{
		rt:         http.DefaultTransport,
		logHandler: noop.LogHandler{},
	}
	for _, opt := range opts {
		opt(o)
	}

	logger := slog.New(otelslog.NewHandler(o.logHandler))
	if o.name != "" {
		logger = logger.With(slogfield.String("http_client", o.name))
	}

	var rt http.RoundTripper = &logRoundTripper{
		base: otelhttp.NewTransport(o.rt),
		log:  logger,
	}
	if o.co != nil {
		rt = newCircuitRoundTripper(o.name, o.co, logger, rt)
	}

	client := &http.Client{
		Timeout:   o.timeout,
		Transport: rt,
	}
	if o.ro == nil {
		return client
	}

	ro := o.ro
	rc := retryablehttp.Client{
		HTTPClient:   client,
		Logger:       logger,
		RetryWaitMin: ro.waitMin,
		RetryWaitMax: ro.waitMax,
		RetryMax:     ro.maxRetries,
		CheckRetry:   checkRetry,
		Backoff:      retryablehttp.DefaultBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}
	return rc.StandardClient()
}

// an open circuit fails fast so retrying it only burns the backoff.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false, err
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

type logRoundTripper struct {
	base http.RoundTripper
	log  *slog.Logger
}

func (rt *logRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	start := time.Now()
	rt.log.DebugContext(
		ctx,
		"request sent",
		slogfield.String("method", req.Method),
		slogfield.String("url", req.URL.String()),
	)
	resp, err := rt.base.RoundTrip(req)
	if err != nil {
		rt.log.ErrorContext(
			ctx,
			"request failed",
			slogfield.String("url", req.URL.String()),
			slogfield.Error(err),
		)
		return nil, err
	}
	rt.log.InfoContext(
		ctx,
		"response received",
		slogfield.String("url", req.URL.String()),
		slogfield.Int("status_code", resp.StatusCode),
		slogfield.Duration("latency", time.Since(start)),
	)
	return resp, err
}

type statusCodeError struct {
	code int
}

func (e statusCodeError) Error() string {
	return http.StatusText(e.code)
}

type circuitRoundTripper struct {
	base        http.RoundTripper
	cb          *gobreaker.CircuitBreaker
	statusCodes []int
}

func newCircuitRoundTripper(name string, co *circuitOptions, logger *slog.Logger, base http.RoundTripper) *circuitRoundTripper {
	statusCodes := co.statusCodes
	if len(statusCodes) == 0 {
		statusCodes = []int{
			http.StatusTooManyRequests,     // 429
			http.StatusInternalServerError, // 500
			http.StatusBadGateway,          // 502
			http.StatusServiceUnavailable,  // 503
			http.StatusGatewayTimeout,      // 504
		}
	}

	return &circuitRoundTripper{
		base:        base,
		statusCodes: statusCodes,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: co.maxRequests,
			Interval:    co.interval,
			Timeout:     co.timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= co.tripCount
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				switch to {
				case gobreaker.StateOpen:
					logger.Error("circuit has been opened")
				case gobreaker.StateHalfOpen:
					logger.Warn(
						"circuit is now half open and lettings some requests through",
						slogfield.Uint32("max_requests_allowed_through", co.maxRequests),
					)
				case gobreaker.StateClosed:
					logger.Info("circuit has been closed")
				}
			},
		}),
	}
}

func (rt *circuitRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	v, err := rt.cb.Execute(func() (interface{}, error) {
		resp, err := rt.base.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if slices.Contains(rt.statusCodes, resp.StatusCode) {
			return resp, statusCodeError{code: resp.StatusCode}
		}
		return resp, nil
	})

	// failed status codes only count against the circuit,
	// the caller still gets the response.
	var sce statusCodeError
	if errors.As(err, &sce) {
		return v.(*http.Response), nil
	}
	if err != nil {
		return nil, err
	}
	return v.(*http.Response), nil
}
