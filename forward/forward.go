// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package forward delivers validated users to a downstream HTTP service.
package forward

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/z5labs/userform/http/httpclient"
	"github.com/z5labs/userform/internal/try"
	"github.com/z5labs/userform/pkg/noop"
	"github.com/z5labs/userform/pkg/otelslog"
	"github.com/z5labs/userform/pkg/slogfield"
	"github.com/z5labs/userform/user"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// IdempotencyKeyHeader carries the hex encoded SHA-256 of the request
// body. Redelivering the same record sends the same key while an edited
// record for the same user id sends a new one.
const IdempotencyKeyHeader = "Idempotency-Key"

// UnexpectedStatusError is returned when the receiver responds
// with a non 2xx status code.
type UnexpectedStatusError struct {
	StatusCode int
}

// Error implements the [error] interface.
func (e UnexpectedStatusError) Error() string {
	return fmt.Sprintf("received unexpected http status code from receiver: %d", e.StatusCode)
}

type options struct {
	logHandler slog.Handler
	client     *http.Client

	retries  int
	timeout  time.Duration
	tripAt   uint32
	openWait time.Duration
}

// Option
type Option func(*options)

// LogHandler
func LogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logHandler = h
	}
}

// Client overrides the default resilient client.
func Client(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// Retries sets how many times a failed delivery is retried. Defaults to 3.
func Retries(n int) Option {
	return func(o *options) {
		o.retries = n
	}
}

// Timeout bounds a single delivery attempt. Defaults to 10 seconds.
func Timeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// TripAfter opens the circuit after n consecutive failed deliveries
// for wait. Defaults to 5 and 30 seconds.
func TripAfter(n uint32, wait time.Duration) Option {
	return func(o *options) {
		o.tripAt = n
		o.openWait = wait
	}
}

// Sink POSTs every validated user as JSON to a URL.
type Sink struct {
	log    *slog.Logger
	url    string
	client *http.Client
}

// New
func New(url string, opts ...Option) *Sink {
	o := &options{
		logHandler: noop.LogHandler{},
		retries:    3,
		timeout:    10 * time.Second,
		tripAt:     5,
		openWait:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	client := o.client
	if client == nil {
		client = httpclient.New(
			httpclient.Name("forward"),
			httpclient.LogHandler(o.logHandler),
			httpclient.Timeout(o.timeout),
			httpclient.TripAfter(o.tripAt),
			httpclient.OpenStateTimeout(o.openWait),
			httpclient.Retry(o.retries, 100*time.Millisecond, 2*time.Second),
		)
	}

	return &Sink{
		log:    otelslog.New(o.logHandler),
		url:    url,
		client: client,
	}
}

// Deliver implements the [gateway.Sink] interface.
func (s *Sink) Deliver(ctx context.Context, u user.User) (err error) {
	spanCtx, span := otel.Tracer("forward").Start(ctx, "Sink.Deliver", trace.WithAttributes(
		attribute.String("http.url", s.url),
	))
	defer span.End()

	b, err := json.Marshal(u)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(spanCtx, http.MethodPost, s.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(IdempotencyKeyHeader, idempotencyKey(b))

	resp, err := s.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer try.Close(&err, resp.Body)

	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return UnexpectedStatusError{StatusCode: resp.StatusCode}
	}

	s.log.DebugContext(spanCtx, "forwarded validated user", slogfield.Int("status_code", resp.StatusCode))
	return nil
}

func idempotencyKey(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
