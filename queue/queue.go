// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package queue provides runtimes which consume items from a queue
// and hand them to a processor.
package queue

import (
	"context"
	"errors"
	"log/slog"

	"github.com/z5labs/userform/intake"
	"github.com/z5labs/userform/internal/try"
	"github.com/z5labs/userform/pkg/noop"
	"github.com/z5labs/userform/pkg/otelslog"
	"github.com/z5labs/userform/pkg/slogfield"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"
)

// ErrNoItem should be returned by a [Consumer] when there was nothing
// to consume. The runtimes simply try again.
var ErrNoItem = errors.New("queue: no item")

// ErrEndOfItems should be returned by a [Consumer] when it will never
// produce another item. The runtimes stop once in-flight items are processed.
var ErrEndOfItems = errors.New("queue: end of items")

// Consumer
type Consumer[T any] interface {
	Consume(context.Context) (T, error)
}

// ConsumerFunc
type ConsumerFunc[T any] func(context.Context) (T, error)

// Consume implements the [Consumer] interface.
func (f ConsumerFunc[T]) Consume(ctx context.Context) (T, error) {
	return f(ctx)
}

// Processor
type Processor[T any] interface {
	Process(context.Context, T) error
}

// ProcessorFunc
type ProcessorFunc[T any] func(context.Context, T) error

// Process implements the [Processor] interface.
func (f ProcessorFunc[T]) Process(ctx context.Context, t T) error {
	return f(ctx, t)
}

// Adapt converts each T into an U before handing it to p.
func Adapt[T, U any](p Processor[U], f func(T) U) Processor[T] {
	return ProcessorFunc[T](func(ctx context.Context, t T) error {
		return p.Process(ctx, f(t))
	})
}

type options struct {
	logHandler              slog.Handler
	maxConcurrentProcessors int
	mode                    intake.Mode
}

// Option
type Option func(*options)

// LogHandler
func LogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logHandler = h
	}
}

// MaxConcurrentProcessors bounds how many items a [PipeRuntime]
// processes at once. It has no effect on a [SequentialRuntime].
func MaxConcurrentProcessors(n uint) Option {
	return func(o *options) {
		if n == 0 {
			return
		}
		o.maxConcurrentProcessors = int(n)
	}
}

func newOptions(opts ...Option) *options {
	o := &options{
		logHandler:              noop.LogHandler{},
		maxConcurrentProcessors: -1,
		mode:                    intake.ModeAsIs,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SequentialRuntime consumes an item and processes it before consuming the next.
type SequentialRuntime[T any] struct {
	log *slog.Logger
	c   Consumer[T]
	p   Processor[T]
}

// Sequential
func Sequential[T any](c Consumer[T], p Processor[T], opts ...Option) *SequentialRuntime[T] {
	o := newOptions(opts...)
	return &SequentialRuntime[T]{
		log: slog.New(otelslog.NewHandler(o.logHandler)),
		c:   c,
		p:   p,
	}
}

// Run implements the [userform.App] interface.
func (rt *SequentialRuntime[T]) Run(ctx context.Context) error {
	tracer := otel.Tracer("queue")
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		spanCtx, span := tracer.Start(ctx, "SequentialRuntime.Run")
		item, err := consume(spanCtx, rt.c)
		if errors.Is(err, ErrEndOfItems) {
			span.End()
			return nil
		}
		if err != nil {
			logConsumeErr(spanCtx, rt.log, err)
			span.End()
			continue
		}

		select {
		case <-ctx.Done():
			span.End()
			return nil
		default:
		}

		err = process(spanCtx, rt.p, item.value)
		if err != nil {
			rt.log.ErrorContext(spanCtx, "failed to process", slogfield.Error(err))
		}
		span.End()
	}
}

// PipeRuntime consumes items on one goroutine and processes them
// concurrently on others.
type PipeRuntime[T any] struct {
	log *slog.Logger
	c   Consumer[T]
	p   Processor[T]

	propagator              propagation.TextMapPropagator
	maxConcurrentProcessors int
}

// Pipe
func Pipe[T any](c Consumer[T], p Processor[T], opts ...Option) *PipeRuntime[T] {
	o := newOptions(opts...)
	return &PipeRuntime[T]{
		log:                     slog.New(otelslog.NewHandler(o.logHandler)),
		c:                       c,
		p:                       p,
		propagator:              propagation.TraceContext{},
		maxConcurrentProcessors: o.maxConcurrentProcessors,
	}
}

// Run implements the [userform.App] interface.
func (rt *PipeRuntime[T]) Run(ctx context.Context) error {
	itemCh := make(chan *item[T])

	g, gctx := errgroup.WithContext(ctx)
	g.Go(rt.consumeItems(gctx, itemCh))
	g.Go(rt.processItems(gctx, itemCh))
	return g.Wait()
}

type item[T any] struct {
	value T

	// the consume span lives on another goroutine
	// so its context is carried along with the item.
	carrier propagation.MapCarrier
}

func (rt *PipeRuntime[T]) consumeItems(ctx context.Context, itemCh chan<- *item[T]) func() error {
	return func() error {
		defer close(itemCh)

		tracer := otel.Tracer("queue")
		for {
			spanCtx, span := tracer.Start(ctx, "PipeRuntime.consumeItems")

			select {
			case <-spanCtx.Done():
				span.End()
				return nil
			default:
			}

			item, err := consume(spanCtx, rt.c)
			if errors.Is(err, ErrEndOfItems) {
				span.End()
				return nil
			}
			if err != nil {
				logConsumeErr(spanCtx, rt.log, err)
				span.End()
				continue
			}

			item.carrier = make(propagation.MapCarrier)
			rt.propagator.Inject(spanCtx, item.carrier)

			select {
			case <-spanCtx.Done():
				span.End()
				return nil
			case itemCh <- item:
				span.End()
			}
		}
	}
}

func (rt *PipeRuntime[T]) processItems(ctx context.Context, itemCh <-chan *item[T]) func() error {
	return func() error {
		// processing is not cancelled with ctx so in-flight
		// items finish once the consumer stops.
		g := new(errgroup.Group)
		g.SetLimit(rt.maxConcurrentProcessors)

		for {
			var i *item[T]
			select {
			case <-ctx.Done():
				return g.Wait()
			case i = <-itemCh:
			}
			if i == nil {
				rt.log.DebugContext(ctx, "stopping item processing since item channel was closed")
				return g.Wait()
			}

			propCtx := rt.propagator.Extract(context.WithoutCancel(ctx), i.carrier)
			g.Go(rt.processItem(propCtx, i))
		}
	}
}

func (rt *PipeRuntime[T]) processItem(ctx context.Context, i *item[T]) func() error {
	return func() error {
		spanCtx, span := otel.Tracer("queue").Start(ctx, "PipeRuntime.processItem")
		defer span.End()

		err := process(spanCtx, rt.p, i.value)
		if err != nil {
			rt.log.ErrorContext(spanCtx, "failed to process", slogfield.Error(err))
		}
		return nil
	}
}

func logConsumeErr(ctx context.Context, log *slog.Logger, err error) {
	if errors.Is(err, ErrNoItem) {
		log.DebugContext(ctx, "nothing to consume")
		return
	}
	log.ErrorContext(ctx, "failed to consume", slogfield.Error(err))
}

func consume[T any](ctx context.Context, c Consumer[T]) (i *item[T], err error) {
	spanCtx, span := otel.Tracer("queue").Start(ctx, "consume")
	defer span.End()
	defer try.Recover(&err)

	v, err := c.Consume(spanCtx)
	if err != nil {
		return nil, err
	}
	return &item[T]{value: v}, nil
}

func process[T any](ctx context.Context, p Processor[T], value T) (err error) {
	spanCtx, span := otel.Tracer("queue").Start(ctx, "process")
	defer span.End()
	defer try.Recover(&err)

	return p.Process(spanCtx, value)
}
