// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package kafka consumes user form submissions from a Kafka topic.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/z5labs/userform/pkg/noop"
	"github.com/z5labs/userform/pkg/otelslog"
	"github.com/z5labs/userform/pkg/slogfield"
	"github.com/z5labs/userform/queue"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// FormIDHeader is the message header holding the form id.
const FormIDHeader = "form_id"

// Submission converts msg into a [queue.Submission]. The form id is
// taken from the [FormIDHeader] header, then the message key and
// finally the message position.
func Submission(msg kafka.Message) queue.Submission {
	sub := queue.Submission{
		Body: msg.Value,
	}
	for _, h := range msg.Headers {
		if h.Key == FormIDHeader && len(h.Value) > 0 {
			sub.FormID = string(h.Value)
			break
		}
	}
	if sub.FormID == "" {
		sub.FormID = string(msg.Key)
	}
	if sub.FormID == "" {
		sub.FormID = fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
	}
	return sub
}

type fetchClient interface {
	FetchMessage(context.Context) (kafka.Message, error)
}

type commitClient interface {
	CommitMessages(context.Context, ...kafka.Message) error
}

type kafkaClient interface {
	fetchClient
	commitClient
}

type options struct {
	logHandler slog.Handler
	kafka      kafkaClient
	inner      queue.Processor[kafka.Message]
}

// Option
type Option func(*options)

// LogHandler configures the underlying slog.Handler.
func LogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logHandler = h
	}
}

// Reader configures the underlying Kafka reader. It should
// belong to a consumer group for commits to be possible.
func Reader(r *kafka.Reader) Option {
	return func(o *options) {
		o.kafka = r
	}
}

// Processor sets the processor each message is handed to. It only
// applies to the [CommitProcessor].
func Processor(p queue.Processor[kafka.Message]) Option {
	return func(o *options) {
		o.inner = p
	}
}

func newOptions(opts ...Option) *options {
	o := &options{
		logHandler: noop.LogHandler{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Consumer fetches one message at a time without committing it.
type Consumer struct {
	log   *slog.Logger
	kafka fetchClient
}

// NewConsumer
func NewConsumer(opts ...Option) *Consumer {
	o := newOptions(opts...)
	return &Consumer{
		log:   otelslog.New(o.logHandler),
		kafka: o.kafka,
	}
}

// Consume implements the [queue.Consumer] interface. It returns
// [queue.ErrEndOfItems] once the reader has been closed.
func (c *Consumer) Consume(ctx context.Context) (kafka.Message, error) {
	spanCtx, span := otel.Tracer("kafka").Start(ctx, "Consumer.Consume")
	defer span.End()

	msg, err := c.kafka.FetchMessage(spanCtx)
	if errors.Is(err, io.EOF) {
		return kafka.Message{}, queue.ErrEndOfItems
	}
	if err != nil {
		c.log.ErrorContext(spanCtx, "failed to fetch message", slogfield.Error(err))
		return kafka.Message{}, err
	}

	span.SetAttributes(
		attribute.String("kafka.topic", msg.Topic),
		attribute.Int("kafka.partition", msg.Partition),
		attribute.Int64("kafka.offset", msg.Offset),
	)
	return msg, nil
}

// CommitProcessor commits the offset of every message its inner
// processor handled without error.
//
// Offsets are committed per partition so a failed message is only
// redelivered if no later message on its partition gets committed.
type CommitProcessor struct {
	log   *slog.Logger
	kafka commitClient
	inner queue.Processor[kafka.Message]
}

// NewCommitProcessor
func NewCommitProcessor(opts ...Option) *CommitProcessor {
	o := newOptions(opts...)
	return &CommitProcessor{
		log:   otelslog.New(o.logHandler),
		kafka: o.kafka,
		inner: o.inner,
	}
}

// Process implements the [queue.Processor] interface.
func (p *CommitProcessor) Process(ctx context.Context, msg kafka.Message) error {
	spanCtx, span := otel.Tracer("kafka").Start(ctx, "CommitProcessor.Process", trace.WithAttributes(
		attribute.String("kafka.topic", msg.Topic),
		attribute.Int("kafka.partition", msg.Partition),
		attribute.Int64("kafka.offset", msg.Offset),
	))
	defer span.End()

	err := p.inner.Process(spanCtx, msg)
	if err != nil {
		return err
	}

	err = p.kafka.CommitMessages(context.WithoutCancel(spanCtx), msg)
	if err != nil {
		p.log.ErrorContext(
			spanCtx,
			"failed to commit message",
			slogfield.String("kafka_topic", msg.Topic),
			slogfield.Int("kafka_partition", msg.Partition),
			slogfield.Int64("kafka_offset", msg.Offset),
			slogfield.Error(err),
		)
		return err
	}
	return nil
}
