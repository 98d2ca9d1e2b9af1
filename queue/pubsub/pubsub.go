// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package pubsub consumes user form submissions from a Google Cloud PubSub subscription.
package pubsub

import (
	"context"
	"log/slog"

	"github.com/z5labs/userform/pkg/noop"
	"github.com/z5labs/userform/pkg/otelslog"
	"github.com/z5labs/userform/pkg/slogfield"
	"github.com/z5labs/userform/queue"

	pubsubpb "cloud.google.com/go/pubsub/apiv1/pubsubpb"
	"github.com/googleapis/gax-go/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// FormIDAttribute is the message attribute holding the form id.
const FormIDAttribute = "form_id"

// Submission converts msg into a [queue.Submission]. The form id is
// taken from the [FormIDAttribute] attribute, then the ordering key
// and finally the message id.
func Submission(msg *pubsubpb.ReceivedMessage) queue.Submission {
	m := msg.GetMessage()
	sub := queue.Submission{
		FormID: m.GetAttributes()[FormIDAttribute],
		Body:   m.GetData(),
	}
	if sub.FormID == "" {
		sub.FormID = m.GetOrderingKey()
	}
	if sub.FormID == "" {
		sub.FormID = m.GetMessageId()
	}
	return sub
}

type pubsubPullClient interface {
	Pull(context.Context, *pubsubpb.PullRequest, ...gax.CallOption) (*pubsubpb.PullResponse, error)
}

type consumerOptions struct {
	commonOptions

	maxNumOfMessages int32
}

// ConsumerOption
type ConsumerOption interface {
	applyConsumer(*consumerOptions)
}

type consumerOptionFunc func(*consumerOptions)

func (f consumerOptionFunc) applyConsumer(co *consumerOptions) {
	f(co)
}

// MaxNumOfMessages
func MaxNumOfMessages(n int32) ConsumerOption {
	return consumerOptionFunc(func(co *consumerOptions) {
		co.maxNumOfMessages = n
	})
}

// Consumer pulls batches of messages from a subscription.
type Consumer struct {
	log    *slog.Logger
	pubsub pubsubPullClient

	subscription     string
	maxNumOfMessages int32
}

// NewConsumer
func NewConsumer(opts ...ConsumerOption) *Consumer {
	co := &consumerOptions{
		commonOptions: commonOptions{
			logHandler: noop.LogHandler{},
		},
		maxNumOfMessages: 10,
	}
	for _, opt := range opts {
		opt.applyConsumer(co)
	}
	return &Consumer{
		log:              otelslog.New(co.logHandler),
		pubsub:           co.pubsub,
		subscription:     co.subscription,
		maxNumOfMessages: co.maxNumOfMessages,
	}
}

// Consume implements the [queue.Consumer] interface.
func (c *Consumer) Consume(ctx context.Context) ([]*pubsubpb.ReceivedMessage, error) {
	spanCtx, span := otel.Tracer("pubsub").Start(ctx, "Consumer.Consume")
	defer span.End()

	resp, err := c.pubsub.Pull(spanCtx, &pubsubpb.PullRequest{
		Subscription: c.subscription,
		MaxMessages:  c.maxNumOfMessages,
	})
	if err != nil {
		c.log.ErrorContext(spanCtx, "failed to pull pubsub for messages", slogfield.Error(err))
		return nil, err
	}

	span.SetAttributes(attribute.Int("num_of_messages", len(resp.ReceivedMessages)))
	if len(resp.ReceivedMessages) == 0 {
		return nil, queue.ErrNoItem
	}
	c.log.InfoContext(spanCtx, "received messages", slogfield.Int("num_of_messages", len(resp.ReceivedMessages)))
	return resp.ReceivedMessages, nil
}

type pubsubAckClient interface {
	Acknowledge(context.Context, *pubsubpb.AcknowledgeRequest, ...gax.CallOption) error
}

type batchAcknowledgeProcessorOptions struct {
	commonOptions

	inner queue.Processor[*pubsubpb.ReceivedMessage]
}

// BatchAcknowledgeProcessorOption
type BatchAcknowledgeProcessorOption interface {
	applyProcessor(*batchAcknowledgeProcessorOptions)
}

type batchAckProcessorOptionFunc func(*batchAcknowledgeProcessorOptions)

func (f batchAckProcessorOptionFunc) applyProcessor(bo *batchAcknowledgeProcessorOptions) {
	f(bo)
}

// Processor sets the processor each individual message is handed to.
func Processor(p queue.Processor[*pubsubpb.ReceivedMessage]) BatchAcknowledgeProcessorOption {
	return batchAckProcessorOptionFunc(func(bo *batchAcknowledgeProcessorOptions) {
		bo.inner = p
	})
}

// BatchAcknowledgeProcessor processes a batch of messages concurrently
// and acknowledges the ones which were processed successfully.
type BatchAcknowledgeProcessor struct {
	log    *slog.Logger
	pubsub pubsubAckClient

	subscription string
	inner        queue.Processor[*pubsubpb.ReceivedMessage]
}

// NewBatchAcknowledgeProcessor
func NewBatchAcknowledgeProcessor(opts ...BatchAcknowledgeProcessorOption) *BatchAcknowledgeProcessor {
	bo := &batchAcknowledgeProcessorOptions{
		commonOptions: commonOptions{
			logHandler: noop.LogHandler{},
		},
	}
	for _, opt := range opts {
		opt.applyProcessor(bo)
	}
	return &BatchAcknowledgeProcessor{
		log:          otelslog.New(bo.logHandler),
		pubsub:       bo.pubsub,
		subscription: bo.subscription,
		inner:        bo.inner,
	}
}

// Process implements the [queue.Processor] interface.
func (p *BatchAcknowledgeProcessor) Process(ctx context.Context, msgs []*pubsubpb.ReceivedMessage) error {
	spanCtx, span := otel.Tracer("pubsub").Start(ctx, "BatchAcknowledgeProcessor.Process", trace.WithAttributes(
		attribute.Int("num_of_messages", len(msgs)),
	))
	defer span.End()

	processed := queue.ProcessBatch(spanCtx, p.log, p.inner, msgs)
	if len(processed) == 0 {
		return nil
	}

	ackIds := make([]string, 0, len(processed))
	for _, msg := range processed {
		ackIds = append(ackIds, msg.GetAckId())
	}

	// always try to acknowledge even if ctx was cancelled while processing
	err := p.pubsub.Acknowledge(context.WithoutCancel(spanCtx), &pubsubpb.AcknowledgeRequest{
		Subscription: p.subscription,
		AckIds:       ackIds,
	})
	if err != nil {
		p.log.ErrorContext(
			spanCtx,
			"failed to batch acknowledge messages",
			slogfield.Int("num_of_ack_ids", len(ackIds)),
			slogfield.Error(err),
		)
		return err
	}
	return nil
}
