// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package sqs consumes user form submissions from AWS SQS.
package sqs

import (
	"context"
	"log/slog"

	"github.com/z5labs/userform/pkg/noop"
	"github.com/z5labs/userform/pkg/otelslog"
	"github.com/z5labs/userform/pkg/slogfield"
	"github.com/z5labs/userform/queue"
	"github.com/z5labs/userform/queue/sqs/sqsslog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// FormIDAttribute is the message attribute holding the form id.
const FormIDAttribute = "form_id"

// Submission converts msg into a [queue.Submission]. The form id is
// taken from the [FormIDAttribute] message attribute or, if absent,
// the message id.
func Submission(msg types.Message) queue.Submission {
	sub := queue.Submission{
		FormID: aws.ToString(msg.MessageId),
		Body:   []byte(aws.ToString(msg.Body)),
	}
	attr, ok := msg.MessageAttributes[FormIDAttribute]
	if ok && aws.ToString(attr.StringValue) != "" {
		sub.FormID = aws.ToString(attr.StringValue)
	}
	return sub
}

type consumerOptions struct {
	commonOptions

	maxNumOfMessages  int32
	visibilityTimeout int32
	waitTimeSeconds   int32
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

// VisibilityTimeout
func VisibilityTimeout(n int32) ConsumerOption {
	return consumerOptionFunc(func(co *consumerOptions) {
		co.visibilityTimeout = n
	})
}

// WaitTimeSeconds
func WaitTimeSeconds(n int32) ConsumerOption {
	return consumerOptionFunc(func(co *consumerOptions) {
		co.waitTimeSeconds = n
	})
}

type sqsReceiveClient interface {
	ReceiveMessage(context.Context, *sqs.ReceiveMessageInput, ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
}

// Consumer receives batches of messages from a SQS queue.
type Consumer struct {
	log *slog.Logger
	sqs sqsReceiveClient

	queueUrl          string
	maxNumOfMessages  int32
	visibilityTimeout int32
	waitTimeSeconds   int32
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
		log:               otelslog.New(co.logHandler),
		sqs:               co.sqs,
		queueUrl:          co.queueUrl,
		maxNumOfMessages:  co.maxNumOfMessages,
		visibilityTimeout: co.visibilityTimeout,
		waitTimeSeconds:   co.waitTimeSeconds,
	}
}

// Consume implements the [queue.Consumer] interface.
func (c *Consumer) Consume(ctx context.Context) ([]types.Message, error) {
	spanCtx, span := otel.Tracer("sqs").Start(ctx, "Consumer.Consume")
	defer span.End()

	resp, err := c.sqs.ReceiveMessage(spanCtx, &sqs.ReceiveMessageInput{
		QueueUrl:              &c.queueUrl,
		MaxNumberOfMessages:   c.maxNumOfMessages,
		VisibilityTimeout:     c.visibilityTimeout,
		WaitTimeSeconds:       c.waitTimeSeconds,
		MessageAttributeNames: []string{FormIDAttribute},
	})
	if err != nil {
		c.log.ErrorContext(spanCtx, "failed to receive messages", slogfield.Error(err))
		return nil, err
	}

	span.SetAttributes(attribute.Int("num_of_messages", len(resp.Messages)))
	if len(resp.Messages) == 0 {
		return nil, queue.ErrNoItem
	}
	c.log.InfoContext(spanCtx, "received messages", sqsslog.MessageIds(messageIds(resp.Messages)))
	return resp.Messages, nil
}

type batchDeleteProcessorOptions struct {
	commonOptions

	inner queue.Processor[types.Message]
}

// BatchDeleteProcessorOption
type BatchDeleteProcessorOption interface {
	applyProcessor(*batchDeleteProcessorOptions)
}

type batchDeleteProcessorOptionFunc func(*batchDeleteProcessorOptions)

func (f batchDeleteProcessorOptionFunc) applyProcessor(bo *batchDeleteProcessorOptions) {
	f(bo)
}

// Processor sets the processor each individual message is handed to.
func Processor(p queue.Processor[types.Message]) BatchDeleteProcessorOption {
	return batchDeleteProcessorOptionFunc(func(bo *batchDeleteProcessorOptions) {
		bo.inner = p
	})
}

type sqsBatchDeleteClient interface {
	DeleteMessageBatch(context.Context, *sqs.DeleteMessageBatchInput, ...func(*sqs.Options)) (*sqs.DeleteMessageBatchOutput, error)
}

// BatchDeleteProcessor processes a batch of messages concurrently
// and deletes the ones which were processed successfully.
type BatchDeleteProcessor struct {
	log *slog.Logger
	sqs sqsBatchDeleteClient

	queueUrl string
	inner    queue.Processor[types.Message]
}

// NewBatchDeleteProcessor
func NewBatchDeleteProcessor(opts ...BatchDeleteProcessorOption) *BatchDeleteProcessor {
	bo := &batchDeleteProcessorOptions{
		commonOptions: commonOptions{
			logHandler: noop.LogHandler{},
		},
	}
	for _, opt := range opts {
		opt.applyProcessor(bo)
	}
	return &BatchDeleteProcessor{
		log:      otelslog.New(bo.logHandler),
		sqs:      bo.sqs,
		queueUrl: bo.queueUrl,
		inner:    bo.inner,
	}
}

// Process implements the [queue.Processor] interface.
func (p *BatchDeleteProcessor) Process(ctx context.Context, msgs []types.Message) error {
	spanCtx, span := otel.Tracer("sqs").Start(ctx, "BatchDeleteProcessor.Process", trace.WithAttributes(
		attribute.Int("num_of_messages", len(msgs)),
	))
	defer span.End()

	processed := queue.ProcessBatch(spanCtx, p.log, p.inner, msgs)
	if len(processed) == 0 {
		return nil
	}

	deleteEntries := make([]types.DeleteMessageBatchRequestEntry, 0, len(processed))
	for _, msg := range processed {
		deleteEntries = append(deleteEntries, types.DeleteMessageBatchRequestEntry{
			ReceiptHandle: msg.ReceiptHandle,
			Id:            msg.MessageId,
		})
	}

	// always try to delete even if ctx was cancelled while processing
	resp, err := p.sqs.DeleteMessageBatch(context.WithoutCancel(spanCtx), &sqs.DeleteMessageBatchInput{
		QueueUrl: &p.queueUrl,
		Entries:  deleteEntries,
	})
	if err != nil {
		p.log.ErrorContext(
			spanCtx,
			"failed to batch delete messages",
			slogfield.Int("num_of_delete_entries", len(deleteEntries)),
			slogfield.Error(err),
		)
		return err
	}
	for _, entry := range resp.Failed {
		p.log.ErrorContext(
			spanCtx,
			"failed to delete message",
			sqsslog.MessageId(aws.ToString(entry.Id)),
			slogfield.String("sqs_error_code", aws.ToString(entry.Code)),
			slogfield.String("sqs_error_message", aws.ToString(entry.Message)),
			slogfield.Bool("sqs_sender_fault", entry.SenderFault),
		)
	}
	return nil
}

func messageIds(msgs []types.Message) []string {
	ids := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		ids = append(ids, aws.ToString(msg.MessageId))
	}
	return ids
}
