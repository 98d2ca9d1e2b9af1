// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/z5labs/userform"
	"github.com/z5labs/userform/lifecycle"
	"github.com/z5labs/userform/queue"
	"github.com/z5labs/userform/queue/kafka"
	"github.com/z5labs/userform/queue/pubsub"
	"github.com/z5labs/userform/queue/sqs"

	pubsubv1 "cloud.google.com/go/pubsub/apiv1"
	pubsubpb "cloud.google.com/go/pubsub/apiv1/pubsubpb"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	kafkago "github.com/segmentio/kafka-go"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// MissingConfigError is returned when a queue application is built
// without a setting it cannot run without.
type MissingConfigError struct {
	Key string
}

// Error implements the [error] interface.
func (e MissingConfigError) Error() string {
	return fmt.Sprintf("missing required config: %s", e.Key)
}

func formProcessor(cfg Config, logHandler slog.Handler, o *options, source string) *queue.FormProcessor {
	gw := newGateway(cfg, logHandler, o.registry, source)
	return queue.NewFormProcessor(
		gw,
		queue.LogHandler(logHandler),
		queue.Mode(cfg.Intake.Mode),
	)
}

func pipe[T any](cfg Config, logHandler slog.Handler, c queue.Consumer[T], p queue.Processor[T], o *options) userform.App {
	rt := queue.Pipe(
		c,
		p,
		queue.LogHandler(logHandler),
		queue.MaxConcurrentProcessors(cfg.Queue.MaxConcurrentProcessors),
	)
	return withSignals(rt, o)
}

func onPostRun(ctx context.Context, hook lifecycle.HookFunc) {
	lc, ok := lifecycle.FromContext(ctx)
	if !ok {
		return
	}
	lc.OnPostRun(hook)
}

// Sqs returns the builder for the application consuming forms from AWS SQS.
//
// Credentials are resolved through the default AWS chain: environment,
// shared config and credentials files, SSO, web identity and the
// instance metadata service.
func Sqs(opts ...Option) userform.AppBuilder[Config] {
	o := newOptions(opts...)

	return userform.AppBuilderFunc[Config](func(ctx context.Context, cfg Config) (userform.App, error) {
		sc := cfg.Queue.Sqs
		if sc.QueueUrl == "" {
			return nil, MissingConfigError{Key: "queue.sqs.queue_url"}
		}
		if sc.Region == "" {
			return nil, MissingConfigError{Key: "queue.sqs.region"}
		}

		awsCfg, err := awsConfig(ctx, sc.Region)
		if err != nil {
			return nil, err
		}
		client := awssqs.NewFromConfig(awsCfg, func(so *awssqs.Options) {
			if sc.Endpoint != "" {
				so.BaseEndpoint = aws.String(sc.Endpoint)
			}
		})

		logHandler := cfg.LogHandler(o.out)
		consumer := sqs.NewConsumer(
			sqs.LogHandler(logHandler),
			sqs.Client(client),
			sqs.QueueUrl(sc.QueueUrl),
			sqs.MaxNumOfMessages(sc.MaxNumOfMessages),
			sqs.VisibilityTimeout(sc.VisibilityTimeout),
			sqs.WaitTimeSeconds(sc.WaitTimeSeconds),
		)
		processor := sqs.NewBatchDeleteProcessor(
			sqs.LogHandler(logHandler),
			sqs.Client(client),
			sqs.QueueUrl(sc.QueueUrl),
			sqs.Processor(queue.Adapt[types.Message, queue.Submission](formProcessor(cfg, logHandler, o, "sqs"), sqs.Submission)),
		)
		return pipe[[]types.Message](cfg, logHandler, consumer, processor, o), nil
	})
}

func awsConfig(ctx context.Context, region string) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
}

// PubSub returns the builder for the application consuming forms
// from a Google Cloud PubSub subscription.
func PubSub(opts ...Option) userform.AppBuilder[Config] {
	o := newOptions(opts...)

	return userform.AppBuilderFunc[Config](func(ctx context.Context, cfg Config) (userform.App, error) {
		pc := cfg.Queue.PubSub
		if pc.Subscription == "" {
			return nil, MissingConfigError{Key: "queue.pubsub.subscription"}
		}

		client, err := pubsubv1.NewSubscriberClient(ctx, pubsubClientOptions(pc.Endpoint)...)
		if err != nil {
			return nil, err
		}
		onPostRun(ctx, func(context.Context) error {
			return client.Close()
		})

		logHandler := cfg.LogHandler(o.out)
		consumer := pubsub.NewConsumer(
			pubsub.LogHandler(logHandler),
			pubsub.Client(client),
			pubsub.Subscription(pc.Subscription),
			pubsub.MaxNumOfMessages(pc.MaxNumOfMessages),
		)
		processor := pubsub.NewBatchAcknowledgeProcessor(
			pubsub.LogHandler(logHandler),
			pubsub.Client(client),
			pubsub.Subscription(pc.Subscription),
			pubsub.Processor(queue.Adapt[*pubsubpb.ReceivedMessage, queue.Submission](formProcessor(cfg, logHandler, o, "pubsub"), pubsub.Submission)),
		)
		return pipe[[]*pubsubpb.ReceivedMessage](cfg, logHandler, consumer, processor, o), nil
	})
}

func pubsubClientOptions(endpoint string) []option.ClientOption {
	if endpoint == "" {
		return nil
	}
	return []option.ClientOption{
		option.WithEndpoint(endpoint),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	}
}

// Kafka returns the builder for the application consuming forms
// from a Kafka topic as part of a consumer group.
func Kafka(opts ...Option) userform.AppBuilder[Config] {
	o := newOptions(opts...)

	return userform.AppBuilderFunc[Config](func(ctx context.Context, cfg Config) (userform.App, error) {
		kc := cfg.Queue.Kafka
		if len(kc.Brokers) == 0 {
			return nil, MissingConfigError{Key: "queue.kafka.brokers"}
		}
		if kc.Topic == "" {
			return nil, MissingConfigError{Key: "queue.kafka.topic"}
		}
		if kc.GroupId == "" {
			return nil, MissingConfigError{Key: "queue.kafka.group_id"}
		}

		r := kafkago.NewReader(kafkago.ReaderConfig{
			Brokers: kc.Brokers,
			Topic:   kc.Topic,
			GroupID: kc.GroupId,
		})
		onPostRun(ctx, func(context.Context) error {
			return r.Close()
		})

		logHandler := cfg.LogHandler(o.out)
		consumer := kafka.NewConsumer(
			kafka.LogHandler(logHandler),
			kafka.Reader(r),
		)
		processor := kafka.NewCommitProcessor(
			kafka.LogHandler(logHandler),
			kafka.Reader(r),
			kafka.Processor(queue.Adapt[kafkago.Message, queue.Submission](formProcessor(cfg, logHandler, o, "kafka"), kafka.Submission)),
		)
		return pipe[kafkago.Message](cfg, logHandler, consumer, processor, o), nil
	})
}
