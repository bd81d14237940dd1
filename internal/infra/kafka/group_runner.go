package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/ZiyamSanthosh/identity-governance/internal/infra/config"
)

// GroupRunner subscribes the lifecycle consumer to the event bus topic
// through a Sarama consumer group.
type GroupRunner struct {
	group    sarama.ConsumerGroup
	topic    string
	consumer *LifecycleConsumer
	logger   *zap.Logger
}

// NewGroupRunner connects a consumer group for the configured topic.
func NewGroupRunner(cfg config.KafkaSettings, consumer *LifecycleConsumer, logger *zap.Logger) (*GroupRunner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_5_0_0
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer group: %w", err)
	}

	logger.Info("kafka lifecycle consumer initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.LifecycleTopic),
		zap.String("group", cfg.ConsumerGroup),
	)

	return &GroupRunner{
		group:    group,
		topic:    cfg.LifecycleTopic,
		consumer: consumer,
		logger:   logger,
	}, nil
}

// Run consumes until the context is cancelled. Rebalances re-enter the
// consume loop; cancellation returns nil.
func (r *GroupRunner) Run(ctx context.Context) error {
	handler := &groupHandler{consumer: r.consumer, logger: r.logger}

	for {
		if err := r.group.Consume(ctx, []string{r.topic}, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return fmt.Errorf("consume lifecycle topic: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Close releases the consumer group.
func (r *GroupRunner) Close() error {
	if err := r.group.Close(); err != nil {
		return fmt.Errorf("close kafka consumer group: %w", err)
	}
	return nil
}

type groupHandler struct {
	consumer *LifecycleConsumer
	logger   *zap.Logger
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if err := h.consumer.HandleMessage(session.Context(), msg); err != nil {
			// The write path owns retry policy; a poisoned message is
			// logged and skipped so the partition keeps moving.
			h.logger.Error("lifecycle message rejected",
				zap.String("topic", msg.Topic),
				zap.Int32("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		}
		session.MarkMessage(msg, "")
	}
	return nil
}

var _ sarama.ConsumerGroupHandler = (*groupHandler)(nil)
