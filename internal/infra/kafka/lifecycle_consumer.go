package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ZiyamSanthosh/identity-governance/internal/core/domain"
)

// LifecycleEventHandler consumes decoded user lifecycle events.
type LifecycleEventHandler interface {
	HandleEvent(ctx context.Context, event domain.UserLifecycleEvent) error
}

// lifecycleEventMessage is the wire shape published by the identity event
// bus for authentication and credential-update notifications.
type lifecycleEventMessage struct {
	EventID          string            `json:"event_id"`
	EventName        string            `json:"event_name"`
	TenantID         int               `json:"tenant_id"`
	Username         string            `json:"username"`
	UserStoreDomain  string            `json:"user_store_domain"`
	OperationSuccess bool              `json:"operation_success"`
	Properties       map[string]string `json:"properties,omitempty"`
}

// LifecycleConsumer decodes lifecycle messages and forwards them to the
// activity recorder. Group membership and offset management stay with the
// surrounding consumer runtime.
type LifecycleConsumer struct {
	handler LifecycleEventHandler
	logger  *zap.Logger
}

// NewLifecycleConsumer constructs a consumer feeding the given handler.
func NewLifecycleConsumer(handler LifecycleEventHandler, logger *zap.Logger) *LifecycleConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleConsumer{handler: handler, logger: logger}
}

// HandleMessage decodes a Kafka message and applies it to the recorder.
func (c *LifecycleConsumer) HandleMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	if msg == nil {
		return fmt.Errorf("message is nil")
	}

	var payload lifecycleEventMessage
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return fmt.Errorf("decode lifecycle event: %w", err)
	}

	eventID := payload.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	event := domain.UserLifecycleEvent{
		Name:             payload.EventName,
		TenantID:         payload.TenantID,
		Username:         payload.Username,
		UserStoreDomain:  payload.UserStoreDomain,
		OperationSuccess: payload.OperationSuccess,
		Properties:       payload.Properties,
	}

	if err := c.handler.HandleEvent(ctx, event); err != nil {
		c.logger.Error("lifecycle event handling failed",
			zap.String("event_id", eventID),
			zap.String("event", event.Name),
			zap.Int("tenant_id", event.TenantID),
			zap.Error(err))
		return fmt.Errorf("handle lifecycle event %s: %w", eventID, err)
	}

	return nil
}

var _ interface {
	HandleMessage(context.Context, *sarama.ConsumerMessage) error
} = (*LifecycleConsumer)(nil)
