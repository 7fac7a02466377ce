package management

import (
	"context"
	"strconv"
	"time"

	"teagate/internal/broker"
	"teagate/internal/constants"
	"teagate/pkg/models"
)

// ConfigEventProducer announces rule changes so inspection services reload
// their rule sets.
type ConfigEventProducer struct {
	producer broker.Producer
	topic    string
}

func NewConfigEventProducer(producer broker.Producer, topic string) *ConfigEventProducer {
	return &ConfigEventProducer{
		producer: producer,
		topic:    topic,
	}
}

// PublishRuleChanged is a no-op without a producer or topic. ruleID may be
// zero for bulk changes.
func (p *ConfigEventProducer) PublishRuleChanged(ctx context.Context, action string, ruleID int64, changedBy string, metadata map[string]interface{}) error {
	if p == nil || p.producer == nil || p.topic == "" {
		return nil
	}

	event := models.ConfigUpdateEvent{
		EventType:   models.EventTypeRuleChanged,
		ServiceType: models.ServiceTypeSimulation,
		Action:      action,
		Timestamp:   time.Now().UTC(),
		ChangedBy:   changedBy,
		Metadata:    metadata,
	}
	if ruleID > 0 {
		event.RuleID = strconv.FormatInt(ruleID, 10)
	}

	return p.producer.Publish(ctx, p.topic, *event.Envelope(constants.ServiceManagement))
}
