package models

import "time"

// ConfigUpdateEvent announces a change to the rule set. Consumers reload
// their rules when they see one.
type ConfigUpdateEvent struct {
	EventType   string                 `json:"event_type"`
	ServiceType string                 `json:"service_type"`
	RuleID      string                 `json:"rule_id,omitempty"`
	Action      string                 `json:"action"`
	Timestamp   time.Time              `json:"timestamp"`
	ChangedBy   string                 `json:"changed_by,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

const (
	EventTypeRuleChanged = "rule_changed"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionImport = "import"
	ActionReload = "reload"
)

const (
	ServiceTypeSimulation = "simulation"
)

// Envelope wraps the event for the rule events topic.
func (e ConfigUpdateEvent) Envelope(source string) *MessageEnvelope {
	payload := map[string]interface{}{
		"event_type":   e.EventType,
		"service_type": e.ServiceType,
		"action":       e.Action,
		"timestamp":    e.Timestamp,
	}
	if e.RuleID != "" {
		payload["rule_id"] = e.RuleID
	}
	if e.ChangedBy != "" {
		payload["changed_by"] = e.ChangedBy
	}
	if len(e.Metadata) > 0 {
		payload["metadata"] = e.Metadata
	}
	return NewMessageEnvelopeBuilder().
		WithType(MessageTypeConfig).
		WithSource(source).
		WithPayload(payload).
		Build()
}
