package config_handler

import (
	"context"
	"encoding/json"
	"fmt"

	"teagate/internal/logger"
	"teagate/pkg/models"
	"teagate/pkg/retry"
)

// ConfigReloader re-reads the rule set from its store.
type ConfigReloader interface {
	ReloadRules(ctx context.Context) error
}

// ConfigUpdater applies dedup settings carried in a config event.
type ConfigUpdater interface {
	UpdateFieldsToHash(fields []string) error
}

type Handler struct {
	expectedEventType   string
	expectedServiceType string
	reloader            ConfigReloader
	updater             ConfigUpdater
	logger              logger.Logger
}

func NewHandler(expectedEventType, expectedServiceType string, log logger.Logger) *Handler {
	return &Handler{
		expectedEventType:   expectedEventType,
		expectedServiceType: expectedServiceType,
		logger:              log,
	}
}

func (h *Handler) WithReloader(reloader ConfigReloader) *Handler {
	h.reloader = reloader
	return h
}

func (h *Handler) WithUpdater(updater ConfigUpdater) *Handler {
	h.updater = updater
	return h
}

// HandleConfigUpdateEvent is a broker.HandlerFunc. Events for other event or
// service types are ignored. Undecodable events are fatal so the consumer
// parks them instead of retrying.
func (h *Handler) HandleConfigUpdateEvent(ctx context.Context, envelope models.MessageEnvelope) error {
	eventType, _ := envelope.Payload["event_type"].(string)
	serviceType, _ := envelope.Payload["service_type"].(string)
	if eventType == "" || serviceType == "" {
		h.logger.WarnwCtx(ctx, "Config event missing event_type or service_type", "id", envelope.ID)
		return nil
	}
	if eventType != h.expectedEventType || serviceType != h.expectedServiceType {
		return nil
	}

	event, err := decodeEvent(envelope.Payload)
	if err != nil {
		h.logger.ErrorwCtx(ctx, "Failed to decode config event", "error", err, "id", envelope.ID)
		return retry.NewFatalError(err)
	}

	h.logger.InfowCtx(ctx, "Received config update event",
		"event_type", event.EventType,
		"action", event.Action,
		"rule_id", event.RuleID,
		"changed_by", event.ChangedBy,
	)

	if h.reloader != nil {
		if err := h.reloader.ReloadRules(ctx); err != nil {
			h.logger.ErrorwCtx(ctx, "Failed to reload rules after config update", "error", err)
			return err
		}
		h.logger.InfowCtx(ctx, "Rules reloaded after config update", "action", event.Action)
	}

	if h.updater == nil {
		return nil
	}
	fields := stringSlice(event.Metadata["fields_to_hash"])
	if len(fields) == 0 {
		return nil
	}
	if err := h.updater.UpdateFieldsToHash(fields); err != nil {
		h.logger.ErrorwCtx(ctx, "Failed to update fields to hash", "error", err)
		return retry.NewFatalError(err)
	}
	return nil
}

func decodeEvent(payload map[string]interface{}) (models.ConfigUpdateEvent, error) {
	var event models.ConfigUpdateEvent
	raw, err := json.Marshal(payload)
	if err != nil {
		return event, fmt.Errorf("marshal payload: %w", err)
	}
	if err := json.Unmarshal(raw, &event); err != nil {
		return event, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}

func stringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		if s, ok := v.([]string); ok {
			return s
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
