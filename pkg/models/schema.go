package models

import "fmt"

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateMessageEnvelope checks the fields every consumer relies on before
// a message reaches a handler. Payload contents are checked by the handler.
func ValidateMessageEnvelope(msg *MessageEnvelope) error {
	if msg == nil {
		return &ValidationError{Field: "envelope", Message: "envelope is empty"}
	}

	required := []struct {
		field   string
		missing bool
	}{
		{"id", msg.ID == ""},
		{"type", msg.Type == ""},
		{"source", msg.Source == ""},
		{"timestamp", msg.Timestamp.IsZero()},
		{"payload", msg.Payload == nil},
	}
	for _, r := range required {
		if r.missing {
			return &ValidationError{Field: r.field, Message: "required"}
		}
	}
	return nil
}
