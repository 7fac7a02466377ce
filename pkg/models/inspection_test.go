package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectionFromEnvelope_RoundTripThroughJSON(t *testing.T) {
	inspectedAt := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	event := InspectionEvent{
		InspectionID:   "insp-1",
		LotCode:        "LOT-2026-001",
		Moisture:       8.8,
		PesticideLevel: 0.1,
		AromaScore:     78,
		InspectedAt:    inspectedAt,
	}

	envelope := NewMessageEnvelopeBuilder().
		WithType(MessageTypeInspection).
		WithSource("scale-01").
		WithPayload(event.Payload()).
		Build()
	require.NoError(t, ValidateMessageEnvelope(envelope))

	data, err := json.Marshal(envelope)
	require.NoError(t, err)
	var decoded MessageEnvelope
	require.NoError(t, json.Unmarshal(data, &decoded))

	got, err := InspectionFromEnvelope(decoded)
	require.NoError(t, err)
	assert.Equal(t, event, got)
}

func TestInspectionFromEnvelope_Errors(t *testing.T) {
	base := func() map[string]interface{} {
		return map[string]interface{}{
			"inspection_id":   "insp-1",
			"lot_code":        "LOT-2026-001",
			"moisture":        8.8,
			"pesticide_level": 0.1,
			"aroma_score":     78.0,
		}
	}

	tests := []struct {
		name      string
		mutate    func(map[string]interface{})
		wantField string
	}{
		{"missing lot code", func(p map[string]interface{}) { delete(p, "lot_code") }, "lot_code"},
		{"string moisture", func(p map[string]interface{}) { p["moisture"] = "wet" }, "moisture"},
		{"missing pesticide", func(p map[string]interface{}) { delete(p, "pesticide_level") }, "pesticide_level"},
		{"fractional aroma", func(p map[string]interface{}) { p["aroma_score"] = 78.5 }, "aroma_score"},
		{"bad timestamp", func(p map[string]interface{}) { p["inspected_at"] = "yesterday" }, "inspected_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := base()
			tt.mutate(payload)
			_, err := InspectionFromEnvelope(MessageEnvelope{Payload: payload, Timestamp: time.Now()})
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantField, validationErr.Field)
		})
	}
}

func TestInspectionFromEnvelope_DefaultsToEnvelopeTimestamp(t *testing.T) {
	ts := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	got, err := InspectionFromEnvelope(MessageEnvelope{
		Timestamp: ts,
		Payload: map[string]interface{}{
			"inspection_id":   "insp-2",
			"lot_code":        "LOT-2026-002",
			"moisture":        9.6,
			"pesticide_level": 0.08,
			"aroma_score":     82,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, ts, got.InspectedAt)
	assert.Equal(t, 82, got.AromaScore)
}

func TestValidateMessageEnvelope(t *testing.T) {
	valid := func() *MessageEnvelope {
		return NewMessageEnvelopeBuilder().WithType(MessageTypeInspection).WithSource("scale-01").Build()
	}

	tests := []struct {
		name      string
		envelope  *MessageEnvelope
		wantField string
	}{
		{name: "valid", envelope: valid()},
		{name: "nil", envelope: nil, wantField: "envelope"},
		{name: "no id", envelope: func() *MessageEnvelope { e := valid(); e.ID = ""; return e }(), wantField: "id"},
		{name: "no type", envelope: func() *MessageEnvelope { e := valid(); e.Type = ""; return e }(), wantField: "type"},
		{name: "no source", envelope: func() *MessageEnvelope { e := valid(); e.Source = ""; return e }(), wantField: "source"},
		{name: "no timestamp", envelope: func() *MessageEnvelope { e := valid(); e.Timestamp = time.Time{}; return e }(), wantField: "timestamp"},
		{name: "no payload", envelope: func() *MessageEnvelope { e := valid(); e.Payload = nil; return e }(), wantField: "payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessageEnvelope(tt.envelope)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantField, validationErr.Field)
		})
	}
}
