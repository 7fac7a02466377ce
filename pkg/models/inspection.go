package models

import (
	"fmt"
	"math"
	"time"
)

// InspectionEvent is one set of measurements taken on a tea lot.
type InspectionEvent struct {
	InspectionID   string    `json:"inspection_id"`
	LotCode        string    `json:"lot_code"`
	Moisture       float64   `json:"moisture"`
	PesticideLevel float64   `json:"pesticide_level"`
	AromaScore     int       `json:"aroma_score"`
	InspectedAt    time.Time `json:"inspected_at"`
}

func (e InspectionEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"inspection_id":   e.InspectionID,
		"lot_code":        e.LotCode,
		"moisture":        e.Moisture,
		"pesticide_level": e.PesticideLevel,
		"aroma_score":     e.AromaScore,
		"inspected_at":    e.InspectedAt.Format(time.RFC3339Nano),
	}
}

// InspectionFromEnvelope reads an InspectionEvent out of a decoded payload.
// Numbers arrive as float64 after JSON decoding; aroma_score must be integral.
func InspectionFromEnvelope(msg MessageEnvelope) (InspectionEvent, error) {
	var event InspectionEvent
	var err error

	if event.InspectionID, err = stringField(msg.Payload, "inspection_id"); err != nil {
		return event, err
	}
	if event.LotCode, err = stringField(msg.Payload, "lot_code"); err != nil {
		return event, err
	}
	if event.Moisture, err = floatField(msg.Payload, "moisture"); err != nil {
		return event, err
	}
	if event.PesticideLevel, err = floatField(msg.Payload, "pesticide_level"); err != nil {
		return event, err
	}

	aroma, err := floatField(msg.Payload, "aroma_score")
	if err != nil {
		return event, err
	}
	if aroma != math.Trunc(aroma) {
		return event, &ValidationError{Field: "aroma_score", Message: "must be an integer"}
	}
	event.AromaScore = int(aroma)

	event.InspectedAt = msg.Timestamp
	if raw, ok := msg.Payload["inspected_at"].(string); ok && raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return event, &ValidationError{Field: "inspected_at", Message: err.Error()}
		}
		event.InspectedAt = parsed
	}

	return event, nil
}

func stringField(payload map[string]interface{}, name string) (string, error) {
	value, ok := payload[name].(string)
	if !ok || value == "" {
		return "", &ValidationError{Field: name, Message: "required string field"}
	}
	return value, nil
}

func floatField(payload map[string]interface{}, name string) (float64, error) {
	switch value := payload[name].(type) {
	case float64:
		return value, nil
	case int:
		return float64(value), nil
	case int64:
		return float64(value), nil
	case nil:
		return 0, &ValidationError{Field: name, Message: "required numeric field"}
	default:
		return 0, &ValidationError{Field: name, Message: fmt.Sprintf("expected number, got %T", value)}
	}
}

// LotVerdict is published for every unique inspection.
type LotVerdict struct {
	InspectionID string          `json:"inspection_id"`
	LotCode      string          `json:"lot_code"`
	Shippable    bool            `json:"shippable"`
	Results      []VerdictResult `json:"results"`
	EvaluatedAt  time.Time       `json:"evaluated_at"`
}

type VerdictResult struct {
	RuleID   int64  `json:"rule_id"`
	RuleName string `json:"rule_name"`
	Result   string `json:"result"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

func (v LotVerdict) Payload() map[string]interface{} {
	results := make([]interface{}, 0, len(v.Results))
	for _, r := range v.Results {
		results = append(results, map[string]interface{}{
			"rule_id":   r.RuleID,
			"rule_name": r.RuleName,
			"result":    r.Result,
			"severity":  r.Severity,
			"message":   r.Message,
		})
	}
	return map[string]interface{}{
		"inspection_id": v.InspectionID,
		"lot_code":      v.LotCode,
		"shippable":     v.Shippable,
		"results":       results,
		"evaluated_at":  v.EvaluatedAt.Format(time.RFC3339Nano),
	}
}
