package models

import "time"

// MessageEnvelope is the wire format of every message on the inspection
// and verdict topics.
type MessageEnvelope struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
	Metadata  Metadata               `json:"metadata"`
}

const (
	MessageTypeInspection = "inspection"
	MessageTypeVerdict    = "verdict"
	MessageTypeConfig     = "config_event"
)

type Metadata struct {
	TraceID       string             `json:"trace_id,omitempty"`
	Deduplication *DeduplicationInfo `json:"deduplication,omitempty"`
	DLQ           *DLQInfo           `json:"dlq,omitempty"`
}

// DLQInfo is set on messages that were parked after exhausting retries.
type DLQInfo struct {
	Reason      string    `json:"reason"`
	SourceTopic string    `json:"source_topic"`
	Attempts    int       `json:"attempts"`
	FailedAt    time.Time `json:"failed_at"`
}

type DeduplicationInfo struct {
	IsUnique  bool      `json:"is_unique"`
	Hash      string    `json:"hash,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}
