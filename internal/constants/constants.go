package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	CacheKeyPrefixInspection = "inspection:"
)

const (
	DefaultInspectionTopic = "inspection_events"
	DefaultVerdictTopic    = "lot_verdicts"
	DefaultRuleEventsTopic = "rule_events"
)

const (
	DefaultMongoDBName          = "teagate"
	DefaultReportCollection     = "simulation_reports"
	DefaultDatabaseQueryTimeout = 5 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

const (
	DefaultDedupTTLSeconds = 86400
	DefaultReloadInterval  = 60 * time.Second
)

const (
	FallbackAllow = "allow"
	FallbackDeny  = "deny"
)

const (
	MaxLotCodeLength  = 64
	MaxRuleNameLength = 200
	MaxScore          = 100
	MaxMoisture       = 100.0
)

const (
	ServiceManagement = "management-service"
	ServiceInspection = "inspection-service"
)
