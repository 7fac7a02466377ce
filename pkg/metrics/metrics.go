package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RuleCompilationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rule_compilations_total",
			Help: "Total number of rule text compilations (count)",
		},
		[]string{"status", "reason"},
	)

	RuleCacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rule_cache_lookups_total",
			Help: "Total number of compiled rule cache lookups (count)",
		},
		[]string{"result"},
	)

	RuleEvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rule_evaluations_total",
			Help: "Total number of rule evaluations against tea lot snapshots (count)",
		},
		[]string{"rule_name", "result", "severity"},
	)

	SimulationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simulations_total",
			Help: "Total number of tea lot simulations (count)",
		},
		[]string{"source", "shippable"},
	)

	SimulationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simulation_duration_ms",
			Help:    "Duration of a tea lot simulation in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"source"},
	)

	ActiveRules = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "simulation_active_rules",
			Help: "Number of rules loaded in the inspection rule set (count)",
		},
	)

	InspectionMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inspection_messages_total",
			Help: "Total number of inspection events processed (count)",
		},
		[]string{"status"},
	)

	InspectionProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inspection_processing_duration_ms",
			Help:    "Processing duration of an inspection event in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"status"},
	)

	DedupCacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "inspection_dedup_cache_size",
			Help: "Approximate number of inspection dedup keys in Redis (count)",
		},
	)

	ReportArchiveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simulation_report_archive_total",
			Help: "Total number of simulation reports written to the archive (count)",
		},
		[]string{"status"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"service", "topic"},
	)

	DLQMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dlq_messages_total",
			Help: "Total number of messages sent to DLQ (count)",
		},
		[]string{"service", "topic", "reason"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	FallbackUsageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_usage_total",
			Help: "Total number of times fallback strategies were used (count)",
		},
		[]string{"service", "strategy"},
	)

	KafkaMessagesReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_read_total",
			Help: "Total number of messages read from Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessageSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_message_size_bytes",
			Help:    "Size of Kafka messages in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000},
		},
		[]string{"service", "topic", "direction"},
	)

	KafkaWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_write_duration_ms",
			Help:    "Duration of writing messages to Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "topic"},
	)

	DatabaseQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries (count)",
		},
		[]string{"service", "database", "operation", "status"},
	)

	DatabaseQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_ms",
			Help:    "Duration of database queries in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"service", "database", "operation"},
	)
)

var (
	simulationOnce     sync.Once
	inspectionOnce     sync.Once
	brokerOnce         sync.Once
	circuitBreakerOnce sync.Once
	managementOnce     sync.Once
	databaseOnce       sync.Once
)

// RegisterSimulationMetrics and the other Register functions are safe to
// call more than once.
func RegisterSimulationMetrics() {
	simulationOnce.Do(func() {
		prometheus.MustRegister(RuleCompilationsTotal)
		prometheus.MustRegister(RuleCacheLookupsTotal)
		prometheus.MustRegister(RuleEvaluationsTotal)
		prometheus.MustRegister(SimulationsTotal)
		prometheus.MustRegister(SimulationDuration)
		prometheus.MustRegister(ActiveRules)
		prometheus.MustRegister(ReportArchiveTotal)
	})
}

func RegisterInspectionMetrics() {
	inspectionOnce.Do(func() {
		prometheus.MustRegister(InspectionMessagesTotal)
		prometheus.MustRegister(InspectionProcessingDuration)
		prometheus.MustRegister(DedupCacheSize)
		prometheus.MustRegister(FallbackUsageTotal)
	})
}

func RegisterBrokerMetrics() {
	brokerOnce.Do(func() {
		prometheus.MustRegister(RetryAttemptsTotal)
		prometheus.MustRegister(DLQMessagesTotal)
		prometheus.MustRegister(KafkaMessagesReadTotal)
		prometheus.MustRegister(KafkaMessagesWrittenTotal)
		prometheus.MustRegister(KafkaMessageSizeBytes)
		prometheus.MustRegister(KafkaWriteDuration)
	})
}

func RegisterCircuitBreakerMetrics() {
	circuitBreakerOnce.Do(func() {
		prometheus.MustRegister(CircuitBreakerState)
		prometheus.MustRegister(CircuitBreakerRequests)
		prometheus.MustRegister(CircuitBreakerFailures)
	})
}

func RegisterManagementMetrics() {
	managementOnce.Do(func() {
		prometheus.MustRegister(RateLimitRequestsTotal)
	})
	RegisterDatabaseMetrics()
}

func RegisterDatabaseMetrics() {
	databaseOnce.Do(func() {
		prometheus.MustRegister(DatabaseQueriesTotal)
		prometheus.MustRegister(DatabaseQueryDuration)
	})
}

func IncRuleCompilation(status, reason string) {
	RuleCompilationsTotal.WithLabelValues(status, reason).Inc()
}

func IncRuleCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	RuleCacheLookupsTotal.WithLabelValues(result).Inc()
}

func IncRuleEvaluation(ruleName, result, severity string) {
	RuleEvaluationsTotal.WithLabelValues(ruleName, result, severity).Inc()
}

func ObserveSimulation(source string, shippable bool, duration time.Duration) {
	SimulationsTotal.WithLabelValues(source, strconv.FormatBool(shippable)).Inc()
	SimulationDuration.WithLabelValues(source).Observe(float64(duration.Milliseconds()))
}

func SetActiveRules(count int) {
	ActiveRules.Set(float64(count))
}

func ObserveInspection(status string, duration time.Duration) {
	InspectionMessagesTotal.WithLabelValues(status).Inc()
	InspectionProcessingDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func SetDedupCacheSize(size int) {
	DedupCacheSize.Set(float64(size))
}

func IncReportArchive(status string) {
	ReportArchiveTotal.WithLabelValues(status).Inc()
}

func IncKafkaMessagesRead(service, topic string) {
	KafkaMessagesReadTotal.WithLabelValues(service, topic).Inc()
}

func IncKafkaMessagesWritten(service, topic string) {
	KafkaMessagesWrittenTotal.WithLabelValues(service, topic).Inc()
}

func ObserveKafkaMessageSize(service, topic, direction string, sizeBytes int) {
	KafkaMessageSizeBytes.WithLabelValues(service, topic, direction).Observe(float64(sizeBytes))
}

func ObserveKafkaWriteDuration(service, topic string, duration time.Duration) {
	KafkaWriteDuration.WithLabelValues(service, topic).Observe(float64(duration.Milliseconds()))
}

// ObserveDatabaseQuery records one query. err decides the status label.
func ObserveDatabaseQuery(service, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DatabaseQueriesTotal.WithLabelValues(service, "postgresql", operation, status).Inc()
	DatabaseQueryDuration.WithLabelValues(service, "postgresql", operation).Observe(float64(time.Since(start).Milliseconds()))
}
