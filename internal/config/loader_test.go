package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: 8081
database:
  postgres:
    host: localhost
    port: 5432
    user: teagate
    password: secret
    dbname: teagate
broker:
  type: kafka
  kafka:
    brokers: ["localhost:9092"]
    group_id: inspection-service
management:
  rate_limit:
    enabled: true
simulation:
  rule_cache:
    enabled: true
    ttl_seconds: 300
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "teagate", cfg.Database.Postgres.DBName)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Broker.Kafka.Brokers)
	assert.Equal(t, "inspection_events", cfg.Broker.Kafka.InspectionTopic)
	assert.Equal(t, "lot_verdicts", cfg.Broker.Kafka.VerdictTopic)
	assert.Equal(t, 3, cfg.Broker.Kafka.Retry.MaxAttempts)
	assert.True(t, cfg.Management.RateLimit.Enabled)
	assert.Equal(t, 1.0, cfg.Management.RateLimit.RPS)
	assert.Equal(t, 10, cfg.Management.RateLimit.Burst)
	assert.True(t, cfg.Simulation.RuleCache.Enabled)
	assert.Equal(t, 300, cfg.Simulation.RuleCache.TTLSeconds)
	assert.Equal(t, []string{"inspection_id", "lot_code"}, cfg.Inspection.FieldsToHash)
	assert.Equal(t, time.Duration(15), cfg.Server.ReadTimeoutSeconds)
}

func TestLoadConfig_BrokerEnvOverride(t *testing.T) {
	t.Setenv("BROKER_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Broker.Kafka.Brokers)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
server:
  port: 70000
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}
