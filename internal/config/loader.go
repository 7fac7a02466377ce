package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "TEAGATE"

func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetConfigFile(configFile)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 15)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.postgres.sslmode", "disable")

	v.SetDefault("broker.kafka.inspection_topic", "inspection_events")
	v.SetDefault("broker.kafka.verdict_topic", "lot_verdicts")
	v.SetDefault("broker.kafka.rule_events_topic", "rule_events")
	v.SetDefault("broker.kafka.retry.max_attempts", 3)
	v.SetDefault("broker.kafka.retry.multiplier", 2.0)

	// 60 requests per minute with a burst of 10.
	v.SetDefault("management.rate_limit.rps", 1.0)
	v.SetDefault("management.rate_limit.burst", 10)
	v.SetDefault("management.audit.enabled", true)

	v.SetDefault("simulation.reload.interval_seconds", 60)
	v.SetDefault("simulation.reload.jitter_seconds", 5)
	v.SetDefault("simulation.archive.collection", "simulation_reports")

	v.SetDefault("inspection.hash_algorithm", "sha256")
	v.SetDefault("inspection.ttl_seconds", 86400)
	v.SetDefault("inspection.on_redis_error", "allow")
	v.SetDefault("inspection.fields_to_hash", []string{"inspection_id", "lot_code"})
}

func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("broker.kafka.brokers", "BROKER_KAFKA_BROKERS")
	v.BindEnv("broker.kafka.group_id", "BROKER_KAFKA_GROUP_ID")
	v.BindEnv("broker.kafka.inspection_topic", "BROKER_KAFKA_INSPECTION_TOPIC")
	v.BindEnv("broker.kafka.verdict_topic", "BROKER_KAFKA_VERDICT_TOPIC")
	v.BindEnv("broker.kafka.rule_events_topic", "BROKER_KAFKA_RULE_EVENTS_TOPIC")
	v.BindEnv("broker.kafka.dlq_topic", "BROKER_KAFKA_DLQ_TOPIC")

	v.BindEnv("database.postgres.host", "DATABASE_POSTGRES_HOST")
	v.BindEnv("database.postgres.port", "DATABASE_POSTGRES_PORT")
	v.BindEnv("database.postgres.user", "DATABASE_POSTGRES_USER")
	v.BindEnv("database.postgres.password", "DATABASE_POSTGRES_PASSWORD")
	v.BindEnv("database.postgres.dbname", "DATABASE_POSTGRES_DBNAME")
	v.BindEnv("database.postgres.sslmode", "DATABASE_POSTGRES_SSLMODE")

	v.BindEnv("database.redis.host", "DATABASE_REDIS_HOST")
	v.BindEnv("database.redis.port", "DATABASE_REDIS_PORT")
	v.BindEnv("database.redis.password", "DATABASE_REDIS_PASSWORD")
	v.BindEnv("database.redis.db", "DATABASE_REDIS_DB")

	v.BindEnv("database.mongodb.uri", "DATABASE_MONGODB_URI")
	v.BindEnv("database.mongodb.database", "DATABASE_MONGODB_DATABASE")

	v.BindEnv("server.port", "SERVER_PORT")

	v.BindEnv("logging.level", "LOGGING_LEVEL")
	v.BindEnv("logging.format", "LOGGING_FORMAT")

	v.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
}

// applyEnvOverrides handles values viper cannot split on its own.
func applyEnvOverrides(cfg *Config) {
	if brokersEnv := os.Getenv("BROKER_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Broker.Kafka.Brokers = brokers
		}
	}
}
