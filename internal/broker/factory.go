package broker

import (
	"fmt"

	"teagate/internal/config"
	"teagate/internal/logger"
)

const TypeKafka = "kafka"

func NewProducer(cfg config.BrokerConfig, serviceName string, log logger.Logger) (Producer, error) {
	switch cfg.Type {
	case TypeKafka:
		return NewKafkaProducer(cfg.Kafka, serviceName, log), nil
	default:
		return nil, fmt.Errorf("unknown broker type: %s", cfg.Type)
	}
}

func NewConsumer(cfg config.BrokerConfig, serviceName string, log logger.Logger) (Consumer, error) {
	switch cfg.Type {
	case TypeKafka:
		c := NewKafkaConsumer(cfg.Kafka, log)
		c.SetServiceName(serviceName)
		return c, nil
	default:
		return nil, fmt.Errorf("unknown broker type: %s", cfg.Type)
	}
}
