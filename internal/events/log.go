package events

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/gymfeed/pkg/logger"
)

// LogProducer 在未启用 Kafka 时把事件写入日志
type LogProducer struct{}

func (LogProducer) WriteMessages(_ context.Context, topic string, msgs ...kafka.Message) error {
	for _, m := range msgs {
		logger.Info("domain event",
			zap.String("topic", topic),
			zap.ByteString("key", m.Key),
			zap.ByteString("value", m.Value),
		)
	}
	return nil
}

func (LogProducer) Close() error { return nil }
