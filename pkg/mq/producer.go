// Package mq 提供基于 Kafka 的消息发布封装
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/wyfcoding/spotexchange/pkg/config"
	"github.com/wyfcoding/spotexchange/pkg/logger"
)

// Producer Kafka 消息生产者
type Producer struct {
	writer *kafka.Writer
	cfg    config.KafkaConfig
}

// NewProducer 创建 Kafka 生产者
func NewProducer(cfg config.KafkaConfig, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxRetries,
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer, cfg: cfg}
}

// SendMessage 发送消息，key 用于分区路由
func (p *Producer) SendMessage(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error(ctx, "failed to send kafka message",
			"topic", p.writer.Topic, "key", key, "error", err)
		return fmt.Errorf("failed to write message: %w", err)
	}

	logger.Debug(ctx, "kafka message sent", "topic", p.writer.Topic, "key", key)
	return nil
}

// Close 关闭生产者
func (p *Producer) Close() error {
	return p.writer.Close()
}
