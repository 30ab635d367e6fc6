// Package messaging 提供成交事件的 Kafka 发布实现
package messaging

import (
	"context"

	"github.com/wyfcoding/spotexchange/internal/exchange/application"
	"github.com/wyfcoding/spotexchange/pkg/mq"
)

// KafkaTradePublisher 将成交事件发布到 Kafka。
// 以交易对符号作为分区键，保证同一标的的事件有序。
type KafkaTradePublisher struct {
	producer *mq.Producer
}

// NewKafkaTradePublisher 创建发布器
func NewKafkaTradePublisher(producer *mq.Producer) *KafkaTradePublisher {
	return &KafkaTradePublisher{producer: producer}
}

// PublishTradeExecuted 发布一条成交事件
func (p *KafkaTradePublisher) PublishTradeExecuted(ctx context.Context, event application.TradeExecutedEvent) error {
	return p.producer.SendMessage(ctx, event.Symbol, event)
}

// Close 关闭底层生产者
func (p *KafkaTradePublisher) Close() error {
	return p.producer.Close()
}
