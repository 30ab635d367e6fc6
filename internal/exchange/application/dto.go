// Package application 提供交易所的应用服务：下单撮合命令与行情查询。
package application

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/spotexchange/internal/exchange/domain"
)

// SubmitOrderCommand 下单命令
type SubmitOrderCommand struct {
	// 用户 ID
	UserID string `json:"user_id" binding:"required"`
	// 方向：BUY 或 SELL
	Side string `json:"side" binding:"required"`
	// 委托价格
	Price float64 `json:"price" binding:"required"`
	// 委托数量
	Quantity float64 `json:"quantity" binding:"required"`
}

// OrderDTO 订单视图
type OrderDTO struct {
	OrderID           string          `json:"order_id"`
	UserID            string          `json:"user_id"`
	Symbol            string          `json:"symbol"`
	Side              string          `json:"side"`
	Price             decimal.Decimal `json:"price"`
	Quantity          decimal.Decimal `json:"quantity"`
	FilledQuantity    decimal.Decimal `json:"filled_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
}

// TradeDTO 成交视图
type TradeDTO struct {
	TradeID     string          `json:"trade_id"`
	Symbol      string          `json:"symbol"`
	BuyOrderID  string          `json:"buy_order_id"`
	SellOrderID string          `json:"sell_order_id"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	ExecutedAt  time.Time       `json:"executed_at"`
}

// SubmitOrderResult 下单结果：订单终态与本回合产生的成交
type SubmitOrderResult struct {
	Order  OrderDTO   `json:"order"`
	Trades []TradeDTO `json:"trades"`
}

// OrderbookDTO 订单簿视图
type OrderbookDTO struct {
	Symbol     string     `json:"symbol"`
	BuyOrders  []OrderDTO `json:"buy_orders"`
	SellOrders []OrderDTO `json:"sell_orders"`
}

// MarketSummaryDTO 市场 24 小时摘要
type MarketSummaryDTO struct {
	Symbol                string          `json:"symbol"`
	LastPrice             decimal.Decimal `json:"last_price"`
	PriceChange24h        decimal.Decimal `json:"price_change_24h"`
	PriceChangePercent24h decimal.Decimal `json:"price_change_percent_24h"`
	High24h               decimal.Decimal `json:"high_24h"`
	Low24h                decimal.Decimal `json:"low_24h"`
	Volume24h             decimal.Decimal `json:"volume_24h"`
	TotalTrades           int64           `json:"total_trades"`
	OpenOrders            int64           `json:"open_orders"`
	GeneratedAt           time.Time       `json:"generated_at"`
}

// TradeExecutedEvent 成交事件，发布到消息队列供下游消费
type TradeExecutedEvent struct {
	TradeID     string          `json:"trade_id"`
	Symbol      string          `json:"symbol"`
	BuyOrderID  string          `json:"buy_order_id"`
	SellOrderID string          `json:"sell_order_id"`
	BuyUserID   string          `json:"buy_user_id"`
	SellUserID  string          `json:"sell_user_id"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	ExecutedAt  time.Time       `json:"executed_at"`
}

func toOrderDTO(o *domain.Order) OrderDTO {
	return OrderDTO{
		OrderID:           o.OrderID,
		UserID:            o.UserID,
		Symbol:            o.Symbol,
		Side:              string(o.Side),
		Price:             o.Price,
		Quantity:          o.Quantity,
		FilledQuantity:    o.FilledQuantity,
		RemainingQuantity: o.RemainingQuantity(),
		Status:            string(o.Status),
		CreatedAt:         o.CreatedAt,
	}
}

func toTradeDTO(t *domain.Trade) TradeDTO {
	return TradeDTO{
		TradeID:     t.TradeID,
		Symbol:      t.Symbol,
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		Price:       t.Price,
		Quantity:    t.Quantity,
		ExecutedAt:  t.ExecutedAt,
	}
}

func toTradeExecutedEvent(t *domain.Trade) TradeExecutedEvent {
	return TradeExecutedEvent{
		TradeID:     t.TradeID,
		Symbol:      t.Symbol,
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		BuyUserID:   t.BuyUserID,
		SellUserID:  t.SellUserID,
		Price:       t.Price,
		Quantity:    t.Quantity,
		ExecutedAt:  t.ExecutedAt,
	}
}
