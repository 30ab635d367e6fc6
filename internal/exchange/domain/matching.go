package domain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// MatchResult 一次撮合回合的结果
type MatchResult struct {
	// 撮合后的吃单（终态）
	Order *Order `json:"order"`
	// 本回合产生的成交列表
	Trades []*Trade `json:"trades"`
}

// TradeIDFunc 成交 ID 生成函数
type TradeIDFunc func() string

// MatchingEngine 撮合引擎：将一笔新订单转化为零或多笔成交与一个终态。
// 价格优先、时间优先，成交价始终为挂单方价格。引擎本身无状态，
// 回合内的隔离与原子性由传入的 MatchStore 背后的事务保证。
type MatchingEngine struct {
	nextTradeID TradeIDFunc
	logger      *slog.Logger
}

// NewMatchingEngine 构造函数
func NewMatchingEngine(nextTradeID TradeIDFunc, logger *slog.Logger) *MatchingEngine {
	return &MatchingEngine{
		nextTradeID: nextTradeID,
		logger:      logger.With("module", "matching_engine"),
	}
}

// MatchOrder 执行一次完整的撮合回合。
//
// 候选序列在回合开始时取出一次，之后不再回读存储：同一挂单在回合内的
// 多次更新全部作用于内存中的同一实例，避免丢失前序迭代的成交量。
// 每笔成交的三元组 (吃单, 挂单, 成交) 逐笔写入同一事务，回合整体提交或整体回滚。
func (e *MatchingEngine) MatchOrder(ctx context.Context, incoming *Order, store MatchStore) (*MatchResult, error) {
	result := &MatchResult{Order: incoming}

	candidates, err := store.FindEligibleCounterOrders(ctx, incoming.Side.Opposite(), incoming.Price, incoming.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch counter orders: %w", err)
	}

	e.logger.Debug("matching episode started",
		"order_id", incoming.OrderID,
		"side", incoming.Side,
		"price", incoming.Price.String(),
		"candidates", len(candidates))

	for _, resting := range candidates {
		if incoming.RemainingQuantity().LessThanOrEqual(decimal.Zero) {
			break
		}

		// 防御性复核：序列按价格排序，一旦不交叉则后续候选也必然不交叉
		if !incoming.Crosses(resting) {
			break
		}

		tradeQty := Round2(decimal.Min(incoming.RemainingQuantity(), resting.RemainingQuantity()))
		if tradeQty.LessThanOrEqual(decimal.Zero) {
			// 0.01 边界下的舍入残余，跳过该挂单，不产生成交
			continue
		}

		trade := NewTrade(e.nextTradeID(), incoming, resting, resting.Price, tradeQty)

		if err := incoming.ApplyFill(tradeQty); err != nil {
			return nil, err
		}
		if err := resting.ApplyFill(tradeQty); err != nil {
			return nil, err
		}

		if err := store.PersistMatchResult(ctx, incoming, resting, trade); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreConflict, err)
		}

		result.Trades = append(result.Trades, trade)

		e.logger.Debug("trade executed",
			"trade_id", trade.TradeID,
			"price", trade.Price.String(),
			"quantity", trade.Quantity.String(),
			"incoming_remaining", incoming.RemainingQuantity().String())
	}

	e.logger.Info("matching episode completed",
		"order_id", incoming.OrderID,
		"status", incoming.Status,
		"trades", len(result.Trades),
		"filled", incoming.FilledQuantity.String(),
		"quantity", incoming.Quantity.String())

	return result, nil
}
