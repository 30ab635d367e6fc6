package mysql

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/spotexchange/internal/exchange/domain"
)

// MatchStore 撮合回合存储的 MySQL 实现。
// 必须用同一个事务句柄构造，整个回合的读写都落在该事务内，
// 与 SERIALIZABLE 隔离级别配合保证回合的原子性。
type MatchStore struct {
	tx *gorm.DB
}

// NewMatchStore 在给定事务上创建撮合存储
func NewMatchStore(tx *gorm.DB) *MatchStore {
	return &MatchStore{tx: tx}
}

// Create 在回合事务内创建吃单
func (s *MatchStore) Create(ctx context.Context, order *domain.Order) error {
	if err := s.tx.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// FindEligibleCounterOrders 查询可成交的对手挂单并加行锁。
// side 为对手方向：查卖盘时取价格不高于限价的挂单并升序排列，
// 查买盘时取价格不低于限价的挂单并降序排列，同价按创建先后。
func (s *MatchStore) FindEligibleCounterOrders(ctx context.Context, side domain.OrderSide, limitPrice decimal.Decimal, excludeUserID string) ([]*domain.Order, error) {
	pricePredicate := "price >= ?"
	priceOrder := "price DESC"
	if side == domain.OrderSideSell {
		pricePredicate = "price <= ?"
		priceOrder = "price ASC"
	}

	var orders []*domain.Order
	err := s.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("side = ? AND status IN ?", side, activeStatuses).
		Where(pricePredicate, limitPrice).
		Where("user_id <> ?", excludeUserID).
		Order(priceOrder).
		Order("created_at ASC").
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find counter orders: %w", err)
	}
	return orders, nil
}

// PersistMatchResult 写入一次成交的三元组。
// 两侧订单仅更新成交进度与状态，成交记录插入新行；任一写入失败都返回错误，
// 由外层事务整体回滚。
func (s *MatchStore) PersistMatchResult(ctx context.Context, incoming, resting *domain.Order, trade *domain.Trade) error {
	if err := s.updateFill(ctx, incoming); err != nil {
		return err
	}
	if err := s.updateFill(ctx, resting); err != nil {
		return err
	}
	if err := s.tx.WithContext(ctx).Create(trade).Error; err != nil {
		return fmt.Errorf("failed to create trade %s: %w", trade.TradeID, err)
	}
	return nil
}

func (s *MatchStore) updateFill(ctx context.Context, order *domain.Order) error {
	res := s.tx.WithContext(ctx).
		Model(&domain.Order{}).
		Where("order_id = ?", order.OrderID).
		Updates(map[string]any{
			"filled_quantity": order.FilledQuantity,
			"status":          order.Status,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update order %s: %w", order.OrderID, res.Error)
	}
	return nil
}
