// Package mysql 提供基于 GORM 的仓储实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wyfcoding/spotexchange/internal/exchange/domain"
)

var activeStatuses = []domain.OrderStatus{
	domain.OrderStatusOpen,
	domain.OrderStatusPartiallyFilled,
}

// OrderRepository 订单仓储的 MySQL 实现
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create 创建订单
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// Get 按订单 ID 获取订单，不存在时返回 nil
func (r *OrderRepository) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// ListActiveBySide 查询一侧的全部活跃订单。
// 买盘按价格降序、卖盘按价格升序，同价按创建先后。
func (r *OrderRepository) ListActiveBySide(ctx context.Context, side domain.OrderSide) ([]*domain.Order, error) {
	priceOrder := "price ASC"
	if side == domain.OrderSideBuy {
		priceOrder = "price DESC"
	}

	var orders []*domain.Order
	err := r.db.WithContext(ctx).
		Where("side = ? AND status IN ?", side, activeStatuses).
		Order(priceOrder).
		Order("created_at ASC").
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active orders: %w", err)
	}
	return orders, nil
}

// CountActive 统计双边活跃订单数
func (r *OrderRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("status IN ?", activeStatuses).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active orders: %w", err)
	}
	return count, nil
}
