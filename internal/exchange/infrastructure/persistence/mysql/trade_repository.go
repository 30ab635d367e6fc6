package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wyfcoding/spotexchange/internal/exchange/domain"
)

// TradeRepository 成交记录仓储的 MySQL 实现
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository 创建成交仓储
func NewTradeRepository(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// ListHistory 获取成交历史，最新在前
func (r *TradeRepository) ListHistory(ctx context.Context, limit int) ([]*domain.Trade, error) {
	var trades []*domain.Trade
	q := r.db.WithContext(ctx).
		Order("executed_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}

// Last 获取最近一笔成交，无成交时返回 nil
func (r *TradeRepository) Last(ctx context.Context) (*domain.Trade, error) {
	var trade domain.Trade
	err := r.db.WithContext(ctx).
		Order("executed_at DESC").
		Order("id DESC").
		First(&trade).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last trade: %w", err)
	}
	return &trade, nil
}

// Count 统计全部成交笔数
func (r *TradeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Trade{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}

// ListSince 获取指定时刻之后的成交，按时间升序
func (r *TradeRepository) ListSince(ctx context.Context, since time.Time) ([]*domain.Trade, error) {
	var trades []*domain.Trade
	err := r.db.WithContext(ctx).
		Where("executed_at >= ?", since).
		Order("executed_at ASC").
		Order("id ASC").
		Find(&trades).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list trades since %s: %w", since.Format(time.RFC3339), err)
	}
	return trades, nil
}
