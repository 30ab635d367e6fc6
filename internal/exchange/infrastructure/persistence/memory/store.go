// Package memory 提供内存版仓储实现，用于测试与本地开发。
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/spotexchange/internal/exchange/domain"
)

// Store 内存存储，同时实现订单仓储、成交仓储与撮合存储。
// 内存模式下没有事务，回合的原子性仅靠单把锁保证。
// 与 MySQL 实现同构：读方法返回副本，写入以 OrderID 回写库内实例，
// 库内实例只在持锁状态下被修改。
type Store struct {
	mu     sync.RWMutex
	orders []*domain.Order
	trades []*domain.Trade
	seq    uint
}

// NewStore 创建内存存储
func NewStore() *Store {
	return &Store{}
}

// Create 创建订单。入库的是调用方实例的副本，ID 与创建时间回填给调用方。
func (s *Store) Create(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	order.ID = s.seq
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	stored := *order
	s.orders = append(s.orders, &stored)
	return nil
}

// RunEpisode 直接执行 fn。内存模式没有事务，回合的原子性由调用方的串行化保证。
func (s *Store) RunEpisode(ctx context.Context, fn func(ctx context.Context, store domain.EpisodeStore) error) error {
	return fn(ctx, s)
}

// Get 按订单 ID 获取订单副本，不存在时返回 nil
func (s *Store) Get(_ context.Context, orderID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if o := s.findLocked(orderID); o != nil {
		c := *o
		return &c, nil
	}
	return nil, nil
}

// ListActiveBySide 查询一侧的全部活跃订单，返回副本
func (s *Store) ListActiveBySide(_ context.Context, side domain.OrderSide) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Order
	for _, o := range s.orders {
		if o.Side == side && o.IsActive() {
			c := *o
			result = append(result, &c)
		}
	}
	sortByPriority(result, side)
	return result, nil
}

// CountActive 统计双边活跃订单数
func (s *Store) CountActive(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, o := range s.orders {
		if o.IsActive() {
			count++
		}
	}
	return count, nil
}

// FindEligibleCounterOrders 查询可成交的对手挂单，返回副本。
// 引擎在回合内修改副本，经 PersistMatchResult 回写。
func (s *Store) FindEligibleCounterOrders(_ context.Context, side domain.OrderSide, limitPrice decimal.Decimal, excludeUserID string) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Order
	for _, o := range s.orders {
		if o.Side != side || !o.IsActive() || o.UserID == excludeUserID {
			continue
		}
		if side == domain.OrderSideSell && o.Price.GreaterThan(limitPrice) {
			continue
		}
		if side == domain.OrderSideBuy && o.Price.LessThan(limitPrice) {
			continue
		}
		c := *o
		result = append(result, &c)
	}
	sortByPriority(result, side)
	return result, nil
}

// PersistMatchResult 以 OrderID 将双方成交进度回写库内实例并追加成交记录
func (s *Store) PersistMatchResult(_ context.Context, incoming, resting *domain.Order, trade *domain.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range []*domain.Order{incoming, resting} {
		stored := s.findLocked(o.OrderID)
		if stored == nil {
			return fmt.Errorf("order %s not found", o.OrderID)
		}
		stored.FilledQuantity = o.FilledQuantity
		stored.Status = o.Status
	}

	s.seq++
	trade.ID = s.seq
	s.trades = append(s.trades, trade)
	return nil
}

// findLocked 持锁状态下按订单 ID 定位库内实例
func (s *Store) findLocked(orderID string) *domain.Order {
	for _, o := range s.orders {
		if o.OrderID == orderID {
			return o
		}
	}
	return nil
}

// ListHistory 获取成交历史，最新在前
func (s *Store) ListHistory(_ context.Context, limit int) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Trade, len(s.trades))
	copy(result, s.trades)
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].ExecutedAt.Equal(result[j].ExecutedAt) {
			return result[i].ExecutedAt.After(result[j].ExecutedAt)
		}
		return result[i].ID > result[j].ID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Last 获取最近一笔成交，无成交时返回 nil
func (s *Store) Last(ctx context.Context) (*domain.Trade, error) {
	trades, err := s.ListHistory(ctx, 1)
	if err != nil || len(trades) == 0 {
		return nil, err
	}
	return trades[0], nil
}

// Count 统计全部成交笔数
func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.trades)), nil
}

// ListSince 获取指定时刻之后的成交，按时间升序
func (s *Store) ListSince(_ context.Context, since time.Time) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.trades {
		if !t.ExecutedAt.Before(since) {
			result = append(result, t)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].ExecutedAt.Equal(result[j].ExecutedAt) {
			return result[i].ExecutedAt.Before(result[j].ExecutedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// 价格优先、时间优先排序：买盘价格降序、卖盘价格升序，同价按入库先后
func sortByPriority(orders []*domain.Order, side domain.OrderSide) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].Price.Equal(orders[j].Price) {
			if side == domain.OrderSideBuy {
				return orders[i].Price.GreaterThan(orders[j].Price)
			}
			return orders[i].Price.LessThan(orders[j].Price)
		}
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
}
