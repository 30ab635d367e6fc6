package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// 创建订单
	Create(ctx context.Context, order *Order) error
	// 获取订单
	Get(ctx context.Context, orderID string) (*Order, error)
	// 按方向获取所有活跃订单：买盘价格降序、卖盘价格升序，同价按创建先后
	ListActiveBySide(ctx context.Context, side OrderSide) ([]*Order, error)
	// 统计活跃订单数（OPEN + PARTIALLY_FILLED，双边）
	CountActive(ctx context.Context) (int64, error)
}

// TradeRepository 成交记录仓储接口
type TradeRepository interface {
	// 获取成交历史，最新在前
	ListHistory(ctx context.Context, limit int) ([]*Trade, error)
	// 获取最近一笔成交，无成交时返回 nil
	Last(ctx context.Context) (*Trade, error)
	// 统计全部成交笔数
	Count(ctx context.Context) (int64, error)
	// 获取指定时刻之后的成交，按时间升序
	ListSince(ctx context.Context, since time.Time) ([]*Trade, error)
}

// MatchStore 撮合回合依赖的存储端口。
// 一次回合内的所有调用必须落在同一个事务边界上，由调用方保证。
type MatchStore interface {
	// 获取可成交的对手挂单：对手方向、状态活跃、价格交叉、排除同一用户，
	// 按价格优先（买单来时卖盘升序、卖单来时买盘降序）、时间优先排序
	FindEligibleCounterOrders(ctx context.Context, side OrderSide, limitPrice decimal.Decimal, excludeUserID string) ([]*Order, error)
	// 原子写入一次成交的三元组：吃单更新、挂单更新、新成交记录
	PersistMatchResult(ctx context.Context, incoming, resting *Order, trade *Trade) error
}

// EpisodeStore 撮合回合内可见的全部存储操作：吃单入库与撮合读写
type EpisodeStore interface {
	// 在回合事务内创建吃单
	Create(ctx context.Context, order *Order) error
	MatchStore
}

// EpisodeRunner 在单个原子边界内执行一次撮合回合。
// MySQL 实现对应一个 SERIALIZABLE 事务，内存实现直接透传。
type EpisodeRunner interface {
	RunEpisode(ctx context.Context, fn func(ctx context.Context, store EpisodeStore) error) error
}
