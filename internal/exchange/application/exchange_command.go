package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wyfcoding/spotexchange/internal/exchange/domain"
	"github.com/wyfcoding/spotexchange/pkg/logger"
	"github.com/wyfcoding/spotexchange/pkg/metrics"
)

// EventPublisher 成交事件发布端口，nil 实现表示不发布
type EventPublisher interface {
	PublishTradeExecuted(ctx context.Context, event TradeExecutedEvent) error
}

// ExchangeCommandService 下单撮合命令服务。
// 单标的服务，用一把互斥锁串行化全部撮合回合；锁内再套 SERIALIZABLE 事务，
// 多实例部署时由数据库兜底。
type ExchangeCommandService struct {
	runner      domain.EpisodeRunner
	engine      *domain.MatchingEngine
	orderRepo   domain.OrderRepository
	publisher   EventPublisher
	nextOrderID func() string
	symbol      string

	mu sync.Mutex
}

// NewExchangeCommandService 创建命令服务
func NewExchangeCommandService(
	runner domain.EpisodeRunner,
	engine *domain.MatchingEngine,
	orderRepo domain.OrderRepository,
	publisher EventPublisher,
	nextOrderID func() string,
	symbol string,
) *ExchangeCommandService {
	return &ExchangeCommandService{
		runner:      runner,
		engine:      engine,
		orderRepo:   orderRepo,
		publisher:   publisher,
		nextOrderID: nextOrderID,
		symbol:      symbol,
	}
}

// SubmitOrder 提交一笔新订单并立即撮合。
// 校验失败的订单不产生任何状态变更；撮合回合要么整体生效要么整体回滚。
func (s *ExchangeCommandService) SubmitOrder(ctx context.Context, cmd SubmitOrderCommand) (*SubmitOrderResult, error) {
	price, err := domain.ParseAmount(cmd.Price)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid price", err)
	}
	quantity, err := domain.ParseAmount(cmd.Quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid quantity", err)
	}

	order, err := domain.NewOrder(s.nextOrderID(), cmd.UserID, s.symbol, domain.OrderSide(cmd.Side), price, quantity)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	s.mu.Lock()
	var result *domain.MatchResult
	err = s.runner.RunEpisode(ctx, func(ctx context.Context, store domain.EpisodeStore) error {
		if err := store.Create(ctx, order); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStoreConflict, err)
		}
		matched, err := s.engine.MatchOrder(ctx, order, store)
		if err != nil {
			return err
		}
		result = matched
		return nil
	})
	s.mu.Unlock()

	if err != nil {
		metrics.OrdersTotal.WithLabelValues(cmd.Side, "rejected").Inc()
		return nil, err
	}

	metrics.MatchDuration.Observe(time.Since(start).Seconds())
	metrics.OrdersTotal.WithLabelValues(cmd.Side, string(order.Status)).Inc()
	metrics.TradesTotal.Add(float64(len(result.Trades)))
	s.refreshActiveGauge(ctx)

	s.publishTrades(ctx, result)

	dto := &SubmitOrderResult{
		Order:  toOrderDTO(result.Order),
		Trades: make([]TradeDTO, 0, len(result.Trades)),
	}
	for _, t := range result.Trades {
		dto.Trades = append(dto.Trades, toTradeDTO(t))
	}
	return dto, nil
}

// 回合提交之后发布成交事件。发布失败只记日志，不影响已提交的撮合结果。
func (s *ExchangeCommandService) publishTrades(ctx context.Context, result *domain.MatchResult) {
	if s.publisher == nil {
		return
	}
	for _, t := range result.Trades {
		if err := s.publisher.PublishTradeExecuted(ctx, toTradeExecutedEvent(t)); err != nil {
			logger.Error(ctx, "failed to publish trade event",
				"trade_id", t.TradeID, "error", err)
		}
	}
}

func (s *ExchangeCommandService) refreshActiveGauge(ctx context.Context) {
	count, err := s.orderRepo.CountActive(ctx)
	if err != nil {
		logger.Warn(ctx, "failed to refresh active orders gauge", "error", err)
		return
	}
	metrics.ActiveOrders.Set(float64(count))
}
