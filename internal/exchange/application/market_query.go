package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/spotexchange/internal/exchange/domain"
	"github.com/wyfcoding/spotexchange/pkg/logger"
)

// summaryWindow 市场摘要的统计窗口
const summaryWindow = 24 * time.Hour

// SummaryCache 摘要缓存端口，nil 实现表示不缓存
type SummaryCache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// MarketQueryService 市场行情查询服务
type MarketQueryService struct {
	tradeRepo domain.TradeRepository
	orderRepo domain.OrderRepository
	cache     SummaryCache
	cacheTTL  time.Duration
	symbol    string
}

// NewMarketQueryService 创建行情查询服务
func NewMarketQueryService(
	tradeRepo domain.TradeRepository,
	orderRepo domain.OrderRepository,
	cache SummaryCache,
	cacheTTL time.Duration,
	symbol string,
) *MarketQueryService {
	return &MarketQueryService{
		tradeRepo: tradeRepo,
		orderRepo: orderRepo,
		cache:     cache,
		cacheTTL:  cacheTTL,
		symbol:    symbol,
	}
}

func (s *MarketQueryService) cacheKey() string {
	return "market:summary:" + s.symbol
}

// GetSummary 获取 24 小时市场摘要，带读穿缓存。
// 缓存不可用时直接回源，不向调用方暴露缓存错误。
func (s *MarketQueryService) GetSummary(ctx context.Context) (*MarketSummaryDTO, error) {
	if s.cache != nil && s.cacheTTL > 0 {
		var cached MarketSummaryDTO
		if err := s.cache.GetJSON(ctx, s.cacheKey(), &cached); err == nil {
			return &cached, nil
		}
	}

	summary, err := s.computeSummary(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.SetJSON(ctx, s.cacheKey(), summary, s.cacheTTL); err != nil {
			logger.Warn(ctx, "failed to cache market summary", "error", err)
		}
	}
	return summary, nil
}

// computeSummary 从存储聚合摘要。
// 最新价取全量最近一笔成交；窗口起始价取窗口内首笔成交价，窗口为空时
// 退化为最新价，涨跌为零。
func (s *MarketQueryService) computeSummary(ctx context.Context) (*MarketSummaryDTO, error) {
	defer logger.LogDuration(ctx, "market summary computed", "symbol", s.symbol)()

	last, err := s.tradeRepo.Last(ctx)
	if err != nil {
		return nil, err
	}
	windowTrades, err := s.tradeRepo.ListSince(ctx, time.Now().Add(-summaryWindow))
	if err != nil {
		return nil, err
	}
	totalTrades, err := s.tradeRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	openOrders, err := s.orderRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	summary := &MarketSummaryDTO{
		Symbol:      s.symbol,
		TotalTrades: totalTrades,
		OpenOrders:  openOrders,
		GeneratedAt: time.Now(),
	}

	lastPrice := decimal.Zero
	if last != nil {
		lastPrice = last.Price
	}
	summary.LastPrice = lastPrice

	firstPrice := lastPrice
	if len(windowTrades) > 0 {
		firstPrice = windowTrades[0].Price

		high := windowTrades[0].Price
		low := windowTrades[0].Price
		volume := decimal.Zero
		for _, t := range windowTrades {
			if t.Price.GreaterThan(high) {
				high = t.Price
			}
			if t.Price.LessThan(low) {
				low = t.Price
			}
			volume = volume.Add(t.Price.Mul(t.Quantity))
		}
		summary.High24h = high
		summary.Low24h = low
		summary.Volume24h = domain.Round2(volume)
	} else {
		summary.High24h = lastPrice
		summary.Low24h = lastPrice
		summary.Volume24h = decimal.Zero
	}

	change := domain.Round2(lastPrice.Sub(firstPrice))
	summary.PriceChange24h = change
	if firstPrice.IsPositive() {
		summary.PriceChangePercent24h = domain.Round2(change.Div(firstPrice).Mul(decimal.NewFromInt(100)))
	} else {
		summary.PriceChangePercent24h = decimal.Zero
	}
	return summary, nil
}
