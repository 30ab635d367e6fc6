package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/spotexchange/internal/exchange/infrastructure/persistence/memory"
)

type stubCache struct {
	hits  int
	sets  int
	value *MarketSummaryDTO
}

func (c *stubCache) GetJSON(_ context.Context, _ string, dest any) error {
	if c.value == nil {
		return context.Canceled // 任意错误都视为未命中
	}
	c.hits++
	*dest.(*MarketSummaryDTO) = *c.value
	return nil
}

func (c *stubCache) SetJSON(_ context.Context, _ string, value any, _ time.Duration) error {
	c.sets++
	v := *(value.(*MarketSummaryDTO))
	c.value = &v
	return nil
}

func TestGetSummaryEmptyMarket(t *testing.T) {
	store := memory.NewStore()
	svc := NewMarketQueryService(store, store, nil, 0, "BTC-USDT")

	summary, err := svc.GetSummary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !summary.LastPrice.IsZero() || !summary.Volume24h.IsZero() {
		t.Fatalf("empty market summary not zeroed: last=%s volume=%s", summary.LastPrice, summary.Volume24h)
	}
	if summary.TotalTrades != 0 || summary.OpenOrders != 0 {
		t.Fatalf("empty market counts: trades=%d orders=%d", summary.TotalTrades, summary.OpenOrders)
	}
}

func TestGetSummaryAggregates(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	submit := func(userID, side string, price, qty float64) {
		t.Helper()
		if _, err := env.command.SubmitOrder(ctx, SubmitOrderCommand{
			UserID: userID, Side: side, Price: price, Quantity: qty,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// 10.00 x 1.00 和 10.50 x 2.00 两笔成交，另有一笔未成交挂单
	submit("maker1", "SELL", 10.00, 1)
	submit("taker1", "BUY", 10.00, 1)
	submit("maker2", "SELL", 10.50, 2)
	submit("taker2", "BUY", 10.50, 2)
	submit("idle", "BUY", 9.00, 1)

	svc := NewMarketQueryService(env.store, env.store, nil, 0, "BTC-USDT")
	summary, err := svc.GetSummary(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !summary.LastPrice.Equal(decimal.NewFromFloat(10.50)) {
		t.Fatalf("last price = %s, want 10.50", summary.LastPrice)
	}
	if !summary.High24h.Equal(decimal.NewFromFloat(10.50)) || !summary.Low24h.Equal(decimal.NewFromFloat(10.00)) {
		t.Fatalf("high/low = %s/%s, want 10.50/10.00", summary.High24h, summary.Low24h)
	}
	// 10.00*1.00 + 10.50*2.00 = 31.00
	if !summary.Volume24h.Equal(decimal.NewFromFloat(31.00)) {
		t.Fatalf("volume = %s, want 31.00", summary.Volume24h)
	}
	// 窗口首价 10.00，最新价 10.50
	if !summary.PriceChange24h.Equal(decimal.NewFromFloat(0.50)) {
		t.Fatalf("change = %s, want 0.50", summary.PriceChange24h)
	}
	if !summary.PriceChangePercent24h.Equal(decimal.NewFromFloat(5.00)) {
		t.Fatalf("change percent = %s, want 5.00", summary.PriceChangePercent24h)
	}
	if summary.TotalTrades != 2 {
		t.Fatalf("total trades = %d, want 2", summary.TotalTrades)
	}
	if summary.OpenOrders != 1 {
		t.Fatalf("open orders = %d, want 1", summary.OpenOrders)
	}
}

func TestGetSummaryUsesCache(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	c := &stubCache{}

	svc := NewMarketQueryService(env.store, env.store, c, 5*time.Second, "BTC-USDT")

	first, err := svc.GetSummary(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", c.sets)
	}

	second, err := svc.GetSummary(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.hits != 1 {
		t.Fatalf("cache hits = %d, want 1", c.hits)
	}
	if !second.GeneratedAt.Equal(first.GeneratedAt) {
		t.Fatalf("second read bypassed cache")
	}
}
