package application

import (
	"context"

	"github.com/wyfcoding/spotexchange/internal/exchange/domain"
)

// ExchangeQueryService 订单簿与成交历史查询服务
type ExchangeQueryService struct {
	orderRepo domain.OrderRepository
	tradeRepo domain.TradeRepository
	symbol    string
}

// NewExchangeQueryService 创建查询服务
func NewExchangeQueryService(orderRepo domain.OrderRepository, tradeRepo domain.TradeRepository, symbol string) *ExchangeQueryService {
	return &ExchangeQueryService{
		orderRepo: orderRepo,
		tradeRepo: tradeRepo,
		symbol:    symbol,
	}
}

// GetOrderbook 获取订单簿快照：买盘价格降序、卖盘价格升序
func (s *ExchangeQueryService) GetOrderbook(ctx context.Context) (*OrderbookDTO, error) {
	buys, err := s.orderRepo.ListActiveBySide(ctx, domain.OrderSideBuy)
	if err != nil {
		return nil, err
	}
	sells, err := s.orderRepo.ListActiveBySide(ctx, domain.OrderSideSell)
	if err != nil {
		return nil, err
	}

	dto := &OrderbookDTO{
		Symbol:     s.symbol,
		BuyOrders:  make([]OrderDTO, 0, len(buys)),
		SellOrders: make([]OrderDTO, 0, len(sells)),
	}
	for _, o := range buys {
		dto.BuyOrders = append(dto.BuyOrders, toOrderDTO(o))
	}
	for _, o := range sells {
		dto.SellOrders = append(dto.SellOrders, toOrderDTO(o))
	}
	return dto, nil
}

// GetTradeHistory 获取成交历史，最新在前。limit 非正时返回全部成交。
func (s *ExchangeQueryService) GetTradeHistory(ctx context.Context, limit int) ([]TradeDTO, error) {
	if limit < 0 {
		limit = 0
	}
	trades, err := s.tradeRepo.ListHistory(ctx, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]TradeDTO, 0, len(trades))
	for _, t := range trades {
		dtos = append(dtos, toTradeDTO(t))
	}
	return dtos, nil
}

// GetOrder 按订单 ID 查询订单，不存在时返回 nil
func (s *ExchangeQueryService) GetOrder(ctx context.Context, orderID string) (*OrderDTO, error) {
	order, err := s.orderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}
	dto := toOrderDTO(order)
	return &dto, nil
}
