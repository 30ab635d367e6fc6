package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Trade 成交记录，创建后不可变。
// 冗余存储双方用户 ID，报表查询无需关联订单表。
type Trade struct {
	gorm.Model
	// 成交 ID
	TradeID string `gorm:"column:trade_id;type:varchar(32);uniqueIndex;not null" json:"trade_id"`
	// 交易对符号
	Symbol string `gorm:"column:symbol;type:varchar(20);index;not null" json:"symbol"`
	// 买方订单 ID
	BuyOrderID string `gorm:"column:buy_order_id;type:varchar(32);index;not null" json:"buy_order_id"`
	// 卖方订单 ID
	SellOrderID string `gorm:"column:sell_order_id;type:varchar(32);index;not null" json:"sell_order_id"`
	// 买方用户 ID
	BuyUserID string `gorm:"column:buy_user_id;type:varchar(32);not null" json:"buy_user_id"`
	// 卖方用户 ID
	SellUserID string `gorm:"column:sell_user_id;type:varchar(32);not null" json:"sell_user_id"`
	// 成交价格，始终为挂单方（maker）价格
	Price decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	// 成交数量
	Quantity decimal.Decimal `gorm:"column:quantity;type:decimal(10,2);not null" json:"quantity"`
	// 成交时间
	ExecutedAt time.Time `gorm:"column:executed_at;index;not null" json:"executed_at"`
}

// NewTrade 按照吃单方向装配买卖双方引用，成交价取挂单价。
func NewTrade(tradeID string, incoming, resting *Order, price, quantity decimal.Decimal) *Trade {
	t := &Trade{
		TradeID:    tradeID,
		Symbol:     incoming.Symbol,
		Price:      price,
		Quantity:   quantity,
		ExecutedAt: time.Now(),
	}
	if incoming.Side == OrderSideBuy {
		t.BuyOrderID = incoming.OrderID
		t.BuyUserID = incoming.UserID
		t.SellOrderID = resting.OrderID
		t.SellUserID = resting.UserID
	} else {
		t.BuyOrderID = resting.OrderID
		t.BuyUserID = resting.UserID
		t.SellOrderID = incoming.OrderID
		t.SellUserID = incoming.UserID
	}
	return t
}
