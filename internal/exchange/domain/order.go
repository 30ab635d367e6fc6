// Package domain 包含交易所的领域模型：订单、成交与撮合引擎。
package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuantityScale 价格与数量的固定小数位数。所有算术运算后都重新舍入到该精度（四舍五入）。
const QuantityScale = 2

// OrderStatus 订单状态，由 FilledQuantity 与 Quantity 推导
type OrderStatus string

const (
	OrderStatusOpen            OrderStatus = "OPEN"
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderStatusFilled          OrderStatus = "FILLED"
	// OrderStatusCancelled 仅保留枚举值，撮合路径不会产生该状态
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderSide 订单方向
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// Opposite 返回对手方向
func (s OrderSide) Opposite() OrderSide {
	if s == OrderSideBuy {
		return OrderSideSell
	}
	return OrderSideBuy
}

// Valid 校验方向取值
func (s OrderSide) Valid() bool {
	return s == OrderSideBuy || s == OrderSideSell
}

// Order 订单实体
// FilledQuantity 是唯一的成交事实来源，状态与剩余数量均由它推导，不冗余存储。
type Order struct {
	gorm.Model
	// 订单 ID
	OrderID string `gorm:"column:order_id;type:varchar(32);uniqueIndex;not null" json:"order_id"`
	// 用户 ID
	UserID string `gorm:"column:user_id;type:varchar(32);index;not null" json:"user_id"`
	// 交易对符号
	Symbol string `gorm:"column:symbol;type:varchar(20);index;not null" json:"symbol"`
	// 买卖方向
	Side OrderSide `gorm:"column:side;type:varchar(10);not null" json:"side"`
	// 委托价格，固定 2 位小数
	Price decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	// 委托数量，固定 2 位小数
	Quantity decimal.Decimal `gorm:"column:quantity;type:decimal(10,2);not null" json:"quantity"`
	// 已成交数量，单调不减，仅由撮合引擎修改
	FilledQuantity decimal.Decimal `gorm:"column:filled_quantity;type:decimal(10,2);not null;default:0" json:"filled_quantity"`
	// 订单状态
	Status OrderStatus `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
}

// Round2 按固定精度舍入（四舍五入）
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityScale)
}

// ParseAmount 将入口处的浮点输入转换为定点小数。
// NaN/Inf 在解析阶段即被拒绝，超出 2 位小数的输入统一舍入后再参与校验与比较。
func ParseAmount(v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, fmt.Errorf("%w: non-finite value", ErrInvalidOrder)
	}
	return Round2(decimal.NewFromFloat(v)), nil
}

// NewOrder 创建一个 OPEN 状态的新订单，校验失败返回 ErrInvalidOrder
func NewOrder(orderID, userID, symbol string, side OrderSide, price, quantity decimal.Decimal) (*Order, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("%w: side must be BUY or SELL", ErrInvalidOrder)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be greater than 0", ErrInvalidOrder)
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be greater than 0", ErrInvalidOrder)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidOrder)
	}

	return &Order{
		OrderID:        orderID,
		UserID:         userID,
		Symbol:         symbol,
		Side:           side,
		Price:          Round2(price),
		Quantity:       Round2(quantity),
		FilledQuantity: decimal.Zero,
		Status:         OrderStatusOpen,
	}, nil
}

// RemainingQuantity 剩余可成交数量，永远重新计算、不落库
func (o *Order) RemainingQuantity() decimal.Decimal {
	return Round2(o.Quantity.Sub(o.FilledQuantity))
}

// IsFilled 是否已完全成交（不足 0.01 的残余视为已成交）
func (o *Order) IsFilled() bool {
	return o.RemainingQuantity().LessThanOrEqual(decimal.Zero)
}

// IsActive 是否仍在订单簿中可被撮合
func (o *Order) IsActive() bool {
	return o.Status == OrderStatusOpen || o.Status == OrderStatusPartiallyFilled
}

// ApplyFill 累加成交数量并重推导状态。
// 已成交数量单调不减；任何一步产生负值或超过委托数量即视为精度违规，整个回合中止。
func (o *Order) ApplyFill(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return fmt.Errorf("%w: fill quantity %s is not positive", ErrPrecisionViolation, qty)
	}
	next := Round2(o.FilledQuantity.Add(qty))
	if next.IsNegative() || next.GreaterThan(o.Quantity) {
		return fmt.Errorf("%w: filled quantity %s out of range [0, %s] for order %s",
			ErrPrecisionViolation, next, o.Quantity, o.OrderID)
	}
	o.FilledQuantity = next
	o.Status = DeriveStatus(o.Quantity, o.FilledQuantity)
	return nil
}

// DeriveStatus 由 (委托数量, 已成交数量) 推导状态的纯函数。
// 仅在成交发生后调用：零成交的订单保持 OPEN，不会经过这里。
func DeriveStatus(quantity, filled decimal.Decimal) OrderStatus {
	if Round2(quantity.Sub(filled)).LessThanOrEqual(decimal.Zero) {
		return OrderStatusFilled
	}
	return OrderStatusPartiallyFilled
}

// Crosses 价格交叉判定：买单限价 >= 对手卖价，卖单限价 <= 对手买价（边界包含）
func (o *Order) Crosses(resting *Order) bool {
	if o.Side == OrderSideBuy {
		return resting.Price.LessThanOrEqual(o.Price)
	}
	return resting.Price.GreaterThanOrEqual(o.Price)
}
