package gateway

import (
	"time"

	"order-template-go/market"
	"order-template-go/order"
)

// OrderRequest 下单请求。
type OrderRequest struct {
	Symbol    string
	OrderType order.CtOrder
	PriceType order.PriceType
	Price     float64
	Volume    float64
	Stop      bool
}

// Contract 合约元信息。
type Contract struct {
	Symbol    string
	PriceTick float64
	MinVolume float64
	Size      float64
}

// AccountData 账户资金快照。AccountID 形如 "USDT_SPOT"。
type AccountData struct {
	AccountID string
	Balance   float64
	Available float64
}

// PositionData 持仓快照。
type PositionData struct {
	Symbol    string
	Direction order.Direction
	Volume    float64
	Frozen    float64
}

// ErrorData 交易所异步错误。
type ErrorData struct {
	Code    string
	Message string
	Ts      time.Time
}

// Gateway 是核心依赖的网关出站接口。实现必须线程安全；
// 回报经事件泵串行送回（见 EventHandler）。
type Gateway interface {
	// SendOrder 提交订单，返回网关分配的订单 ID 列表。
	SendOrder(req OrderRequest) ([]string, error)
	// CancelOrder 幂等撤单。
	CancelOrder(orderID string) error
	// GetContract 查询合约元信息。
	GetContract(symbol string) (Contract, bool)
	// RoundToPriceTick 将价格对齐到最小变动价位。
	RoundToPriceTick(symbol string, price float64) float64
}

// EventHandler 接收网关事件回调。所有回调由事件泵串行派发。
type EventHandler interface {
	OnTick(t *market.Tick)
	OnBar(b *market.Bar)
	OnOrder(o *order.Order)
	OnTrade(t *order.Trade)
	OnAccount(a *AccountData)
	OnPosition(p *PositionData)
	OnError(e *ErrorData)
}
