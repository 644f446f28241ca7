package order

import "time"

// Order holds the last-known gateway snapshot of an order.
type Order struct {
	OrderID          string
	Symbol           string
	Direction        Direction
	Offset           Offset
	PriceType        PriceType
	Price            float64
	AvgPrice         float64
	TotalVolume      float64
	TradedVolume     float64
	ThisTradedVolume float64
	Status           Status

	OrderTime    time.Time
	CancelTime   time.Time
	DeliveryTime time.Time
}

// Clone 返回快照的拷贝，供派生引擎安全持有。
func (o *Order) Clone() *Order {
	c := *o
	return &c
}

// Remaining 返回未成交数量（按统一精度舍入）。
func (o *Order) Remaining() float64 {
	return Round(o.TotalVolume - o.TradedVolume)
}

// Trade 成交回报
type Trade struct {
	TradeID   string
	OrderID   string
	Symbol    string
	Direction Direction
	Offset    Offset
	Price     float64
	Volume    float64
	TradeTime time.Time
}
