package order

// Status represents order lifecycle.
type Status string

const (
	StatusInit       Status = "INIT"
	StatusNotTraded  Status = "NOT_TRADED"
	StatusPartTraded Status = "PART_TRADED"
	StatusCancelling Status = "CANCELLING"
	StatusAllTraded  Status = "ALL_TRADED"
	StatusCancelled  Status = "CANCELLED"
	StatusRejected   Status = "REJECTED"
	StatusUnknown    Status = "UNKNOWN"
)

// Finished reports whether the status is terminal.
func (s Status) Finished() bool {
	switch s {
	case StatusAllTraded, StatusCancelled, StatusRejected:
		return true
	default:
		return false
	}
}

// Active reports whether the order may still produce fills.
func (s Status) Active() bool {
	switch s {
	case StatusInit, StatusNotTraded, StatusPartTraded, StatusCancelling:
		return true
	default:
		return false
	}
}

// Direction 多空方向
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// Opposite 返回相反方向。
func (d Direction) Opposite() Direction {
	if d == DirectionLong {
		return DirectionShort
	}
	return DirectionLong
}

// Offset 开平仓标记
type Offset string

const (
	OffsetOpen  Offset = "OPEN"
	OffsetClose Offset = "CLOSE"
)

// PriceType 报单价格类型
type PriceType string

const (
	PriceTypeLimit  PriceType = "LIMIT"
	PriceTypeMarket PriceType = "MARKET"
	PriceTypeFAK    PriceType = "FAK"
	PriceTypeFOK    PriceType = "FOK"
)

// CtOrder 策略层报单类型：BUY/SHORT 开仓，SELL/COVER 平仓。
type CtOrder string

const (
	CtOrderBuy   CtOrder = "BUY"   // 买开
	CtOrderSell  CtOrder = "SELL"  // 卖平
	CtOrderShort CtOrder = "SHORT" // 卖开
	CtOrderCover CtOrder = "COVER" // 买平
)

// Direction 返回报单的成交方向：BUY/COVER 为 LONG（买入），SELL/SHORT 为 SHORT（卖出）。
// 平仓单方向因此恒为其开仓单方向的反方向。
func (t CtOrder) Direction() Direction {
	switch t {
	case CtOrderBuy, CtOrderCover:
		return DirectionLong
	default:
		return DirectionShort
	}
}

// Offset 返回报单类型对应的开平标记。
func (t CtOrder) Offset() Offset {
	switch t {
	case CtOrderBuy, CtOrderShort:
		return OffsetOpen
	default:
		return OffsetClose
	}
}

// CloseType 返回开仓类型对应的平仓类型；平仓类型原样返回。
func (t CtOrder) CloseType() CtOrder {
	switch t {
	case CtOrderBuy:
		return CtOrderSell
	case CtOrderShort:
		return CtOrderCover
	default:
		return t
	}
}

// IsOpen 是否为开仓类型。
func (t CtOrder) IsOpen() bool {
	return t.Offset() == OffsetOpen
}

// CtOrderOf 由方向与开平标记反推报单类型。
func CtOrderOf(d Direction, o Offset) CtOrder {
	if o == OffsetOpen {
		if d == DirectionLong {
			return CtOrderBuy
		}
		return CtOrderShort
	}
	if d == DirectionLong {
		return CtOrderCover
	}
	return CtOrderSell
}
