package market

import "time"

// Level 盘口档位。
type Level struct {
	Price  float64
	Volume float64
}

// Tick 行情切片，含五档盘口。Bids/Asks 按优先级排列（一档在前）。
type Tick struct {
	Symbol string
	Last   float64
	Bids   []Level
	Asks   []Level
	Ts     time.Time
}

// BestBid 一档买价，无盘口时返回 0。
func (t *Tick) BestBid() float64 {
	if len(t.Bids) == 0 {
		return 0
	}
	return t.Bids[0].Price
}

// BestAsk 一档卖价，无盘口时返回 0。
func (t *Tick) BestAsk() float64 {
	if len(t.Asks) == 0 {
		return 0
	}
	return t.Asks[0].Price
}
