package template

import (
	"github.com/google/uuid"

	"order-template-go/order"
)

// SplitOrder 把已终态订单包的成交量拆成若干虚拟子单，用于把一笔成交
// 归属到多个逻辑仓位。子单数量依次取给定值并受剩余成交量裁剪，
// 给定值之和不足成交量时追加一个吸收余量的子单。
func (t *OrderTemplate) SplitOrder(p *order.Pack, volumes ...float64) ([]*order.Pack, error) {
	if !p.Finished {
		return nil, ErrNotTerminal
	}
	traded := order.Round(p.Order.TradedVolume)
	if traded <= 0 || len(volumes) == 0 {
		return nil, ErrInvalidVolume
	}
	remaining := traded
	parts := make([]float64, 0, len(volumes)+1)
	for _, v := range volumes {
		v = order.Round(v)
		if v <= 0 || remaining <= 0 {
			continue
		}
		if v > remaining {
			v = remaining
		}
		parts = append(parts, v)
		remaining = order.Round(remaining - v)
	}
	if remaining > 0 {
		parts = append(parts, remaining)
	}

	info := &order.AssembleOrderInfo{OriginID: p.OrderID}
	p.Assemble = info
	now := t.now()
	children := make([]*order.Pack, 0, len(parts))
	for _, v := range parts {
		o := &order.Order{
			OrderID:      "fake." + uuid.NewString(),
			Symbol:       p.Order.Symbol,
			Direction:    p.Order.Direction,
			Offset:       p.Order.Offset,
			PriceType:    p.Order.PriceType,
			Price:        p.Order.Price,
			AvgPrice:     p.Order.AvgPrice,
			TotalVolume:  v,
			TradedVolume: v,
			Status:       order.StatusAllTraded,
			OrderTime:    now,
			DeliveryTime: now,
		}
		c := order.NewPack(o)
		c.Fake = true
		c.Finished = true
		c.Assemble = info
		t.book.Set(c)
		info.ChildIDs = append(info.ChildIDs, c.OrderID)
		children = append(children, c)
	}
	return children, nil
}
