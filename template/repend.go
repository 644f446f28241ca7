package template

import (
	"order-template-go/order"
)

// RependOrder 给订单包挂上补发单元：撤单/拒单后按剩余量重发。
// 订单已处于撤销/拒绝终态时立即触发。
func (t *OrderTemplate) RependOrder(p *order.Pack, volume, price *float64, callback func([]*order.Pack)) *order.RependingOrderInfo {
	info := t.rependPool[p.OrderID]
	if info == nil {
		info = &order.RependingOrderInfo{OriginID: p.OrderID}
		t.rependPool[p.OrderID] = info
		p.Repending = info
		p.AddTrack(TagRepending)
	}
	if volume != nil {
		info.Volume = volume
	}
	if price != nil {
		info.Price = price
	}
	if callback != nil {
		info.Callback = callback
	}
	if p.Finished {
		t.fireRepending(p, info)
	}
	return info
}

// onRependingOrderPack 终态观察：撤销/拒绝触发补发，全部成交则单元作废。
func (t *OrderTemplate) onRependingOrderPack(p *order.Pack) {
	info := p.Repending
	if info == nil || info.Fired || !p.Order.Status.Finished() {
		return
	}
	t.fireRepending(p, info)
}

// fireRepending 按剩余量补发。平仓侧补发受开仓未占用量约束；
// 未指定价格时按激进执行价发送。
func (t *OrderTemplate) fireRepending(p *order.Pack, info *order.RependingOrderInfo) {
	if info.Fired {
		return
	}
	info.Fired = true
	delete(t.rependPool, p.OrderID)
	if p.Order.Status != order.StatusCancelled && p.Order.Status != order.StatusRejected {
		return
	}
	remaining := p.Order.Remaining()
	if info.Volume != nil {
		remaining = order.Round(*info.Volume)
	}
	var open *order.Pack
	if p.IsClose() {
		o, ok := t.book.Get(p.OpenID)
		if !ok {
			return
		}
		open = o
		if unlocked := t.book.UnlockedVolume(open); unlocked < remaining {
			remaining = unlocked
		}
	}
	if remaining <= 0 {
		return
	}
	symbol := p.Order.Symbol
	ot := order.CtOrderOf(p.Order.Direction, p.Order.Offset)
	var price float64
	if info.Price != nil {
		price = *info.Price
	} else {
		price = t.GetExecPrice(symbol, ot)
	}
	if price <= 0 {
		t.log.LogOrder("repend skipped, no price", p.OrderID, map[string]interface{}{"symbol": symbol})
		return
	}
	packs, err := t.MakeOrder(ot, symbol, price, remaining, order.PriceTypeLimit, false)
	if err != nil {
		t.log.LogError(err, map[string]interface{}{"op": "repend", "orderID": p.OrderID})
		return
	}
	for _, c := range packs {
		if open != nil {
			order.LinkClose(open, c)
		}
		info.RependedIDs = append(info.RependedIDs, c.OrderID)
	}
	if t.metrics != nil && len(packs) > 0 {
		t.metrics.EngineResends.Inc()
	}
	if info.Callback != nil {
		info.Callback(packs)
	}
}
