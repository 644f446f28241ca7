package template

import (
	"time"

	"order-template-go/market"
	"order-template-go/order"
)

// StatusNotice 注册品种的状态探测：每 period 对齐 shift 发送一笔
// 半价最小量买单，用于发现静默失效的网关。探测单预期不成交，
// 并在下一周期前撤销。
func (t *OrderTemplate) StatusNotice(symbol string, period, shift time.Duration) *order.StatusNoticeInfo {
	info := &order.StatusNoticeInfo{
		Symbol:    symbol,
		Period:    period,
		Shift:     shift,
		ActiveIDs: order.NewIDSet(),
	}
	info.NextCheck = nextAligned(t.now(), period, shift)
	t.noticePool[symbol] = info
	return info
}

// nextAligned 返回 now 之后第一个按 period 对齐再偏移 shift 的时刻。
func nextAligned(now time.Time, period, shift time.Duration) time.Time {
	if period <= 0 {
		return now
	}
	base := now.Truncate(period).Add(shift)
	for !base.After(now) {
		base = base.Add(period)
	}
	return base
}

// DoStatusCheck 周期到点时结算上一轮探测并发出新探测。
func (t *OrderTemplate) DoStatusCheck(b *market.Bar) {
	info, ok := t.noticePool[b.Symbol]
	if !ok {
		return
	}
	now := t.now()
	if now.Before(info.NextCheck) {
		return
	}

	// 上一轮探测：仍未确认即超时告警，未终态的一律撤销。
	for _, id := range info.ActiveIDs.List() {
		p, ok := t.book.Get(id)
		if !ok {
			info.ActiveIDs.Remove(id)
			continue
		}
		if !p.Finished && p.Order.Status == order.StatusInit {
			t.statusNotify(info, p.Order, "order", true, "Timeout")
		}
		if !p.Finished {
			t.CancelOrder(p)
		}
	}

	t.sendStatusProbe(info)
	info.LastCheck = now
	for !info.NextCheck.After(now) {
		info.NextCheck = info.NextCheck.Add(info.Period)
	}
	t.statusNotify(info, b, "bar", false, "Check")
}

// noticeOrderHistory 探测单历史保留条数，长期运行不无限增长。
const noticeOrderHistory = 32

// sendStatusProbe 发送半价最小量探测买单。
func (t *OrderTemplate) sendStatusProbe(info *order.StatusNoticeInfo) {
	last := t.view.LastPrice(info.Symbol)
	if last <= 0 {
		return
	}
	contract, ok := t.gw.GetContract(info.Symbol)
	if !ok || contract.MinVolume <= 0 {
		return
	}
	price := t.AdjustPrice(info.Symbol, last/2, "statusNotice")
	if price <= 0 {
		return
	}
	packs, err := t.MakeOrder(order.CtOrderBuy, info.Symbol, price, contract.MinVolume, order.PriceTypeLimit, false)
	if err != nil {
		t.log.LogError(err, map[string]interface{}{"op": "statusProbe", "symbol": info.Symbol})
		return
	}
	for _, p := range packs {
		p.Notice = info
		p.AddTrack(TagNotice)
		info.ActiveIDs.Add(p.OrderID)
		info.Orders = append(info.Orders, p.OrderID)
	}
	if n := len(info.Orders); n > noticeOrderHistory {
		info.Orders = append(info.Orders[:0:0], info.Orders[n-noticeOrderHistory:]...)
	}
}

// onStatusNoticeOrderPack 探测单异常回报：
// 成交说明价格或流动性异常，告警后强平；拒单说明网关不健康。
func (t *OrderTemplate) onStatusNoticeOrderPack(p *order.Pack) {
	info := p.Notice
	if info == nil {
		return
	}
	if p.Order.ThisTradedVolume > 0 || p.Order.Status == order.StatusPartTraded || p.Order.Status == order.StatusAllTraded {
		t.statusNotify(info, p.Order, "order", true, "Traded")
		if _, err := t.ComposoryClose(p, 0, 0); err != nil {
			t.log.LogError(err, map[string]interface{}{"op": "statusProbeFlatten", "orderID": p.OrderID})
		}
	}
	if p.Order.Status == order.StatusRejected {
		t.statusNotify(info, p.Order, "order", true, "Rejected")
	}
	if p.Order.Status.Finished() {
		info.ActiveIDs.Remove(p.OrderID)
	}
}
