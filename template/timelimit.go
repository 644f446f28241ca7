package template

import (
	"time"

	"github.com/google/uuid"

	"order-template-go/order"
)

// TimeLimitOrder 时限单：发送限价单，到期未完成即撤销。
func (t *OrderTemplate) TimeLimitOrder(orderType order.CtOrder, symbol string, price, volume float64, expire time.Duration) (*order.TimeLimitOrderInfo, []*order.Pack, error) {
	info := order.NewTimeLimitOrderInfo(uuid.NewString(), symbol, orderType, price, volume, expire)
	packs, err := t.MakeOrder(orderType, symbol, price, volume, order.PriceTypeLimit, false)
	if err != nil {
		return nil, nil, err
	}
	if len(packs) == 0 {
		return info, nil, nil
	}
	expireAt := t.now().Add(expire)
	for _, p := range packs {
		p.TimeLimit = info
		p.AddTrack(TagTimeLimit)
		p.ExpireAt = expireAt
		info.ActiveIDs.Add(p.OrderID)
	}
	t.timeLimitPool[info.ID] = info
	return info, packs, nil
}

// onTimeLimitOrderPack 终态迁移：按成交量归入完结或无效集合，
// 活跃集合清空后回收单元。
func (t *OrderTemplate) onTimeLimitOrderPack(p *order.Pack) {
	info := p.TimeLimit
	if info == nil || !p.Order.Status.Finished() {
		return
	}
	info.ActiveIDs.Remove(p.OrderID)
	if p.Order.TradedVolume > 0 {
		info.ClosedIDs = append(info.ClosedIDs, p.OrderID)
	} else {
		info.InvalidIDs = append(info.InvalidIDs, p.OrderID)
	}
	if info.ActiveIDs.Len() == 0 {
		delete(t.timeLimitPool, info.ID)
	}
}

// checkTimeLimitOrders 撤销全部已到期的时限单。
func (t *OrderTemplate) checkTimeLimitOrders() {
	now := t.now()
	for _, info := range t.timeLimitPool {
		for _, id := range info.ActiveIDs.List() {
			p, ok := t.book.Get(id)
			if !ok || p.Finished {
				continue
			}
			if !p.ExpireAt.IsZero() && !now.Before(p.ExpireAt) {
				t.CancelOrder(p)
			}
		}
	}
}
