package template

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"order-template-go/order"
)

// ComposoryOrder 强制单：在时间预算内以激进价吃单，到期撤单并按剩余量追发，
// 直到目标数量成交完毕。
func (t *OrderTemplate) ComposoryOrder(orderType order.CtOrder, symbol string, volume float64, expire time.Duration) (*order.ComposoryOrderInfo, error) {
	volume = order.Round(volume)
	if volume <= 0 {
		return nil, ErrInvalidVolume
	}
	info := order.NewComposoryOrderInfo(uuid.NewString(), symbol, orderType, volume, expire)
	t.composoryPool[info.ID] = info
	t.sendComposoryChild(info, false)
	return info, nil
}

// sendComposoryChild 按当前未占用量追发一笔激进限价子单。
func (t *OrderTemplate) sendComposoryChild(info *order.ComposoryOrderInfo, resend bool) []*order.Pack {
	volume := info.UnlockedVolume(t.book)
	var open *order.Pack
	if info.OpenID != "" {
		p, ok := t.book.Get(info.OpenID)
		if !ok {
			return nil
		}
		open = p
		if unlocked := t.book.UnlockedVolume(open); unlocked < volume {
			volume = unlocked
		}
	}
	if volume <= 0 {
		return nil
	}
	price := t.GetExecPrice(info.Symbol, info.OrderType)
	if price <= 0 {
		t.log.Warn("composory send skipped, no reference price", zap.String("symbol", info.Symbol))
		return nil
	}
	packs, err := t.MakeOrder(info.OrderType, info.Symbol, price, volume, order.PriceTypeLimit, false)
	if err != nil {
		t.log.LogError(err, map[string]interface{}{"op": "composorySend", "symbol": info.Symbol})
		return nil
	}
	expireAt := t.now().Add(info.Expire)
	for _, p := range packs {
		p.Composory = info
		p.AddTrack(TagComposory)
		p.ExpireAt = expireAt
		info.ActiveIDs.Add(p.OrderID)
		if open != nil {
			order.LinkClose(open, p)
		}
	}
	if resend && t.metrics != nil && len(packs) > 0 {
		t.metrics.EngineResends.Inc()
	}
	return packs
}

// onComposoryOrderPack 子单终态迁移：登记完结集合，撤单/拒单有剩余时追发。
func (t *OrderTemplate) onComposoryOrderPack(p *order.Pack) {
	info := p.Composory
	if info == nil || !p.Order.Status.Finished() {
		return
	}
	info.ActiveIDs.Remove(p.OrderID)
	if p.Order.TradedVolume > 0 {
		info.ClosedIDs = append(info.ClosedIDs, p.OrderID)
	} else {
		info.InvalidIDs = append(info.InvalidIDs, p.OrderID)
	}
	if p.Order.Status == order.StatusCancelled || p.Order.Status == order.StatusRejected {
		t.sendComposoryChild(info, true)
	}
	if info.ActiveIDs.Len() == 0 && info.UnlockedVolume(t.book) <= 0 {
		delete(t.composoryPool, info.ID)
		if info.OpenID != "" {
			t.reapComposoryClose(info.OpenID)
		}
	}
}

// reapComposoryClose 开仓包全部了结后回收其强平单元。
func (t *OrderTemplate) reapComposoryClose(openID string) {
	open, ok := t.book.Get(openID)
	if !ok {
		delete(t.composoryClosePool, openID)
		return
	}
	if t.book.OrderClosed(open) {
		delete(t.composoryClosePool, openID)
	}
}

// checkComposoryOrders 周期起始检查：撤销已到期的强制单子单。
// 开仓侧单元在无在途子单且目标未达时补发，吸收上一次发送失败
// （网关错误、无参考价）。平仓侧的补发由 checkComposoryCloseOrders 负责。
func (t *OrderTemplate) checkComposoryOrders(symbol string) {
	now := t.now()
	for _, info := range t.composoryPool {
		if info.Symbol != symbol {
			continue
		}
		if info.OpenID == "" && info.ActiveIDs.Len() == 0 {
			if info.UnlockedVolume(t.book) > 0 {
				t.sendComposoryChild(info, true)
			}
			continue
		}
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
