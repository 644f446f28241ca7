package template

import (
	"fmt"
	"time"

	"order-template-go/order"
)

// closeTypeOf 开仓包对应的平仓报单类型。
func closeTypeOf(open *order.Pack) order.CtOrder {
	if open.Order.Direction == order.DirectionLong {
		return order.CtOrderSell
	}
	return order.CtOrderCover
}

// CloseOrder 对开仓包发送限价平仓单并建立开平关联。volume 传 0 取当前未占用量，
// 超出未占用量的部分被裁剪。cover 为 true 时撤销该开仓包名下在途平仓单，
// 并给它们挂上按新价补发的单元。
func (t *OrderTemplate) CloseOrder(open *order.Pack, price, volume float64, cover bool) ([]*order.Pack, error) {
	if !t.symbolAllowed(open.Order.Symbol) {
		return nil, fmt.Errorf("closeOrder %s: %w", open.Order.Symbol, ErrUnknownSymbol)
	}
	if cover {
		newPrice := price
		for _, id := range open.CloseIDs {
			p, ok := t.book.Get(id)
			if !ok || p.Finished {
				continue
			}
			t.RependOrder(p, nil, &newPrice, nil)
			t.CancelOrder(p)
		}
	}
	unlocked := t.book.UnlockedVolume(open)
	if volume <= 0 || volume > unlocked {
		volume = unlocked
	}
	volume = order.Round(volume)
	if volume <= 0 {
		return nil, nil
	}
	packs, err := t.MakeOrder(closeTypeOf(open), open.Order.Symbol, price, volume, order.PriceTypeLimit, false)
	if err != nil {
		return nil, err
	}
	for _, p := range packs {
		order.LinkClose(open, p)
	}
	return packs, nil
}

// ComposoryClose 以强制单平掉开仓包的未占用量。
// 幂等：同一开仓包只安装一次，后续调用返回已有单元。
// 显式指定 volume 时要求开仓包已终态。
func (t *OrderTemplate) ComposoryClose(open *order.Pack, expire time.Duration, volume float64) (*order.ComposoryOrderInfo, error) {
	if info, ok := t.composoryClosePool[open.OrderID]; ok {
		return info, nil
	}
	if volume > 0 && !open.Finished {
		return nil, fmt.Errorf("composoryClose %s: explicit volume: %w", open.OrderID, ErrNotTerminal)
	}
	if volume <= 0 {
		volume = t.book.UnlockedVolume(open)
	}
	volume = order.Round(volume)
	if volume <= 0 && open.Finished && t.book.OrderClosed(open) {
		return nil, nil
	}
	if expire <= 0 {
		expire = t.opts.CancelGap
	}
	open.ComposoryClosed = true
	info := order.NewComposoryOrderInfo(open.OrderID+".cpo", open.Order.Symbol, closeTypeOf(open), volume, expire)
	info.OpenID = open.OrderID
	t.composoryPool[info.ID] = info
	t.composoryClosePool[open.OrderID] = info
	t.sendComposoryChild(info, false)
	return info, nil
}

// checkComposoryCloseOrders 周期末尾核对强平单元：开仓包已全部了结则回收，
// 仍有未占用量且无在途子单时继续追发。开仓包后续成交会把目标量推高，
// 这里同步抬升单元目标。
func (t *OrderTemplate) checkComposoryCloseOrders(symbol string) {
	for openID, info := range t.composoryClosePool {
		if info.Symbol != symbol {
			continue
		}
		open, ok := t.book.Get(openID)
		if !ok {
			delete(t.composoryClosePool, openID)
			delete(t.composoryPool, info.ID)
			continue
		}
		if t.book.OrderClosed(open) {
			delete(t.composoryClosePool, openID)
			delete(t.composoryPool, info.ID)
			continue
		}
		if traded := order.Round(open.Order.TradedVolume); traded > info.Volume {
			info.Volume = traded
		}
		if info.ActiveIDs.Len() == 0 {
			t.sendComposoryChild(info, true)
		}
	}
}
