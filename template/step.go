package template

import (
	"time"

	"github.com/google/uuid"

	"order-template-go/order"
)

// MakeStepOrder 分步单：把目标量按固定步长分片，每隔 wait 发送一片时限子单，
// 到期未完成的部分整体撤销。父单为虚拟聚合包。
func (t *OrderTemplate) MakeStepOrder(orderType order.CtOrder, symbol string, price, volume, step float64, expire, wait time.Duration) (*order.StepOrderInfo, *order.Pack, error) {
	volume = order.Round(volume)
	step = order.Round(step)
	if volume <= 0 || step <= 0 {
		return nil, nil, ErrInvalidVolume
	}
	now := t.now()
	parent, _ := t.newJoinedParent(orderType, symbol, price, volume)
	info := &order.StepOrderInfo{
		ID:          uuid.NewString(),
		ParentID:    parent.OrderID,
		Symbol:      symbol,
		OrderType:   orderType,
		Price:       price,
		TotalVolume: volume,
		Step:        step,
		ExpireAt:    now.Add(expire),
		Wait:        wait,
		NextSend:    now,
	}
	parent.Step = info
	t.stepPool[info.ID] = info
	return info, parent, nil
}

// joinedLockedVolume 聚合单元已占用量：在途子单按委托总量计，完结子单按成交量计。
func (t *OrderTemplate) joinedLockedVolume(info *order.JoinedOrderInfo) float64 {
	locked := 0.0
	for _, id := range info.ChildIDs {
		c, ok := t.book.Get(id)
		if !ok {
			continue
		}
		if c.Finished {
			locked += c.Order.TradedVolume
		} else {
			locked += c.Order.TotalVolume
		}
	}
	return order.Round(locked)
}

// checkStepOrders 周期末尾推进分步单：到期停用，否则按节奏补发下一片。
func (t *OrderTemplate) checkStepOrders(symbol string) {
	now := t.now()
	for id, info := range t.stepPool {
		if info.Symbol != symbol {
			continue
		}
		parent, ok := t.book.Get(info.ParentID)
		if !ok || parent.Finished {
			delete(t.stepPool, id)
			continue
		}
		jinfo := t.joinedPool[info.ParentID]
		if jinfo == nil {
			delete(t.stepPool, id)
			continue
		}
		if !now.Before(info.ExpireAt) {
			t.deactivateJoined(jinfo)
			delete(t.stepPool, id)
			continue
		}
		locked := t.joinedLockedVolume(jinfo)
		if locked >= info.TotalVolume {
			continue
		}
		if now.Before(info.NextSend) {
			continue
		}
		slice := info.Step
		if rest := order.Round(info.TotalVolume - locked); rest < slice {
			slice = rest
		}
		if slice > 0 {
			_, packs, err := t.TimeLimitOrder(info.OrderType, symbol, info.Price, slice, info.ExpireAt.Sub(now))
			if err != nil {
				t.log.LogError(err, map[string]interface{}{"op": "stepSend", "symbol": symbol})
			}
			for _, p := range packs {
				t.joinChild(jinfo, p)
				info.ChildIDs = append(info.ChildIDs, p.OrderID)
			}
		}
		info.NextSend = now.Add(info.Wait)
	}
}
