package template

import (
	"time"

	"github.com/google/uuid"

	"order-template-go/market"
	"order-template-go/order"
)

// MakeDepthOrder 盘口单：与分步单相同的控制循环，但每片大小受限于
// 不劣于限价的盘口档位流动性，最多扫描 depth 档。无可成交档位时跳过本轮。
func (t *OrderTemplate) MakeDepthOrder(orderType order.CtOrder, symbol string, price, volume float64, depth int, expire, wait time.Duration) (*order.DepthOrderInfo, *order.Pack, error) {
	volume = order.Round(volume)
	if volume <= 0 || depth <= 0 {
		return nil, nil, ErrInvalidVolume
	}
	now := t.now()
	parent, _ := t.newJoinedParent(orderType, symbol, price, volume)
	info := &order.DepthOrderInfo{
		ID:          uuid.NewString(),
		ParentID:    parent.OrderID,
		Symbol:      symbol,
		OrderType:   orderType,
		Price:       price,
		TotalVolume: volume,
		Depth:       depth,
		ExpireAt:    now.Add(expire),
		Wait:        wait,
		NextSend:    now,
	}
	parent.Depth = info
	t.depthPool[info.ID] = info
	return info, parent, nil
}

// checkDepthOrders 周期末尾推进盘口单。
func (t *OrderTemplate) checkDepthOrders(symbol string) {
	now := t.now()
	for id, info := range t.depthPool {
		if info.Symbol != symbol {
			continue
		}
		parent, ok := t.book.Get(info.ParentID)
		if !ok || parent.Finished {
			delete(t.depthPool, id)
			continue
		}
		jinfo := t.joinedPool[info.ParentID]
		if jinfo == nil {
			delete(t.depthPool, id)
			continue
		}
		if !now.Before(info.ExpireAt) {
			t.deactivateJoined(jinfo)
			delete(t.depthPool, id)
			continue
		}
		locked := t.joinedLockedVolume(jinfo)
		rest := order.Round(info.TotalVolume - locked)
		if rest <= 0 {
			continue
		}
		if now.Before(info.NextSend) {
			continue
		}
		tick, ok := t.view.Tick(symbol)
		if !ok {
			continue
		}
		buy := info.OrderType.Direction() == order.DirectionLong
		executable, levels := market.ExecutableVolume(tick, buy, info.Price, info.Depth)
		info.LastLevels = info.LastLevels[:0]
		for _, lv := range levels {
			info.LastLevels = append(info.LastLevels, order.DepthLevel{Price: lv.Price, Volume: lv.Volume})
		}
		if executable <= 0 {
			continue
		}
		slice := executable
		if rest < slice {
			slice = rest
		}
		_, packs, err := t.TimeLimitOrder(info.OrderType, symbol, info.Price, slice, info.ExpireAt.Sub(now))
		if err != nil {
			t.log.LogError(err, map[string]interface{}{"op": "depthSend", "symbol": symbol})
		}
		for _, p := range packs {
			t.joinChild(jinfo, p)
			info.ChildIDs = append(info.ChildIDs, p.OrderID)
		}
		info.NextSend = now.Add(info.Wait)
	}
}
