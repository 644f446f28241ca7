package template

import (
	"order-template-go/order"
)

// newJoinedParent 创建聚合父单（虚拟包）并在池中登记其单元。
func (t *OrderTemplate) newJoinedParent(orderType order.CtOrder, symbol string, price, total float64) (*order.Pack, *order.JoinedOrderInfo) {
	parent := t.FakeOrder(orderType, symbol, price, total)
	info := &order.JoinedOrderInfo{ParentID: parent.OrderID, Active: true}
	parent.Joined = info
	t.joinedPool[parent.OrderID] = info
	return parent, info
}

// joinChild 把真实子单挂到聚合单元下。
func (t *OrderTemplate) joinChild(info *order.JoinedOrderInfo, child *order.Pack) {
	info.AddChild(child.OrderID)
	child.Joined = info
	child.AddTrack(TagJoined)
}

// JoinOrderPacks 将若干真实订单包聚合到一个虚拟父单下，父单状态由子单推导。
func (t *OrderTemplate) JoinOrderPacks(packs []*order.Pack) (*order.Pack, *order.JoinedOrderInfo) {
	if len(packs) == 0 {
		return nil, nil
	}
	first := packs[0].Order
	total := 0.0
	for _, p := range packs {
		total += p.Order.TotalVolume
	}
	orderType := order.CtOrderOf(first.Direction, first.Offset)
	parent, info := t.newJoinedParent(orderType, first.Symbol, first.Price, order.Round(total))
	for _, p := range packs {
		t.joinChild(info, p)
	}
	t.refreshJoinedParent(info)
	return parent, info
}

// MakeBatchOrder 把一个目标量拆成多笔一起发送，由聚合父单跟踪整体进度。
func (t *OrderTemplate) MakeBatchOrder(orderType order.CtOrder, symbol string, price float64, volumes ...float64) (*order.Pack, *order.JoinedOrderInfo, error) {
	total := 0.0
	for _, v := range volumes {
		total += v
	}
	total = order.Round(total)
	if total <= 0 {
		return nil, nil, ErrInvalidVolume
	}
	parent, info := t.newJoinedParent(orderType, symbol, price, total)
	for _, v := range volumes {
		packs, err := t.MakeOrder(orderType, symbol, price, v, order.PriceTypeLimit, false)
		if err != nil {
			t.log.LogError(err, map[string]interface{}{"op": "makeBatchOrder", "symbol": symbol})
			continue
		}
		for _, p := range packs {
			t.joinChild(info, p)
		}
	}
	return parent, info, nil
}

// onJoinedOrderPack 子单事件驱动父单派生状态刷新。
func (t *OrderTemplate) onJoinedOrderPack(child *order.Pack) {
	if child.Joined == nil || child.Fake {
		return
	}
	t.refreshJoinedParent(child.Joined)
}

// refreshJoinedParent 由子单聚合推导父单快照：
// 成交量为子单成交量之和，均价按成交量加权；
// 有在途子单时最多推进到 PART_TRADED，全部完结后按
// 成交是否达标、单元是否已停用落入 ALL_TRADED 或 CANCELLED。
func (t *OrderTemplate) refreshJoinedParent(info *order.JoinedOrderInfo) {
	parent, ok := t.book.Get(info.ParentID)
	if !ok || parent.Finished {
		return
	}
	traded, notional := 0.0, 0.0
	anyActive := false
	for _, id := range info.ChildIDs {
		c, ok := t.book.Get(id)
		if !ok {
			continue
		}
		traded += c.Order.TradedVolume
		avg := c.Order.AvgPrice
		if avg <= 0 {
			avg = c.Order.Price
		}
		notional += c.Order.TradedVolume * avg
		if !c.Finished {
			anyActive = true
		}
	}
	traded = order.Round(traded)

	changed := false
	if parent.Order.TradedVolume != traded {
		parent.Order.TradedVolume = traded
		changed = true
	}
	if traded > 0 {
		if avg := notional / traded; parent.Order.AvgPrice != avg {
			parent.Order.AvgPrice = avg
			changed = true
		}
	}

	status := parent.Order.Status
	switch {
	case anyActive:
		// 撤销流程中的父单不回退到 PART_TRADED
		if traded > 0 && status != order.StatusCancelling {
			status = order.StatusPartTraded
		}
	case parent.Order.TotalVolume > 0 && traded >= parent.Order.TotalVolume:
		status = order.StatusAllTraded
	case !info.Active:
		status = order.StatusCancelled
	case traded > 0:
		status = order.StatusPartTraded
	}
	if status != parent.Order.Status {
		parent.Order.Status = status
		if status.Finished() {
			parent.Finished = true
			parent.Order.DeliveryTime = t.now()
		}
		changed = true
	}
	if changed {
		t.dispatch(parent)
	}
}

// DeactivateJoinedOrder 策略侧显式停用聚合单：不再接收新子单，
// 在途子单撤销，父单按聚合结果落终态。
func (t *OrderTemplate) DeactivateJoinedOrder(info *order.JoinedOrderInfo) {
	if info == nil {
		return
	}
	t.deactivateJoined(info)
}

// deactivateJoined 停用聚合单元：父单转入撤销流程，在途子单全部撤销。
func (t *OrderTemplate) deactivateJoined(info *order.JoinedOrderInfo) {
	info.Active = false
	if parent, ok := t.book.Get(info.ParentID); ok && !parent.Finished {
		parent.Order.Status = order.StatusCancelling
		parent.CancelTag = true
		parent.LastCancelTime = t.now()
	}
	for _, id := range info.ChildIDs {
		if c, ok := t.book.Get(id); ok && !c.Finished {
			t.CancelOrder(c)
		}
	}
	t.refreshJoinedParent(info)
}
