package template

import (
	"time"

	"order-template-go/order"
)

// SetConditionalClose 安装条件平仓：到期后按开仓状态撤单、强平或转止损。
func (t *OrderTemplate) SetConditionalClose(p *order.Pack, expire time.Duration, targetProfit *float64) *order.ConditionalCloseInfo {
	info := &order.ConditionalCloseInfo{
		OriginID:     p.OrderID,
		ExpireAt:     t.now().Add(expire),
		TargetProfit: targetProfit,
	}
	t.conditionalPool[p.OrderID] = info
	return info
}

// checkConditionalClose 到期决策：
// 开仓未终态先撤单（条目保留到下一轮）；零成交直接丢弃；
// 无目标利润则强平；有目标利润则转为止损并立即评估一次。
func (t *OrderTemplate) checkConditionalClose() {
	now := t.now()
	for id, info := range t.conditionalPool {
		if now.Before(info.ExpireAt) {
			continue
		}
		open, ok := t.book.Get(id)
		if !ok {
			delete(t.conditionalPool, id)
			continue
		}
		if !open.Finished {
			t.CancelOrder(open)
			continue
		}
		if open.Order.TradedVolume <= 0 {
			delete(t.conditionalPool, id)
			continue
		}
		if info.TargetProfit == nil {
			if _, err := t.ComposoryClose(open, 0, 0); err != nil {
				t.log.LogError(err, map[string]interface{}{"op": "conditionalClose", "orderID": id})
			}
			delete(t.conditionalPool, id)
			continue
		}
		dir := 1.0
		if open.Order.Direction == order.DirectionShort {
			dir = -1.0
		}
		stopLoss := open.Order.AvgPrice * (1 + dir*(*info.TargetProfit))
		if ae, err := t.SetAutoExit(open, &stopLoss, nil, false); err == nil {
			t.evaluateAutoExit(open, ae)
		}
		delete(t.conditionalPool, id)
	}
}
