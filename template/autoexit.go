package template

import (
	"errors"

	"go.uber.org/zap"

	"order-template-go/order"
)

// SetAutoExit 给开仓包安装或合并自动退出（止损/止盈，绝对价格）。
// cover 为 true 时整体替换已有配置并恢复止盈补发。
func (t *OrderTemplate) SetAutoExit(p *order.Pack, stopLoss, takeProfit *float64, cover bool) (*order.AutoExitInfo, error) {
	info := t.autoExitPool[p.OrderID]
	if info == nil {
		if stopLoss == nil && takeProfit == nil {
			return nil, errors.New("setAutoExit: stopLoss or takeProfit required")
		}
		info = order.NewAutoExitInfo(p.OrderID)
		t.autoExitPool[p.OrderID] = info
		p.AutoExit = info
		p.AddTrack(TagAutoExit)
	}
	if cover {
		info.StopLoss = stopLoss
		info.TakeProfit = takeProfit
		info.CheckTP = true
	} else {
		if stopLoss != nil {
			info.StopLoss = stopLoss
		}
		if takeProfit != nil {
			info.TakeProfit = takeProfit
		}
	}
	return info, nil
}

func (t *OrderTemplate) removeAutoExit(open *order.Pack, info *order.AutoExitInfo) {
	delete(t.autoExitPool, info.OriginID)
	if open != nil {
		open.AutoExit = nil
	}
}

// checkAutoExit 评估品种下全部自动退出单元。
func (t *OrderTemplate) checkAutoExit(symbol string) {
	for _, info := range t.autoExitPool {
		open, ok := t.book.Get(info.OriginID)
		if !ok {
			delete(t.autoExitPool, info.OriginID)
			continue
		}
		if open.Order.Symbol != symbol {
			continue
		}
		t.evaluateAutoExit(open, info)
	}
}

// evaluateAutoExit 单个单元的评估：
// 开仓未成交不动作；开仓已全部了结则撤除单元；
// 止损按对手价触发后强平；止盈维持至多一笔在价挂单。
func (t *OrderTemplate) evaluateAutoExit(open *order.Pack, info *order.AutoExitInfo) {
	if open.Order.TradedVolume <= 0 {
		return
	}
	if t.book.OrderClosed(open) {
		t.removeAutoExit(open, info)
		return
	}
	symbol := open.Order.Symbol
	if info.StopLoss != nil && t.stopLossHit(open, *info.StopLoss) {
		t.log.LogOrder("stopLoss triggered", open.OrderID, map[string]interface{}{
			"symbol": symbol, "stopLoss": *info.StopLoss,
		})
		if cpo, err := t.ComposoryClose(open, 0, 0); err == nil && cpo != nil {
			info.SLOrderIDs = append(info.SLOrderIDs, cpo.ActiveIDs.List()...)
		}
		t.removeAutoExit(open, info)
		return
	}
	if info.TakeProfit == nil || !info.CheckTP {
		return
	}
	tp := t.AdjustPrice(symbol, *info.TakeProfit, "takeProfit")
	hasPending := false
	for _, id := range info.TPOrderIDs.List() {
		p, ok := t.book.Get(id)
		if !ok || p.Finished {
			info.TPOrderIDs.Remove(id)
			continue
		}
		if p.Order.Price != tp {
			t.CancelOrder(p)
		}
		hasPending = true
	}
	if hasPending {
		return
	}
	unlocked := t.book.UnlockedVolume(open)
	if unlocked <= 0 {
		return
	}
	ct := closeTypeOf(open)
	if !t.IsPendingPriceValid(ct, symbol, tp) {
		t.log.Info("takeProfit pend suppressed, price out of range",
			zap.String("symbol", symbol),
			zap.String("orderID", open.OrderID),
			zap.Float64("takeProfit", tp))
		return
	}
	packs, err := t.CloseOrder(open, tp, unlocked, false)
	if err != nil {
		t.log.LogError(err, map[string]interface{}{"op": "takeProfit", "orderID": open.OrderID})
		return
	}
	for _, p := range packs {
		p.AutoExit = info
		p.AddTrack(TagAutoExit)
		info.TPOrderIDs.Add(p.OrderID)
	}
}

// stopLossHit 多头用一档买价判定，空头用一档卖价判定。
func (t *OrderTemplate) stopLossHit(open *order.Pack, stopLoss float64) bool {
	symbol := open.Order.Symbol
	if open.Order.Direction == order.DirectionLong {
		bid := t.view.BestBid(symbol)
		return bid > 0 && stopLoss >= bid
	}
	ask := t.view.BestAsk(symbol)
	return ask > 0 && stopLoss <= ask
}

// onAutoExitOrderPack 止盈挂单的终态跟踪：外部撤单或拒单时暂停止盈补发。
func (t *OrderTemplate) onAutoExitOrderPack(p *order.Pack) {
	info := p.AutoExit
	if info == nil || p.OrderID == info.OriginID {
		return
	}
	if !info.TPOrderIDs.Has(p.OrderID) || !p.Order.Status.Finished() {
		return
	}
	info.TPOrderIDs.Remove(p.OrderID)
	switch p.Order.Status {
	case order.StatusCancelled:
		if !p.CancelTag {
			info.CheckTP = false
			t.log.Warn("takeProfit pending cancelled externally, suspend TP",
				zap.String("orderID", p.OrderID),
				zap.String("originID", info.OriginID))
		}
	case order.StatusRejected:
		info.CheckTP = false
		t.log.Warn("takeProfit pending rejected, suspend TP",
			zap.String("orderID", p.OrderID),
			zap.String("originID", info.OriginID))
	}
}
