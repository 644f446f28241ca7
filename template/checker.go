package template

import (
	"order-template-go/market"
)

// OnTick 行情切片入口：更新视图后依序运行周期检查。
func (t *OrderTemplate) OnTick(tick *market.Tick) {
	t.view.UpdateTick(tick)
	t.checkOnPeriodStart(tick.Symbol)
	t.checkOnPeriodEnd(tick.Symbol)
}

// OnBar K 线入口：周期检查之间插入状态探测。
func (t *OrderTemplate) OnBar(b *market.Bar) {
	t.view.UpdateBar(b)
	t.checkOnPeriodStart(b.Symbol)
	t.DoStatusCheck(b)
	t.checkOnPeriodEnd(b.Symbol)
}

// 周期起始：先撤销与退出，再由末尾检查发出新委托。
// 强制单与时限单的撤销、自动退出、条件平仓必须先于分片引擎补发。
func (t *OrderTemplate) checkOnPeriodStart(symbol string) {
	t.checkComposoryOrders(symbol)
	t.checkTimeLimitOrders()
	t.checkAutoExit(symbol)
	t.checkConditionalClose()
}

// 周期末尾：强平核对在本周期成交全部落账后运行，然后推进分片引擎。
func (t *OrderTemplate) checkOnPeriodEnd(symbol string) {
	t.checkComposoryCloseOrders(symbol)
	t.checkDepthOrders(symbol)
	t.checkStepOrders(symbol)
	t.updatePoolGauges()
}

func (t *OrderTemplate) updatePoolGauges() {
	if t.metrics == nil {
		return
	}
	t.metrics.ActivePacks.Set(float64(len(t.book.Active())))
	t.metrics.PoolSizes.WithLabelValues("timeLimit").Set(float64(len(t.timeLimitPool)))
	t.metrics.PoolSizes.WithLabelValues("composory").Set(float64(len(t.composoryPool)))
	t.metrics.PoolSizes.WithLabelValues("composoryClose").Set(float64(len(t.composoryClosePool)))
	t.metrics.PoolSizes.WithLabelValues("step").Set(float64(len(t.stepPool)))
	t.metrics.PoolSizes.WithLabelValues("depth").Set(float64(len(t.depthPool)))
	t.metrics.PoolSizes.WithLabelValues("conditional").Set(float64(len(t.conditionalPool)))
	t.metrics.PoolSizes.WithLabelValues("autoExit").Set(float64(len(t.autoExitPool)))
	t.metrics.PoolSizes.WithLabelValues("repending").Set(float64(len(t.rependPool)))
	t.metrics.PoolSizes.WithLabelValues("joined").Set(float64(len(t.joinedPool)))
}
