package template

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"order-template-go/order"
)

// FixedPriceLimit 固定比例的价格偏移限制。
type FixedPriceLimit struct {
	Range float64
}

func (p FixedPriceLimit) LimitRange(string) float64 { return p.Range }

// SymbolPriceLimit 按品种配置的价格偏移限制，支持配置热更新。
// Update 来自配置监听 goroutine，读取发生在事件泵线程。
type SymbolPriceLimit struct {
	mu       sync.RWMutex
	ranges   map[string]float64
	defRange float64
}

func NewSymbolPriceLimit(ranges map[string]float64, defaultRange float64) *SymbolPriceLimit {
	if defaultRange <= 0 {
		defaultRange = 0.02
	}
	p := &SymbolPriceLimit{defRange: defaultRange}
	p.Update(ranges)
	return p
}

func (p *SymbolPriceLimit) LimitRange(symbol string) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if r, ok := p.ranges[symbol]; ok && r > 0 {
		return r
	}
	return p.defRange
}

// Update 整体替换品种限制表。
func (p *SymbolPriceLimit) Update(ranges map[string]float64) {
	next := make(map[string]float64, len(ranges))
	for k, v := range ranges {
		next[k] = v
	}
	p.mu.Lock()
	p.ranges = next
	p.mu.Unlock()
}

// FixedMaxVolume 固定上限的最大数量策略。
type FixedMaxVolume struct {
	Volume float64
}

func (p FixedMaxVolume) MaxVolume(string, order.CtOrder, float64) float64 {
	return p.Volume
}

// unboundedMaxVolume 默认不限制报单数量。
type unboundedMaxVolume struct{}

func (unboundedMaxVolume) MaxVolume(string, order.CtOrder, float64) float64 {
	return math.Inf(1)
}

// AdjustPrice 将价格对齐到最小变动价位，对齐改变了价格时记录日志。
func (t *OrderTemplate) AdjustPrice(symbol string, price float64, tag string) float64 {
	adjusted := t.gw.RoundToPriceTick(symbol, price)
	if adjusted != price {
		t.log.Debug("price adjusted to tick",
			zap.String("symbol", symbol),
			zap.String("tag", tag),
			zap.Float64("raw", price),
			zap.Float64("adjusted", adjusted))
	}
	return adjusted
}

// PriceLimitRange 返回品种允许的价格偏移比例。
func (t *OrderTemplate) PriceLimitRange(symbol string) float64 {
	return t.priceLimit.LimitRange(symbol)
}

// GetExecPrice 强制单激进价：参考价向吃单方向偏移一个限制比例。
// 无参考价时返回 0。
func (t *OrderTemplate) GetExecPrice(symbol string, orderType order.CtOrder) float64 {
	ref := t.view.LastPrice(symbol)
	if ref <= 0 {
		return 0
	}
	r := t.PriceLimitRange(symbol)
	var price float64
	if orderType.Direction() == order.DirectionLong {
		price = ref * (1 + r)
	} else {
		price = ref * (1 - r)
	}
	return t.AdjustPrice(symbol, price, "execPrice")
}

// IsPendingPriceValid 挂单价是否在允许区间内：
// 买向上限 current×UpperLimit，卖向下限 current×LowerLimit。
// 无参考价时视为无效。
func (t *OrderTemplate) IsPendingPriceValid(orderType order.CtOrder, symbol string, price float64) bool {
	cur := t.view.LastPrice(symbol)
	if cur <= 0 || price <= 0 {
		return false
	}
	if orderType.Direction() == order.DirectionLong {
		return price <= cur*t.opts.UpperLimit
	}
	return price >= cur*t.opts.LowerLimit
}

// MaximumOrderVolume 返回当前允许的最大报单数量，默认无上限。
func (t *OrderTemplate) MaximumOrderVolume(symbol string, orderType order.CtOrder, price float64) float64 {
	return t.maxVolume.MaxVolume(symbol, orderType, price)
}
