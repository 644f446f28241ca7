package market

import "time"

// View 跟踪每个品种最近的行情切片与 K 线，并维护当前时间。
// 回测模式下当前时间取最新事件时间戳，实盘缺省回退到时钟。
type View struct {
	clock Clock
	ticks map[string]*Tick
	bars  map[string]*Bar
	now   time.Time
}

func NewView(clock Clock) *View {
	if clock == nil {
		clock = NowUTC
	}
	return &View{
		clock: clock,
		ticks: make(map[string]*Tick),
		bars:  make(map[string]*Bar),
	}
}

// UpdateTick 记录行情切片并推进当前时间。
func (v *View) UpdateTick(t *Tick) {
	v.ticks[t.Symbol] = t
	if t.Ts.After(v.now) {
		v.now = t.Ts
	}
}

// UpdateBar 记录 K 线并推进当前时间。
func (v *View) UpdateBar(b *Bar) {
	v.bars[b.Symbol] = b
	if b.Ts.After(v.now) {
		v.now = b.Ts
	}
}

// CurrentTime 返回当前时间：已见过事件则为最新事件时间，否则取时钟。
func (v *View) CurrentTime() time.Time {
	if v.now.IsZero() {
		return v.clock.Now()
	}
	return v.now
}

// Tick 返回品种最近的行情切片。
func (v *View) Tick(symbol string) (*Tick, bool) {
	t, ok := v.ticks[symbol]
	return t, ok
}

// Bar 返回品种最近的 K 线。
func (v *View) Bar(symbol string) (*Bar, bool) {
	b, ok := v.bars[symbol]
	return b, ok
}

// LastPrice 参考价：优先 tick 最新价，其次 bar 收盘价，缺数据返回 0。
func (v *View) LastPrice(symbol string) float64 {
	if t, ok := v.ticks[symbol]; ok && t.Last > 0 {
		return t.Last
	}
	if b, ok := v.bars[symbol]; ok {
		return b.Close
	}
	return 0
}

// BestBid 一档买价；无 tick 时回退到 bar 最低价（止损判定用）。
func (v *View) BestBid(symbol string) float64 {
	if t, ok := v.ticks[symbol]; ok {
		if p := t.BestBid(); p > 0 {
			return p
		}
	}
	if b, ok := v.bars[symbol]; ok {
		return b.Low
	}
	return 0
}

// BestAsk 一档卖价；无 tick 时回退到 bar 最高价。
func (v *View) BestAsk(symbol string) float64 {
	if t, ok := v.ticks[symbol]; ok {
		if p := t.BestAsk(); p > 0 {
			return p
		}
	}
	if b, ok := v.bars[symbol]; ok {
		return b.High
	}
	return 0
}
