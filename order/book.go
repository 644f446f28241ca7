package order

import "sync"

// Book 记录全部订单包，支持查询与开平占用核算。
// 写入只发生在事件泵线程；读锁允许监控侧并发查询。
type Book struct {
	mu    sync.RWMutex
	packs map[string]*Pack
}

func NewBook() *Book {
	return &Book{packs: make(map[string]*Pack)}
}

func (b *Book) Set(p *Pack) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.packs[p.OrderID] = p
}

func (b *Book) Get(id string) (*Pack, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.packs[id]
	return p, ok
}

// Remove 显式移除订单包（仅由引擎回收时调用）。
func (b *Book) Remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.packs, id)
}

// List 返回全部订单包（浅拷贝切片）。
func (b *Book) List() []*Pack {
	b.mu.RLock()
	defer b.mu.RUnlock()
	res := make([]*Pack, 0, len(b.packs))
	for _, p := range b.packs {
		res = append(res, p)
	}
	return res
}

// Active 返回未终态的订单包。
func (b *Book) Active() []*Pack {
	b.mu.RLock()
	defer b.mu.RUnlock()
	res := make([]*Pack, 0)
	for _, p := range b.packs {
		if !p.Finished {
			res = append(res, p)
		}
	}
	return res
}

func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.packs)
}

// ClosedVolume 开仓包名下所有平仓包的累计成交量。
func (b *Book) ClosedVolume(open *Pack) float64 {
	total := 0.0
	for _, id := range open.CloseIDs {
		if p, ok := b.Get(id); ok {
			total += p.Order.TradedVolume
		}
	}
	return Round(total)
}

// LockedVolume 开仓包名下被平仓占用的数量：
// 未完结平仓包按委托总量计，已完结按成交量计。
func (b *Book) LockedVolume(open *Pack) float64 {
	total := 0.0
	for _, id := range open.CloseIDs {
		p, ok := b.Get(id)
		if !ok {
			continue
		}
		if p.Finished {
			total += p.Order.TradedVolume
		} else {
			total += p.Order.TotalVolume
		}
	}
	return Round(total)
}

// UnlockedVolume 开仓包已成交但尚未被任何平仓占用的数量，下界为 0。
func (b *Book) UnlockedVolume(open *Pack) float64 {
	v := Round(open.Order.TradedVolume - b.LockedVolume(open))
	if v < 0 {
		return 0
	}
	return v
}

// OrderClosed 开仓包是否已全部了结：
// 开仓终态，且平仓累计成交量覆盖开仓成交量（零成交开仓视为已了结）。
func (b *Book) OrderClosed(open *Pack) bool {
	if !open.Finished {
		return false
	}
	if open.Order.TradedVolume <= 0 {
		return true
	}
	return b.ClosedVolume(open) >= Round(open.Order.TradedVolume)
}
