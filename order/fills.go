package order

import "sync"

// FillIndex 全局成交索引：按成交 ID 存储，并维护按品种的累计量。
type FillIndex struct {
	mu       sync.RWMutex
	trades   map[string]*Trade
	bySymbol map[string]float64
}

func NewFillIndex() *FillIndex {
	return &FillIndex{
		trades:   make(map[string]*Trade),
		bySymbol: make(map[string]float64),
	}
}

// Add 记录成交；重复成交 ID 被忽略（网关重连可能重放回报）。
func (f *FillIndex) Add(t *Trade) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.trades[t.TradeID]; ok {
		return false
	}
	f.trades[t.TradeID] = t
	f.bySymbol[t.Symbol] = Round(f.bySymbol[t.Symbol] + t.Volume)
	return true
}

func (f *FillIndex) Get(tradeID string) (*Trade, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.trades[tradeID]
	return t, ok
}

func (f *FillIndex) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.trades)
}

// VolumeBySymbol 返回品种累计成交量。
func (f *FillIndex) VolumeBySymbol(symbol string) float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.bySymbol[symbol]
}
