package spot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"order-template-go/gateway"
	"order-template-go/order"
)

type stubBalances map[string]float64

func (s stubBalances) Account(id string) (*gateway.AccountData, bool) {
	v, ok := s[id]
	if !ok {
		return nil, false
	}
	return &gateway.AccountData{AccountID: id, Balance: v, Available: v}, true
}

type stubContracts map[string]gateway.Contract

func (s stubContracts) GetContract(symbol string) (gateway.Contract, bool) {
	c, ok := s[symbol]
	return c, ok
}

func TestSplitSymbol(t *testing.T) {
	base, quote, ok := SplitSymbol("BTC-USDT")
	assert.True(t, ok)
	assert.Equal(t, "BTC", base)
	assert.Equal(t, "USDT", quote)

	_, _, ok = SplitSymbol("BTCUSDT")
	assert.False(t, ok)
}

func TestMaxVolumeShortBoundByBase(t *testing.T) {
	p := NewMaxVolumePolicy(
		stubBalances{"BTC_SPOT": 1.2345678, "USDT_SPOT": 10000},
		stubContracts{"BTC-USDT": {Symbol: "BTC-USDT", MinVolume: 0.001}},
	)
	// 卖出上限为基础币可用量，向下取整到最小数量
	assert.Equal(t, 1.234, p.MaxVolume("BTC-USDT", order.CtOrderShort, 100))
}

func TestMaxVolumeLongBoundByQuote(t *testing.T) {
	p := NewMaxVolumePolicy(
		stubBalances{"USDT_SPOT": 1000},
		stubContracts{"BTC-USDT": {Symbol: "BTC-USDT", MinVolume: 0.001}},
	)
	// 1000 / 100 × 0.99 = 9.9
	assert.Equal(t, 9.9, p.MaxVolume("BTC-USDT", order.CtOrderBuy, 100))
	// 无价格无法折算
	assert.Equal(t, 0.0, p.MaxVolume("BTC-USDT", order.CtOrderBuy, 0))
}

func TestMaxVolumeMissingAccount(t *testing.T) {
	p := NewMaxVolumePolicy(stubBalances{}, stubContracts{})
	assert.Equal(t, 0.0, p.MaxVolume("BTC-USDT", order.CtOrderShort, 100))
	assert.Equal(t, 0.0, p.MaxVolume("bad", order.CtOrderBuy, 100))
}

func TestMaxVolumeCustomResolver(t *testing.T) {
	p := NewMaxVolumePolicy(stubBalances{"spot.ETH": 3}, stubContracts{})
	p.AccountID = func(cur string) string { return "spot." + cur }
	assert.Equal(t, 3.0, p.MaxVolume("ETH-USDT", order.CtOrderShort, 0))
}

func TestPriceLimitSwapRule(t *testing.T) {
	p := NewPriceLimitPolicy()
	assert.Equal(t, 0.02, p.LimitRange("BTC-USDT"))
	assert.Equal(t, 0.01, p.LimitRange("BTC-USDT-SWAP"))
	assert.Equal(t, 0.01, p.LimitRange("btc-usdt-swap"))
}
