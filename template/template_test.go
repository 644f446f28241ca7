package template_test

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-template-go/gateway"
	"order-template-go/infrastructure/logger"
	"order-template-go/market"
	"order-template-go/order"
	"order-template-go/template"
)

// stubGateway 记录出站请求，回报由测试自行注入。
type stubGateway struct {
	seq        int
	sent       []gateway.OrderRequest
	cancels    []string
	contracts  map[string]gateway.Contract
	failSend   error
	failCancel error
}

func newStubGateway() *stubGateway {
	return &stubGateway{contracts: map[string]gateway.Contract{
		"BTC-USDT": {Symbol: "BTC-USDT", PriceTick: 0.1, MinVolume: 0.001, Size: 1},
	}}
}

func (g *stubGateway) SendOrder(req gateway.OrderRequest) ([]string, error) {
	if g.failSend != nil {
		err := g.failSend
		g.failSend = nil
		return nil, err
	}
	g.seq++
	g.sent = append(g.sent, req)
	return []string{fmt.Sprintf("o%d", g.seq)}, nil
}

func (g *stubGateway) CancelOrder(id string) error {
	if g.failCancel != nil {
		err := g.failCancel
		g.failCancel = nil
		return err
	}
	g.cancels = append(g.cancels, id)
	return nil
}

func (g *stubGateway) GetContract(symbol string) (gateway.Contract, bool) {
	c, ok := g.contracts[symbol]
	return c, ok
}

func (g *stubGateway) RoundToPriceTick(symbol string, price float64) float64 {
	c, ok := g.contracts[symbol]
	if !ok || c.PriceTick <= 0 {
		return price
	}
	return order.Round(math.Round(price/c.PriceTick) * c.PriceTick)
}

var testStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func newTestTemplate(g gateway.Gateway) *template.OrderTemplate {
	clock := &market.ManualClock{T: testStart}
	return template.New(g, logger.NewNop(), clock, template.DefaultOptions())
}

// tickAt 注入指定时刻的一档行情。
func tickAt(tpl *template.OrderTemplate, ts time.Time, last, bid, ask float64) {
	t := &market.Tick{Symbol: "BTC-USDT", Last: last, Ts: ts}
	if bid > 0 {
		t.Bids = []market.Level{{Price: bid, Volume: 100}}
	}
	if ask > 0 {
		t.Asks = []market.Level{{Price: ask, Volume: 100}}
	}
	tpl.OnTick(t)
}

// orderUpdate 构造并派发订单回报快照。
func orderUpdate(tpl *template.OrderTemplate, p *order.Pack, status order.Status, traded, avg float64) {
	o := p.Order.Clone()
	o.Status = status
	o.TradedVolume = traded
	o.AvgPrice = avg
	tpl.OnOrder(o)
}

func TestMakeOrderRegistersPack(t *testing.T) {
	g := newStubGateway()
	tpl := newTestTemplate(g)

	packs, err := tpl.MakeOrder(order.CtOrderBuy, "BTC-USDT", 100.04, 2, order.PriceTypeLimit, false)
	require.NoError(t, err)
	require.Len(t, packs, 1)
	p := packs[0]
	assert.Equal(t, order.StatusInit, p.Order.Status)
	assert.Equal(t, 100.0, p.Order.Price, "price rounded to tick before submit")
	assert.Equal(t, order.DirectionLong, p.Order.Direction)
	assert.Equal(t, order.OffsetOpen, p.Order.Offset)

	got, ok := tpl.Book().Get(p.OrderID)
	require.True(t, ok)
	assert.Same(t, p, got)
}

func TestMakeOrderRejectsBadArgs(t *testing.T) {
	tpl := newTestTemplate(newStubGateway())

	_, err := tpl.MakeOrder(order.CtOrderBuy, "BTC-USDT", 100, 0.00004, order.PriceTypeLimit, false)
	assert.ErrorIs(t, err, template.ErrInvalidVolume, "volume rounding to 0 rejected")

	_, err = tpl.MakeOrder(order.CtOrderBuy, "BTC-USDT", 0, 1, order.PriceTypeLimit, false)
	assert.ErrorIs(t, err, template.ErrInvalidPrice)
}

func TestOnOrderTerminalIsIdempotent(t *testing.T) {
	g := newStubGateway()
	tpl := newTestTemplate(g)
	packs, err := tpl.MakeOrder(order.CtOrderBuy, "BTC-USDT", 100, 2, order.PriceTypeLimit, false)
	require.NoError(t, err)
	p := packs[0]

	orderUpdate(tpl, p, order.StatusAllTraded, 2, 100)
	require.True(t, p.Finished)
	require.Equal(t, order.StatusAllTraded, p.Order.Status)

	// 终态后的回报被丢弃
	orderUpdate(tpl, p, order.StatusPartTraded, 1, 100)
	assert.Equal(t, order.StatusAllTraded, p.Order.Status)
	assert.Equal(t, 2.0, p.Order.TradedVolume)
}

func TestOnOrderUnknownStatusDoesNotFinish(t *testing.T) {
	tpl := newTestTemplate(newStubGateway())
	packs, err := tpl.MakeOrder(order.CtOrderBuy, "BTC-USDT", 100, 2, order.PriceTypeLimit, false)
	require.NoError(t, err)
	p := packs[0]

	orderUpdate(tpl, p, order.StatusUnknown, 0, 0)
	assert.False(t, p.Finished, "UNKNOWN must not advance the state machine")
	assert.Equal(t, order.StatusUnknown, p.Order.Status)
}

func TestOnTradeDeduplicates(t *testing.T) {
	tpl := newTestTemplate(newStubGateway())
	packs, err := tpl.MakeOrder(order.CtOrderBuy, "BTC-USDT", 100, 2, order.PriceTypeLimit, false)
	require.NoError(t, err)
	p := packs[0]

	tr := &order.Trade{TradeID: "t1", OrderID: p.OrderID, Symbol: "BTC-USDT", Price: 100, Volume: 1}
	tpl.OnTrade(tr)
	tpl.OnTrade(tr)
	assert.Len(t, p.Trades, 1)
	assert.Equal(t, 1, tpl.Fills().Len())
}

func TestCancelOrderGap(t *testing.T) {
	g := newStubGateway()
	tpl := newTestTemplate(g)
	packs, err := tpl.MakeOrder(order.CtOrderBuy, "BTC-USDT", 100, 2, order.PriceTypeLimit, false)
	require.NoError(t, err)
	p := packs[0]

	tickAt(tpl, testStart, 100, 99.9, 100.1)
	tpl.CancelOrder(p)
	tpl.CancelOrder(p)
	assert.Len(t, g.cancels, 1, "back-to-back cancels collapse into one")

	// 超过间隔后允许再次撤单
	tickAt(tpl, testStart.Add(6*time.Second), 100, 99.9, 100.1)
	tpl.CancelOrder(p)
	assert.Len(t, g.cancels, 2)
	assert.True(t, p.CancelTag)
}

func TestFailedCancelDoesNotBurnGap(t *testing.T) {
	g := newStubGateway()
	tpl := newTestTemplate(g)
	packs, err := tpl.MakeOrder(order.CtOrderBuy, "BTC-USDT", 100, 2, order.PriceTypeLimit, false)
	require.NoError(t, err)
	p := packs[0]

	tickAt(tpl, testStart, 100, 99.9, 100.1)
	g.failCancel = errors.New("gateway unavailable")
	tpl.CancelOrder(p)
	assert.False(t, p.CancelTag)
	assert.True(t, p.LastCancelTime.IsZero(), "failed dispatch must not start the gap")

	// 同一时刻重试即可成功
	tpl.CancelOrder(p)
	assert.Len(t, g.cancels, 1)
	assert.True(t, p.CancelTag)
}

func TestCancelJoinedParentWaitsForChildren(t *testing.T) {
	g := newStubGateway()
	tpl := newTestTemplate(g)
	parent, info, err := tpl.MakeBatchOrder(order.CtOrderBuy, "BTC-USDT", 100, 2, 2)
	require.NoError(t, err)
	require.Len(t, info.ChildIDs, 2)
	c1, _ := tpl.Book().Get(info.ChildIDs[0])
	c2, _ := tpl.Book().Get(info.ChildIDs[1])

	orderUpdate(tpl, c1, order.StatusPartTraded, 1, 100)
	require.Equal(t, order.StatusPartTraded, parent.Order.Status)

	// 撤销父单：停用单元并对全部在途子单派发撤单
	tpl.CancelOrder(parent)
	assert.False(t, info.Active)
	assert.ElementsMatch(t, info.ChildIDs, g.cancels)
	assert.Equal(t, order.StatusCancelling, parent.Order.Status)

	// 子单尚有在途时父单保持 CANCELLING，不回退 PART_TRADED
	orderUpdate(tpl, c1, order.StatusCancelled, 1, 100)
	assert.Equal(t, order.StatusCancelling, parent.Order.Status)
	assert.False(t, parent.Finished)

	orderUpdate(tpl, c2, order.StatusCancelled, 0, 0)
	assert.True(t, parent.Finished)
	assert.Equal(t, order.StatusCancelled, parent.Order.Status)
	assert.Equal(t, 1.0, parent.Order.TradedVolume)
}

func TestCancelFakePackSynchronous(t *testing.T) {
	g := newStubGateway()
	tpl := newTestTemplate(g)
	p := tpl.FakeOrder(order.CtOrderBuy, "BTC-USDT", 100, 2)

	tpl.CancelOrder(p)
	assert.Equal(t, order.StatusCancelled, p.Order.Status)
	assert.True(t, p.Finished)
	assert.Empty(t, g.cancels, "fake pack never reaches the gateway")
}

func TestCustomCallbackAndUserHookOrder(t *testing.T) {
	tpl := newTestTemplate(newStubGateway())
	var calls []string
	tpl.RegisterOrderCustomCallback("myTag", func(p *order.Pack) {
		calls = append(calls, "tag")
	})
	tpl.SetOnOrderPack(func(p *order.Pack) {
		calls = append(calls, "user")
	})

	packs, err := tpl.MakeOrder(order.CtOrderBuy, "BTC-USDT", 100, 2, order.PriceTypeLimit, false)
	require.NoError(t, err)
	p := packs[0]
	p.AddTrack("myTag")

	orderUpdate(tpl, p, order.StatusNotTraded, 0, 0)
	assert.Equal(t, []string{"tag", "user"}, calls, "user hook runs after tag callbacks")
}

func TestCallbackPanicDoesNotAbortDispatch(t *testing.T) {
	tpl := newTestTemplate(newStubGateway())
	userCalled := false
	tpl.RegisterOrderCustomCallback("boom", func(p *order.Pack) { panic("boom") })
	tpl.SetOnOrderPack(func(p *order.Pack) { userCalled = true })

	packs, err := tpl.MakeOrder(order.CtOrderBuy, "BTC-USDT", 100, 2, order.PriceTypeLimit, false)
	require.NoError(t, err)
	packs[0].AddTrack("boom")
	orderUpdate(tpl, packs[0], order.StatusNotTraded, 0, 0)
	assert.True(t, userCalled)
}

func TestPriceDiscipline(t *testing.T) {
	tpl := newTestTemplate(newStubGateway())
	tickAt(tpl, testStart, 100, 99.9, 100.1)

	// 激进价 = 参考价 ± 限制比例，再对齐到 tick
	assert.Equal(t, 102.0, tpl.GetExecPrice("BTC-USDT", order.CtOrderBuy))
	assert.Equal(t, 98.0, tpl.GetExecPrice("BTC-USDT", order.CtOrderShort))

	assert.True(t, tpl.IsPendingPriceValid(order.CtOrderBuy, "BTC-USDT", 101))
	assert.False(t, tpl.IsPendingPriceValid(order.CtOrderBuy, "BTC-USDT", 102.5))
	assert.True(t, tpl.IsPendingPriceValid(order.CtOrderSell, "BTC-USDT", 99))
	assert.False(t, tpl.IsPendingPriceValid(order.CtOrderSell, "BTC-USDT", 97))

	assert.False(t, tpl.IsPendingPriceValid(order.CtOrderBuy, "NO-DATA", 1), "no reference price")
}

func TestMaxVolumePolicyTrimsOrder(t *testing.T) {
	g := newStubGateway()
	tpl := newTestTemplate(g)
	tpl.SetMaxVolumePolicy(template.FixedMaxVolume{Volume: 1.5})

	packs, err := tpl.MakeOrder(order.CtOrderBuy, "BTC-USDT", 100, 5, order.PriceTypeLimit, false)
	require.NoError(t, err)
	require.Len(t, packs, 1)
	assert.Equal(t, 1.5, packs[0].Order.TotalVolume)

	tpl.SetMaxVolumePolicy(template.FixedMaxVolume{Volume: 0})
	packs, err = tpl.MakeOrder(order.CtOrderBuy, "BTC-USDT", 100, 5, order.PriceTypeLimit, false)
	require.NoError(t, err)
	assert.Empty(t, packs, "request trimmed to zero is a no-op")
}

func TestCloseOrderLinksAndCaps(t *testing.T) {
	g := newStubGateway()
	tpl := newTestTemplate(g)
	packs, err := tpl.MakeOrder(order.CtOrderBuy, "BTC-USDT", 100, 10, order.PriceTypeLimit, false)
	require.NoError(t, err)
	open := packs[0]
	orderUpdate(tpl, open, order.StatusAllTraded, 10, 100)

	closes, err := tpl.CloseOrder(open, 101, 0, false)
	require.NoError(t, err)
	require.Len(t, closes, 1)
	c := closes[0]
	assert.Equal(t, order.CtOrderSell, order.CtOrderOf(c.Order.Direction, c.Order.Offset))
	assert.Equal(t, 10.0, c.Order.TotalVolume)
	assert.Equal(t, open.OrderID, c.OpenID)
	assert.Contains(t, open.CloseIDs, c.OrderID)

	// 未占用量已耗尽，再平仓为空操作
	more, err := tpl.CloseOrder(open, 101, 5, false)
	require.NoError(t, err)
	assert.Empty(t, more)
	assert.Equal(t, 0.0, tpl.Book().UnlockedVolume(open))
}

func TestCloseOrderCoverRependsPendings(t *testing.T) {
	g := newStubGateway()
	tpl := newTestTemplate(g)
	packs, err := tpl.MakeOrder(order.CtOrderBuy, "BTC-USDT", 100, 10, order.PriceTypeLimit, false)
	require.NoError(t, err)
	open := packs[0]
	orderUpdate(tpl, open, order.StatusAllTraded, 10, 100)

	first, err := tpl.CloseOrder(open, 105, 0, false)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// cover：旧平仓单被撤并按新价补发
	tickAt(tpl, testStart, 100, 99.9, 100.1)
	_, err = tpl.CloseOrder(open, 102, 0, true)
	require.NoError(t, err)
	require.Contains(t, g.cancels, first[0].OrderID)

	// 网关确认撤单后，补发单元按新价重发并关联到同一开仓包
	orderUpdate(tpl, first[0], order.StatusCancelled, 0, 0)
	require.NotNil(t, first[0].Repending)
	require.Len(t, first[0].Repending.RependedIDs, 1)
	rep, ok := tpl.Book().Get(first[0].Repending.RependedIDs[0])
	require.True(t, ok)
	assert.Equal(t, 102.0, rep.Order.Price)
	assert.Equal(t, open.OrderID, rep.OpenID)
}

func TestSplitOrderResidualChild(t *testing.T) {
	tpl := newTestTemplate(newStubGateway())
	packs, err := tpl.MakeOrder(order.CtOrderBuy, "BTC-USDT", 100, 10, order.PriceTypeLimit, false)
	require.NoError(t, err)
	p := packs[0]

	_, err = tpl.SplitOrder(p, 4, 4)
	assert.ErrorIs(t, err, template.ErrNotTerminal)

	orderUpdate(tpl, p, order.StatusAllTraded, 10, 100)
	children, err := tpl.SplitOrder(p, 4, 4)
	require.NoError(t, err)
	require.Len(t, children, 3, "residual child absorbs the leftover")
	sum := 0.0
	for _, c := range children {
		assert.Equal(t, order.StatusAllTraded, c.Order.Status)
		assert.True(t, c.Fake)
		assert.Equal(t, p.Order.Symbol, c.Order.Symbol)
		sum += c.Order.TradedVolume
	}
	assert.Equal(t, p.Order.TradedVolume, order.Round(sum))
	assert.Equal(t, 2.0, children[2].Order.TradedVolume)
}

func TestSplitOrderOverAllocationTrims(t *testing.T) {
	tpl := newTestTemplate(newStubGateway())
	packs, err := tpl.MakeOrder(order.CtOrderShort, "BTC-USDT", 100, 5, order.PriceTypeLimit, false)
	require.NoError(t, err)
	p := packs[0]
	orderUpdate(tpl, p, order.StatusAllTraded, 5, 100)

	children, err := tpl.SplitOrder(p, 3, 3, 3)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, 3.0, children[0].Order.TradedVolume)
	assert.Equal(t, 2.0, children[1].Order.TradedVolume)
}
