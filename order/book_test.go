package order

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newPackWith(id string, status Status, total, traded float64) *Pack {
	p := NewPack(&Order{
		OrderID:      id,
		Symbol:       "BTC-USDT",
		Status:       status,
		TotalVolume:  total,
		TradedVolume: traded,
	})
	p.Finished = status.Finished()
	return p
}

func TestBookVolumeAccounting(t *testing.T) {
	b := NewBook()
	open := newPackWith("open-1", StatusAllTraded, 10, 10)
	b.Set(open)

	// 一个在途平仓包占 4（按委托总量计），一个完结平仓包占 3（按成交量计）
	pending := newPackWith("close-1", StatusNotTraded, 4, 0)
	done := newPackWith("close-2", StatusAllTraded, 3, 3)
	b.Set(pending)
	b.Set(done)
	LinkClose(open, pending)
	LinkClose(open, done)

	require.Equal(t, 7.0, b.LockedVolume(open))
	require.Equal(t, 3.0, b.ClosedVolume(open))
	require.Equal(t, 3.0, b.UnlockedVolume(open))
	require.False(t, b.OrderClosed(open))

	// 在途平仓包完结并全部成交后，开仓包视为已了结（closed >= traded）
	pending.Order.Status = StatusAllTraded
	pending.Order.TradedVolume = 4
	pending.Finished = true
	extra := newPackWith("close-3", StatusAllTraded, 3, 3)
	b.Set(extra)
	LinkClose(open, extra)
	require.Equal(t, 10.0, b.ClosedVolume(open))
	require.Equal(t, 0.0, b.UnlockedVolume(open))
	require.True(t, b.OrderClosed(open))
}

func TestBookUnlockedNeverNegative(t *testing.T) {
	b := NewBook()
	open := newPackWith("open-2", StatusPartTraded, 10, 2)
	b.Set(open)
	// 占用超过成交量时下界钳到 0
	over := newPackWith("close-4", StatusNotTraded, 5, 0)
	b.Set(over)
	LinkClose(open, over)
	require.Equal(t, 0.0, b.UnlockedVolume(open))
}

func TestLinkCloseIdempotent(t *testing.T) {
	open := newPackWith("open-3", StatusAllTraded, 1, 1)
	close1 := newPackWith("close-5", StatusNotTraded, 1, 0)
	LinkClose(open, close1)
	LinkClose(open, close1)
	require.Len(t, open.CloseIDs, 1)
	require.Equal(t, "open-3", close1.OpenID)
}

func TestFillIndexDeduplicates(t *testing.T) {
	f := NewFillIndex()
	tr := &Trade{TradeID: "t1", OrderID: "o1", Symbol: "ETH-USDT", Volume: 2}
	require.True(t, f.Add(tr))
	require.False(t, f.Add(tr))
	require.Equal(t, 2.0, f.VolumeBySymbol("ETH-USDT"))
	require.Equal(t, 1, f.Len())
}
