package market

import (
	"testing"
	"time"
)

func TestViewCurrentTimeFollowsEvents(t *testing.T) {
	clock := &ManualClock{T: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	v := NewView(clock)
	if !v.CurrentTime().Equal(clock.T) {
		t.Fatalf("empty view should fall back to clock")
	}
	ts := clock.T.Add(time.Hour)
	v.UpdateTick(&Tick{Symbol: "BTC-USDT", Last: 100, Ts: ts})
	if !v.CurrentTime().Equal(ts) {
		t.Fatalf("current time should follow latest event")
	}
	// 旧事件不回拨时间
	v.UpdateBar(&Bar{Symbol: "BTC-USDT", Close: 99, Ts: ts.Add(-time.Minute)})
	if !v.CurrentTime().Equal(ts) {
		t.Fatalf("stale event must not rewind current time")
	}
}

func TestViewPriceFallbacks(t *testing.T) {
	v := NewView(nil)
	if v.LastPrice("X") != 0 {
		t.Fatalf("missing symbol should return 0")
	}
	v.UpdateBar(&Bar{Symbol: "X", Close: 50, High: 51, Low: 49, Ts: time.Now()})
	if v.LastPrice("X") != 50 || v.BestBid("X") != 49 || v.BestAsk("X") != 51 {
		t.Fatalf("bar fallback broken: last=%v bid=%v ask=%v", v.LastPrice("X"), v.BestBid("X"), v.BestAsk("X"))
	}
	v.UpdateTick(&Tick{
		Symbol: "X", Last: 50.5,
		Bids: []Level{{Price: 50.4, Volume: 1}},
		Asks: []Level{{Price: 50.6, Volume: 1}},
		Ts:   time.Now(),
	})
	if v.LastPrice("X") != 50.5 || v.BestBid("X") != 50.4 || v.BestAsk("X") != 50.6 {
		t.Fatalf("tick should take precedence")
	}
}

func TestExecutableVolume(t *testing.T) {
	tick := &Tick{
		Symbol: "X",
		Bids:   []Level{{Price: 200, Volume: 1}, {Price: 199, Volume: 10}},
		Asks:   []Level{{Price: 201, Volume: 2}, {Price: 202, Volume: 3}},
	}
	// 卖出，限价 200：仅一档买价不劣于限价
	vol, levels := ExecutableVolume(tick, false, 200, 3)
	if vol != 1 || len(levels) != 1 {
		t.Fatalf("sell executable = %v (%d levels), want 1 (1 level)", vol, len(levels))
	}
	// 买入，限价 202：两档卖盘都可吃
	vol, levels = ExecutableVolume(tick, true, 202, 3)
	if vol != 5 || len(levels) != 2 {
		t.Fatalf("buy executable = %v (%d levels), want 5 (2 levels)", vol, len(levels))
	}
	// 限价劣于全部档位
	vol, _ = ExecutableVolume(tick, true, 200, 3)
	if vol != 0 {
		t.Fatalf("no acceptable level should yield 0, got %v", vol)
	}
}
