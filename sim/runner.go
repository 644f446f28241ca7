// Package sim 把纸面网关、订单模板与脚本行情串成一个确定性的回放环境，
// 供场景测试与本地演练使用。
package sim

import (
	"time"

	"order-template-go/gateway"
	"order-template-go/infrastructure/logger"
	"order-template-go/market"
	"order-template-go/template"
)

// Config 回放环境参数。
type Config struct {
	Start     time.Time
	Contracts []gateway.Contract
	Options   template.Options
	Log       *logger.Logger
}

// Runner 确定性回放驱动器。事件同步派发，时间由手动时钟推进。
type Runner struct {
	Template *template.OrderTemplate
	Gateway  *gateway.Paper
	Clock    *market.ManualClock
}

// NewRunner 搭建纸面网关与模板并互相接线。
func NewRunner(cfg Config) *Runner {
	if cfg.Start.IsZero() {
		cfg.Start = time.Now().UTC()
	}
	log := cfg.Log
	if log == nil {
		log = logger.NewNop()
	}
	clock := &market.ManualClock{T: cfg.Start}
	paper := gateway.NewPaper(nil, nil)
	for _, c := range cfg.Contracts {
		paper.RegisterContract(c)
	}
	tpl := template.New(paper, log, clock, cfg.Options)
	paper.SetHandler(tpl)
	return &Runner{Template: tpl, Gateway: paper, Clock: clock}
}

// Advance 推进手动时钟。
func (r *Runner) Advance(d time.Duration) {
	r.Clock.Advance(d)
}

// Tick 以当前时钟时间注入一笔一档行情并触发周期检查。
func (r *Runner) Tick(symbol string, bid, bidVol, ask, askVol float64) {
	last := bid
	if last <= 0 {
		last = ask
	}
	t := &market.Tick{
		Symbol: symbol,
		Last:   last,
		Ts:     r.Clock.Now(),
	}
	if bid > 0 {
		t.Bids = []market.Level{{Price: bid, Volume: bidVol}}
	}
	if ask > 0 {
		t.Asks = []market.Level{{Price: ask, Volume: askVol}}
	}
	r.Gateway.PushTick(t)
}

// DepthTick 注入多档行情。
func (r *Runner) DepthTick(symbol string, last float64, bids, asks []market.Level) {
	r.Gateway.PushTick(&market.Tick{
		Symbol: symbol,
		Last:   last,
		Bids:   bids,
		Asks:   asks,
		Ts:     r.Clock.Now(),
	})
}

// Bar 注入一根 K 线（状态探测走 OnBar 路径）。
func (r *Runner) Bar(symbol string, open, high, low, close float64) {
	r.Gateway.PushBar(&market.Bar{
		Symbol: symbol,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Ts:     r.Clock.Now(),
	})
}
