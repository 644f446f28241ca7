package template

import (
	"order-template-go/gateway"
	"order-template-go/market"
	"order-template-go/order"
)

// Pump 把网关的并行回调序列化进单一 goroutine，
// 保证模板与各引擎在无锁前提下按到达顺序处理事件。
type Pump struct {
	t     *OrderTemplate
	queue chan func()
	done  chan struct{}
}

// NewPump 创建事件泵。buffer 为待处理事件上限，超出时 Post 阻塞。
func NewPump(t *OrderTemplate, buffer int) *Pump {
	if buffer <= 0 {
		buffer = 1024
	}
	return &Pump{
		t:     t,
		queue: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Start 启动事件循环。
func (p *Pump) Start() {
	go func() {
		defer close(p.done)
		for fn := range p.queue {
			fn()
		}
	}()
}

// Stop 关闭队列并等待在途事件处理完毕。
func (p *Pump) Stop() {
	close(p.queue)
	<-p.done
}

// Post 投递任意任务到事件泵线程（定时器、策略指令）。
func (p *Pump) Post(fn func()) {
	p.queue <- fn
}

// gateway.EventHandler 实现：全部回调转投事件泵。

func (p *Pump) OnTick(t *market.Tick) { p.Post(func() { p.t.OnTick(t) }) }

func (p *Pump) OnBar(b *market.Bar) { p.Post(func() { p.t.OnBar(b) }) }

func (p *Pump) OnOrder(o *order.Order) { p.Post(func() { p.t.OnOrder(o) }) }

func (p *Pump) OnTrade(tr *order.Trade) { p.Post(func() { p.t.OnTrade(tr) }) }

func (p *Pump) OnAccount(a *gateway.AccountData) { p.Post(func() { p.t.OnAccount(a) }) }

func (p *Pump) OnPosition(pos *gateway.PositionData) { p.Post(func() { p.t.OnPosition(pos) }) }

func (p *Pump) OnError(e *gateway.ErrorData) { p.Post(func() { p.t.OnError(e) }) }
