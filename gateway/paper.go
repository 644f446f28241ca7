package gateway

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"order-template-go/market"
	"order-template-go/order"
)

// Paper 内存撮合网关，供仿真与测试使用。
// 订单回报默认由调用方通过 Ack/Fill/Reject 显式驱动，
// AutoAck 打开后下单立即回报 NOT_TRADED。
type Paper struct {
	mu        sync.Mutex
	handler   EventHandler
	limiter   RateLimiter
	contracts map[string]Contract
	orders    map[string]*order.Order
	seq       int

	AutoAck  bool
	FailNext error // 下一次 SendOrder 直接返回该错误
}

func NewPaper(handler EventHandler, limiter RateLimiter) *Paper {
	if limiter == nil {
		limiter = NopLimiter{}
	}
	return &Paper{
		handler:   handler,
		limiter:   limiter,
		contracts: make(map[string]Contract),
		orders:    make(map[string]*order.Order),
	}
}

func (p *Paper) SetHandler(handler EventHandler) {
	p.mu.Lock()
	p.handler = handler
	p.mu.Unlock()
}

func (p *Paper) RegisterContract(c Contract) {
	p.mu.Lock()
	p.contracts[c.Symbol] = c
	p.mu.Unlock()
}

func (p *Paper) GetContract(symbol string) (Contract, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.contracts[symbol]
	return c, ok
}

// RoundToPriceTick 价格对齐到最小变动价位。
func (p *Paper) RoundToPriceTick(symbol string, price float64) float64 {
	c, ok := p.GetContract(symbol)
	if !ok || c.PriceTick <= 0 {
		return price
	}
	return order.Round(math.Round(price/c.PriceTick) * c.PriceTick)
}

func (p *Paper) SendOrder(req OrderRequest) ([]string, error) {
	p.limiter.Wait()
	p.mu.Lock()
	if p.FailNext != nil {
		err := p.FailNext
		p.FailNext = nil
		p.mu.Unlock()
		return nil, err
	}
	if _, ok := p.contracts[req.Symbol]; !ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("paper: unknown contract %s", req.Symbol)
	}
	p.seq++
	orderID := fmt.Sprintf("paper.%d", p.seq)
	o := &order.Order{
		OrderID:     orderID,
		Symbol:      req.Symbol,
		Direction:   req.OrderType.Direction(),
		Offset:      req.OrderType.Offset(),
		PriceType:   req.PriceType,
		Price:       req.Price,
		TotalVolume: req.Volume,
		Status:      order.StatusInit,
		OrderTime:   time.Now().UTC(),
	}
	p.orders[orderID] = o
	auto := p.AutoAck
	p.mu.Unlock()
	if auto {
		p.Ack(orderID)
	}
	return []string{orderID}, nil
}

// CancelOrder 幂等撤单：已终结的订单直接忽略。
func (p *Paper) CancelOrder(orderID string) error {
	p.mu.Lock()
	o, ok := p.orders[orderID]
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("paper: unknown order %s", orderID)
	}
	if o.Status.Finished() {
		p.mu.Unlock()
		return nil
	}
	o.Status = order.StatusCancelled
	o.CancelTime = time.Now().UTC()
	snapshot := o.Clone()
	p.mu.Unlock()
	p.emitOrder(snapshot)
	return nil
}

// Ack 回报订单已挂。
func (p *Paper) Ack(orderID string) {
	p.mu.Lock()
	o, ok := p.orders[orderID]
	if !ok || o.Status.Finished() {
		p.mu.Unlock()
		return
	}
	if o.Status == order.StatusInit {
		o.Status = order.StatusNotTraded
	}
	snapshot := o.Clone()
	p.mu.Unlock()
	p.emitOrder(snapshot)
}

// Reject 回报订单被拒。
func (p *Paper) Reject(orderID string) {
	p.mu.Lock()
	o, ok := p.orders[orderID]
	if !ok || o.Status.Finished() {
		p.mu.Unlock()
		return
	}
	o.Status = order.StatusRejected
	snapshot := o.Clone()
	p.mu.Unlock()
	p.emitOrder(snapshot)
}

// Fill 按给定价量成交，先回报订单更新再回报成交。
func (p *Paper) Fill(orderID string, price, volume float64) {
	p.mu.Lock()
	o, ok := p.orders[orderID]
	if !ok || o.Status.Finished() {
		p.mu.Unlock()
		return
	}
	volume = order.Round(volume)
	if remaining := o.Remaining(); volume > remaining {
		volume = remaining
	}
	if volume <= 0 {
		p.mu.Unlock()
		return
	}
	total := o.AvgPrice*o.TradedVolume + price*volume
	o.TradedVolume = order.Round(o.TradedVolume + volume)
	o.ThisTradedVolume = volume
	o.AvgPrice = total / o.TradedVolume
	if o.Remaining() <= 0 {
		o.Status = order.StatusAllTraded
		o.DeliveryTime = time.Now().UTC()
	} else {
		o.Status = order.StatusPartTraded
	}
	snapshot := o.Clone()
	trade := &order.Trade{
		TradeID:   uuid.NewString(),
		OrderID:   orderID,
		Symbol:    o.Symbol,
		Direction: o.Direction,
		Offset:    o.Offset,
		Price:     price,
		Volume:    volume,
		TradeTime: time.Now().UTC(),
	}
	p.mu.Unlock()
	p.emitOrder(snapshot)
	p.emitTrade(trade)
}

// PushTick 注入行情切片。
func (p *Paper) PushTick(t *market.Tick) {
	if h := p.currentHandler(); h != nil {
		h.OnTick(t)
	}
}

// PushBar 注入 K 线。
func (p *Paper) PushBar(b *market.Bar) {
	if h := p.currentHandler(); h != nil {
		h.OnBar(b)
	}
}

// PushAccount 注入账户资金快照。
func (p *Paper) PushAccount(a *AccountData) {
	if h := p.currentHandler(); h != nil {
		h.OnAccount(a)
	}
}

// PushPosition 注入持仓快照。
func (p *Paper) PushPosition(pos *PositionData) {
	if h := p.currentHandler(); h != nil {
		h.OnPosition(pos)
	}
}

func (p *Paper) currentHandler() EventHandler {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handler
}

func (p *Paper) emitOrder(o *order.Order) {
	if h := p.currentHandler(); h != nil {
		h.OnOrder(o)
	}
}

func (p *Paper) emitTrade(t *order.Trade) {
	if h := p.currentHandler(); h != nil {
		h.OnTrade(t)
	}
}
