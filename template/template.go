package template

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"order-template-go/gateway"
	"order-template-go/infrastructure/alert"
	"order-template-go/infrastructure/logger"
	"order-template-go/market"
	"order-template-go/order"
)

// 追踪标签：订单回报按 Pack.Tracks 顺序派发到对应引擎回调。
const (
	TagTimeLimit = "timeLimitOrder"
	TagComposory = "composoryOrder"
	TagAutoExit  = "autoExit"
	TagRepending = "rependingOrder"
	TagJoined    = "joinedOrder"
	TagNotice    = "statusNotice"
)

var (
	ErrInvalidVolume = errors.New("volume must be positive after rounding")
	ErrInvalidPrice  = errors.New("price must be positive after rounding")
	ErrUnknownSymbol = errors.New("symbol not in configured symbol list")
	ErrNotTerminal   = errors.New("order pack is not terminal")
)

// MaxVolumePolicy 计算某品种某方向允许的最大报单数量。
type MaxVolumePolicy interface {
	MaxVolume(symbol string, orderType order.CtOrder, price float64) float64
}

// PriceLimitPolicy 返回品种的价格偏移限制比例。
type PriceLimitPolicy interface {
	LimitRange(symbol string) float64
}

// Options 模板行为参数。
type Options struct {
	Name    string
	Author  string
	Symbols []string

	CancelGap  time.Duration // 同一订单两次撤单间最小间隔
	UpperLimit float64       // 买向挂单价上限系数
	LowerLimit float64       // 卖向挂单价下限系数
	LimitRange float64       // 默认价格偏移限制
}

// DefaultOptions 返回模板默认参数。
func DefaultOptions() Options {
	return Options{
		CancelGap:  5 * time.Second,
		UpperLimit: 1.02,
		LowerLimit: 0.98,
		LimitRange: 0.02,
	}
}

// OrderTemplate 是策略侧的订单生命周期核心：
// 登记订单包、派发回报、驱动各复合引擎、维护开平占用核算。
// 除 Book 的监控读以外，全部状态只在事件泵线程内读写。
type OrderTemplate struct {
	opts Options

	gw      gateway.Gateway
	log     *logger.Logger
	alerts  *alert.Manager
	metrics *Metrics

	view  *market.View
	book  *order.Book
	fills *order.FillIndex

	accounts  map[string]*gateway.AccountData
	positions map[string]*gateway.PositionData

	callbacks   map[string]func(*order.Pack)
	onOrderPack func(*order.Pack)

	maxVolume  MaxVolumePolicy
	priceLimit PriceLimitPolicy

	timeLimitPool      map[string]*order.TimeLimitOrderInfo
	composoryPool      map[string]*order.ComposoryOrderInfo
	composoryClosePool map[string]*order.ComposoryOrderInfo // keyed by open pack id
	stepPool           map[string]*order.StepOrderInfo
	depthPool          map[string]*order.DepthOrderInfo
	conditionalPool    map[string]*order.ConditionalCloseInfo
	autoExitPool       map[string]*order.AutoExitInfo
	rependPool         map[string]*order.RependingOrderInfo
	joinedPool         map[string]*order.JoinedOrderInfo
	noticePool         map[string]*order.StatusNoticeInfo
}

// New 创建订单模板。clock 传 nil 时使用 UTC 墙钟。
func New(gw gateway.Gateway, log *logger.Logger, clock market.Clock, opts Options) *OrderTemplate {
	if opts.CancelGap <= 0 {
		opts.CancelGap = 5 * time.Second
	}
	if opts.UpperLimit <= 0 {
		opts.UpperLimit = 1.02
	}
	if opts.LowerLimit <= 0 {
		opts.LowerLimit = 0.98
	}
	if opts.LimitRange <= 0 {
		opts.LimitRange = 0.02
	}
	t := &OrderTemplate{
		opts:               opts,
		gw:                 gw,
		log:                log,
		view:               market.NewView(clock),
		book:               order.NewBook(),
		fills:              order.NewFillIndex(),
		accounts:           make(map[string]*gateway.AccountData),
		positions:          make(map[string]*gateway.PositionData),
		callbacks:          make(map[string]func(*order.Pack)),
		maxVolume:          unboundedMaxVolume{},
		timeLimitPool:      make(map[string]*order.TimeLimitOrderInfo),
		composoryPool:      make(map[string]*order.ComposoryOrderInfo),
		composoryClosePool: make(map[string]*order.ComposoryOrderInfo),
		stepPool:           make(map[string]*order.StepOrderInfo),
		depthPool:          make(map[string]*order.DepthOrderInfo),
		conditionalPool:    make(map[string]*order.ConditionalCloseInfo),
		autoExitPool:       make(map[string]*order.AutoExitInfo),
		rependPool:         make(map[string]*order.RependingOrderInfo),
		joinedPool:         make(map[string]*order.JoinedOrderInfo),
		noticePool:         make(map[string]*order.StatusNoticeInfo),
	}
	t.priceLimit = FixedPriceLimit{Range: opts.LimitRange}

	t.RegisterOrderCustomCallback(TagTimeLimit, t.onTimeLimitOrderPack)
	t.RegisterOrderCustomCallback(TagComposory, t.onComposoryOrderPack)
	t.RegisterOrderCustomCallback(TagAutoExit, t.onAutoExitOrderPack)
	t.RegisterOrderCustomCallback(TagRepending, t.onRependingOrderPack)
	t.RegisterOrderCustomCallback(TagJoined, t.onJoinedOrderPack)
	t.RegisterOrderCustomCallback(TagNotice, t.onStatusNoticeOrderPack)
	return t
}

// Book 返回订单包登记簿（监控侧只读）。
func (t *OrderTemplate) Book() *order.Book { return t.book }

// View 返回行情视图。
func (t *OrderTemplate) View() *market.View { return t.view }

// Fills 返回全局成交索引。
func (t *OrderTemplate) Fills() *order.FillIndex { return t.fills }

func (t *OrderTemplate) SetAlertManager(m *alert.Manager)     { t.alerts = m }
func (t *OrderTemplate) SetMetrics(m *Metrics)                { t.metrics = m }
func (t *OrderTemplate) SetMaxVolumePolicy(p MaxVolumePolicy) { t.maxVolume = p }
func (t *OrderTemplate) SetPriceLimitPolicy(p PriceLimitPolicy) {
	t.priceLimit = p
}

// SetOnOrderPack 注册用户级订单包回调，在全部引擎回调之后执行。
func (t *OrderTemplate) SetOnOrderPack(fn func(*order.Pack)) { t.onOrderPack = fn }

// RegisterOrderCustomCallback 注册标签回调。重复注册覆盖旧值。
func (t *OrderTemplate) RegisterOrderCustomCallback(tag string, fn func(*order.Pack)) {
	t.callbacks[tag] = fn
}

func (t *OrderTemplate) now() time.Time { return t.view.CurrentTime() }

// MakeOrder 发送订单并登记订单包。价格按最小变动价位对齐，
// 数量按统一精度舍入并受最大数量策略约束，舍入后为 0 视为空操作。
func (t *OrderTemplate) MakeOrder(orderType order.CtOrder, symbol string, price, volume float64, priceType order.PriceType, stop bool) ([]*order.Pack, error) {
	volume = order.Round(volume)
	if volume <= 0 {
		return nil, fmt.Errorf("makeOrder %s %s: %w", orderType, symbol, ErrInvalidVolume)
	}
	price = t.AdjustPrice(symbol, price, "makeOrder")
	if price <= 0 {
		return nil, fmt.Errorf("makeOrder %s %s: %w", orderType, symbol, ErrInvalidPrice)
	}
	if maxVol := order.Round(t.maxVolume.MaxVolume(symbol, orderType, price)); maxVol < volume {
		t.log.Info("makeOrder volume trimmed",
			zap.String("symbol", symbol),
			zap.String("orderType", string(orderType)),
			zap.Float64("requested", volume),
			zap.Float64("allowed", maxVol))
		volume = maxVol
	}
	if volume <= 0 {
		return nil, nil
	}

	ids, err := t.gw.SendOrder(gateway.OrderRequest{
		Symbol:    symbol,
		OrderType: orderType,
		PriceType: priceType,
		Price:     price,
		Volume:    volume,
		Stop:      stop,
	})
	if err != nil {
		t.log.LogError(err, map[string]interface{}{"op": "makeOrder", "symbol": symbol})
		return nil, fmt.Errorf("makeOrder %s %s: %w", orderType, symbol, err)
	}
	packs := make([]*order.Pack, 0, len(ids))
	for _, id := range ids {
		o := &order.Order{
			OrderID:     id,
			Symbol:      symbol,
			Direction:   orderType.Direction(),
			Offset:      orderType.Offset(),
			PriceType:   priceType,
			Price:       price,
			TotalVolume: volume,
			Status:      order.StatusInit,
			OrderTime:   t.now(),
		}
		p := order.NewPack(o)
		t.book.Set(p)
		packs = append(packs, p)
		t.log.LogOrder("sent", id, map[string]interface{}{
			"symbol": symbol, "orderType": string(orderType),
			"price": price, "volume": volume,
		})
	}
	if t.metrics != nil {
		t.metrics.OrdersSent.Add(float64(len(packs)))
	}
	return packs, nil
}

// FakeOrder 创建本地虚拟订单包，作为聚合/分步/盘口父单使用，从不发往网关。
func (t *OrderTemplate) FakeOrder(orderType order.CtOrder, symbol string, price, volume float64) *order.Pack {
	o := &order.Order{
		OrderID:     "fake." + uuid.NewString(),
		Symbol:      symbol,
		Direction:   orderType.Direction(),
		Offset:      orderType.Offset(),
		PriceType:   order.PriceTypeLimit,
		Price:       price,
		TotalVolume: order.Round(volume),
		Status:      order.StatusInit,
		OrderTime:   t.now(),
	}
	p := order.NewPack(o)
	p.Fake = true
	t.book.Set(p)
	return p
}

// CancelOrder 幂等撤单，同一订单包按 CancelGap 限频。
// 虚拟包本地流转 CANCELLING：聚合父单转入停用流程（撤在途子单，
// 全部完结后转 CANCELLED），无子单的虚拟包立即终结。
// 撤单派发失败不占用限频窗口，下一轮检查可立即重试。
func (t *OrderTemplate) CancelOrder(p *order.Pack) {
	if p == nil || p.Finished {
		return
	}
	now := t.now()
	if !p.LastCancelTime.IsZero() && now.Sub(p.LastCancelTime) < t.opts.CancelGap {
		return
	}
	if p.Fake {
		p.CancelTag = true
		p.LastCancelTime = now
		p.Order.CancelTime = now
		p.Order.Status = order.StatusCancelling
		if info := t.joinedPool[p.OrderID]; info != nil {
			t.deactivateJoined(info)
			return
		}
		t.settleFakeCancel(p)
		return
	}
	// 回报可能在 CancelOrder 调用内同步派发，标记须先于派发可见；
	// 派发失败则回滚，不占用限频窗口。
	prevTag, prevAt, prevCancel := p.CancelTag, p.LastCancelTime, p.Order.CancelTime
	p.CancelTag = true
	p.LastCancelTime = now
	p.Order.CancelTime = now
	if err := t.gw.CancelOrder(p.OrderID); err != nil {
		p.CancelTag, p.LastCancelTime, p.Order.CancelTime = prevTag, prevAt, prevCancel
		t.log.LogError(err, map[string]interface{}{"op": "cancelOrder", "orderID": p.OrderID})
		return
	}
	if t.metrics != nil {
		t.metrics.OrdersCancelled.Inc()
	}
}

// settleFakeCancel 终结无真实子单的虚拟包。
// 聚合父单不走这里，其终态由 refreshJoinedParent 派生。
func (t *OrderTemplate) settleFakeCancel(p *order.Pack) {
	if p.Finished || p.Order.Status != order.StatusCancelling {
		return
	}
	p.Order.Status = order.StatusCancelled
	p.Finished = true
	t.dispatch(p)
}

// OnOrder 订单回报入口。
func (t *OrderTemplate) OnOrder(o *order.Order) {
	p, ok := t.book.Get(o.OrderID)
	if !ok {
		return
	}
	if p.Finished {
		return
	}
	if o.Status.Finished() {
		p.Finished = true
	}
	p.Order = o
	if o.Status == order.StatusRejected && t.metrics != nil {
		t.metrics.OrdersRejected.Inc()
	}
	t.dispatch(p)
}

// dispatch 依序派发标签回调，最后调用用户回调。
// 引擎回调不允许打断事件泵，panic 被捕获并记录。
func (t *OrderTemplate) dispatch(p *order.Pack) {
	for _, tag := range p.Tracks {
		fn, ok := t.callbacks[tag]
		if !ok {
			continue
		}
		t.safeDispatch(tag, fn, p)
	}
	if t.onOrderPack != nil {
		t.onOrderPack(p)
	}
}

func (t *OrderTemplate) safeDispatch(tag string, fn func(*order.Pack), p *order.Pack) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("order callback panicked",
				zap.String("tag", tag),
				zap.String("orderID", p.OrderID),
				zap.Any("panic", r))
		}
	}()
	fn(p)
}

// OnTrade 成交回报入口。重复成交（断线重放）被去重。
func (t *OrderTemplate) OnTrade(tr *order.Trade) {
	if !t.fills.Add(tr) {
		return
	}
	if p, ok := t.book.Get(tr.OrderID); ok {
		p.AddTrade(tr)
	}
	if t.metrics != nil {
		t.metrics.Trades.Inc()
	}
	t.log.LogTrade("fill", map[string]interface{}{
		"tradeID": tr.TradeID, "orderID": tr.OrderID,
		"symbol": tr.Symbol, "price": tr.Price, "volume": tr.Volume,
	})
}

// OnAccount 账户资金回报入口。
func (t *OrderTemplate) OnAccount(a *gateway.AccountData) {
	t.accounts[a.AccountID] = a
}

// OnPosition 持仓回报入口。
func (t *OrderTemplate) OnPosition(p *gateway.PositionData) {
	t.positions[p.Symbol+"."+string(p.Direction)] = p
}

// OnError 网关异步错误入口。仅记录，不在传输层重试。
func (t *OrderTemplate) OnError(e *gateway.ErrorData) {
	t.log.Error("gateway error", zap.String("code", e.Code), zap.String("message", e.Message))
}

// Account 按账户 ID 查询最近资金快照（现货最大数量策略使用）。
func (t *OrderTemplate) Account(accountID string) (*gateway.AccountData, bool) {
	a, ok := t.accounts[accountID]
	return a, ok
}

// symbolAllowed 平仓入口的品种过滤：未配置品种列表时放行全部。
func (t *OrderTemplate) symbolAllowed(symbol string) bool {
	if len(t.opts.Symbols) == 0 {
		return true
	}
	for _, s := range t.opts.Symbols {
		if s == symbol {
			return true
		}
	}
	return false
}
