package order

import "time"

// 各复合单元数据。引擎持有池（pool），OrderPack 通过指针引用所属单元。
// 单元数据随引擎观察到完结条件（子单全部终态、到期无活动等）后从池中移除。

// TimeLimitOrderInfo 时限单：到期未成交即撤。
type TimeLimitOrderInfo struct {
	ID        string
	Symbol    string
	OrderType CtOrder
	Price     float64
	Volume    float64
	Expire    time.Duration

	ActiveIDs  IDSet
	ClosedIDs  []string // 终态且有成交
	InvalidIDs []string // 终态且零成交
}

// NewTimeLimitOrderInfo 创建时限单单元。
func NewTimeLimitOrderInfo(id, symbol string, orderType CtOrder, price, volume float64, expire time.Duration) *TimeLimitOrderInfo {
	return &TimeLimitOrderInfo{
		ID:        id,
		Symbol:    symbol,
		OrderType: orderType,
		Price:     price,
		Volume:    volume,
		Expire:    expire,
		ActiveIDs: NewIDSet(),
	}
}

// LockedVolume 返回已占用数量：在途委托总量 + 已完结成交量。
func (info *TimeLimitOrderInfo) LockedVolume(book *Book) float64 {
	locked := 0.0
	for id := range info.ActiveIDs {
		if p, ok := book.Get(id); ok {
			locked += p.Order.TotalVolume
		}
	}
	for _, id := range info.ClosedIDs {
		if p, ok := book.Get(id); ok {
			locked += p.Order.TradedVolume
		}
	}
	return Round(locked)
}

// ComposoryOrderInfo 强制单：每次发送按参考价激进定价，时限内未完成则追发。
type ComposoryOrderInfo struct {
	ID        string
	Symbol    string
	OrderType CtOrder
	Volume    float64
	Expire    time.Duration
	OpenID    string // 平仓强制单关联的开仓包，空表示开仓强制单

	ActiveIDs  IDSet
	ClosedIDs  []string
	InvalidIDs []string
}

// NewComposoryOrderInfo 创建强制单单元。
func NewComposoryOrderInfo(id, symbol string, orderType CtOrder, volume float64, expire time.Duration) *ComposoryOrderInfo {
	return &ComposoryOrderInfo{
		ID:        id,
		Symbol:    symbol,
		OrderType: orderType,
		Volume:    volume,
		Expire:    expire,
		ActiveIDs: NewIDSet(),
	}
}

// LockedVolume 同 TimeLimitOrderInfo。
func (info *ComposoryOrderInfo) LockedVolume(book *Book) float64 {
	locked := 0.0
	for id := range info.ActiveIDs {
		if p, ok := book.Get(id); ok {
			locked += p.Order.TotalVolume
		}
	}
	for _, id := range info.ClosedIDs {
		if p, ok := book.Get(id); ok {
			locked += p.Order.TradedVolume
		}
	}
	return Round(locked)
}

// UnlockedVolume 目标量中尚未占用的部分。
func (info *ComposoryOrderInfo) UnlockedVolume(book *Book) float64 {
	return Round(info.Volume - info.LockedVolume(book))
}

// StepOrderInfo 分步单：按固定数量分片，由虚拟父单聚合。
type StepOrderInfo struct {
	ID          string
	ParentID    string
	Symbol      string
	OrderType   CtOrder
	Price       float64
	TotalVolume float64
	Step        float64
	ExpireAt    time.Time
	Wait        time.Duration
	NextSend    time.Time
	ChildIDs    []string
}

// DepthOrderInfo 盘口单：分片大小受限于可成交档位流动性。
type DepthOrderInfo struct {
	ID          string
	ParentID    string
	Symbol      string
	OrderType   CtOrder
	Price       float64
	TotalVolume float64
	Depth       int
	ExpireAt    time.Time
	Wait        time.Duration
	NextSend    time.Time
	ChildIDs    []string

	// LastLevels 最近一次扫描时按序消耗的 (价格, 数量) 档位。
	LastLevels []DepthLevel
}

// DepthLevel 盘口档位键值。
type DepthLevel struct {
	Price  float64
	Volume float64
}

// ConditionalCloseInfo 条件平仓：到期后视开仓状态撤单、强平或转止损。
type ConditionalCloseInfo struct {
	OriginID     string
	ExpireAt     time.Time
	TargetProfit *float64
}

// AutoExitInfo 自动退出（止损/止盈）。
type AutoExitInfo struct {
	OriginID   string
	StopLoss   *float64
	TakeProfit *float64
	TPOrderIDs IDSet
	SLOrderIDs []string
	// CheckTP 为 false 时暂停止盈挂单补发（防止外部撤单/拒单循环）。
	CheckTP bool
}

// NewAutoExitInfo 创建自动退出单元。
func NewAutoExitInfo(originID string) *AutoExitInfo {
	return &AutoExitInfo{
		OriginID:   originID,
		TPOrderIDs: NewIDSet(),
		CheckTP:    true,
	}
}

// RependingOrderInfo 补发单：撤单/拒单后按剩余量重发。
type RependingOrderInfo struct {
	OriginID    string
	Volume      *float64
	Price       *float64
	RependedIDs []string
	Callback    func(packs []*Pack)
	Fired       bool
}

// AssembleOrderInfo 拆分单：真实订单终态后合成的虚拟子单集合。
type AssembleOrderInfo struct {
	OriginID string
	ChildIDs []string
}

// JoinedOrderInfo 聚合单：虚拟父单由多个真实子单聚合派生。
type JoinedOrderInfo struct {
	ParentID string
	ChildIDs []string
	// Active 为 false 表示已停用（到期或显式撤销），不再接收新子单。
	Active bool
}

// AddChild 登记子单。
func (info *JoinedOrderInfo) AddChild(id string) {
	for _, c := range info.ChildIDs {
		if c == id {
			return
		}
	}
	info.ChildIDs = append(info.ChildIDs, id)
}

// StatusNoticeInfo 状态探测：按周期发送极小买单探测网关健康。
type StatusNoticeInfo struct {
	Symbol    string
	Period    time.Duration
	Shift     time.Duration
	LastCheck time.Time
	NextCheck time.Time
	Orders    []string
	ActiveIDs IDSet
}
