package order

import "time"

// Pack 是核心侧持有的订单容器：网关快照 + 成交明细 + 派生单元数据 + 追踪标签。
// 所有字段只在策略事件泵线程内读写。
type Pack struct {
	OrderID string
	Order   *Order
	Trades  map[string]*Trade

	// Tracks 按注册顺序保存行为标签，每次订单回报依序派发对应回调。
	Tracks []string

	Fake            bool      // 本地虚拟单，从未发往网关
	Finished        bool      // 已观察到终态（幂等屏障）
	CancelTag       bool      // 撤单由本方发起（区分外部撤单）
	ComposoryClosed bool      // 已进入强制平仓流程
	LastCancelTime  time.Time // 最近一次撤单派发时间（撤单限频用）
	ExpireAt        time.Time // 时限单到期时间，零值表示无时限

	// 开平关联：平仓包指向开仓包，开仓包持有全部平仓包 ID。
	OpenID   string
	CloseIDs []string

	// 派生单元数据。每类至多挂一个。
	TimeLimit *TimeLimitOrderInfo
	Composory *ComposoryOrderInfo
	Step      *StepOrderInfo
	Depth     *DepthOrderInfo
	AutoExit  *AutoExitInfo
	Repending *RependingOrderInfo
	Assemble  *AssembleOrderInfo
	Joined    *JoinedOrderInfo
	Notice    *StatusNoticeInfo
}

// NewPack 以快照创建订单包。
func NewPack(o *Order) *Pack {
	return &Pack{
		OrderID: o.OrderID,
		Order:   o,
		Trades:  make(map[string]*Trade),
	}
}

// AddTrack 追加行为标签（去重）。
func (p *Pack) AddTrack(tag string) {
	for _, t := range p.Tracks {
		if t == tag {
			return
		}
	}
	p.Tracks = append(p.Tracks, tag)
}

// HasTrack 是否带有指定标签。
func (p *Pack) HasTrack(tag string) bool {
	for _, t := range p.Tracks {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTrade 记录成交明细。
func (p *Pack) AddTrade(t *Trade) {
	p.Trades[t.TradeID] = t
}

// IsClose 是否为平仓包。
func (p *Pack) IsClose() bool {
	return p.OpenID != ""
}

// LinkClose 建立开平关联：close 指向 open，open 登记 close。
func LinkClose(open, close *Pack) {
	close.OpenID = open.OrderID
	for _, id := range open.CloseIDs {
		if id == close.OrderID {
			return
		}
	}
	open.CloseIDs = append(open.CloseIDs, close.OrderID)
}
