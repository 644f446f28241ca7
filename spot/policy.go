// Package spot 提供现货专用的最大报单数量与价格限制策略。
// 品种命名约定 BASE-QUOTE，资金账户 ID 为币种加 _SPOT 后缀；
// 网关可通过自定义解析函数覆盖该约定。
package spot

import (
	"strings"

	"order-template-go/gateway"
	"order-template-go/order"
)

// BalanceSource 查询币种账户最近资金快照。
type BalanceSource interface {
	Account(accountID string) (*gateway.AccountData, bool)
}

// ContractSource 查询合约元信息。
type ContractSource interface {
	GetContract(symbol string) (gateway.Contract, bool)
}

// DefaultAccountID 默认账户 ID 约定。
func DefaultAccountID(currency string) string {
	return currency + "_SPOT"
}

// SplitSymbol 拆出基础币与计价币。
func SplitSymbol(symbol string) (base, quote string, ok bool) {
	parts := strings.SplitN(symbol, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// MaxVolumePolicy 按币种余额限制报单数量：
// 卖出受基础币可用量约束，买入受计价币可用量折算约束（留出滑点余量），
// 结果向下取整到合约最小数量。
type MaxVolumePolicy struct {
	balances  BalanceSource
	contracts ContractSource

	Slack     float64             // 买向折算余量系数
	AccountID func(string) string // 币种到账户 ID 的映射
}

func NewMaxVolumePolicy(balances BalanceSource, contracts ContractSource) *MaxVolumePolicy {
	return &MaxVolumePolicy{
		balances:  balances,
		contracts: contracts,
		Slack:     0.99,
		AccountID: DefaultAccountID,
	}
}

func (p *MaxVolumePolicy) MaxVolume(symbol string, orderType order.CtOrder, price float64) float64 {
	base, quote, ok := SplitSymbol(symbol)
	if !ok {
		return 0
	}
	var avail float64
	if orderType.Direction() == order.DirectionShort {
		a, ok := p.balances.Account(p.AccountID(base))
		if !ok {
			return 0
		}
		avail = a.Available
	} else {
		if price <= 0 {
			return 0
		}
		a, ok := p.balances.Account(p.AccountID(quote))
		if !ok {
			return 0
		}
		avail = a.Available / price * p.Slack
	}
	if c, ok := p.contracts.GetContract(symbol); ok && c.MinVolume > 0 {
		avail = order.RoundDown(avail, c.MinVolume)
	}
	return order.Round(avail)
}

// PriceLimitPolicy 价格偏移限制：永续合约品种用更窄的区间。
type PriceLimitPolicy struct {
	DefaultRange  float64
	SwapRange     float64
	SwapSubstring string
}

func NewPriceLimitPolicy() PriceLimitPolicy {
	return PriceLimitPolicy{
		DefaultRange:  0.02,
		SwapRange:     0.01,
		SwapSubstring: "SWAP",
	}
}

func (p PriceLimitPolicy) LimitRange(symbol string) float64 {
	if p.SwapSubstring != "" && strings.Contains(strings.ToUpper(symbol), p.SwapSubstring) {
		return p.SwapRange
	}
	return p.DefaultRange
}
