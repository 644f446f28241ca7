package template

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 模板动作的 Prometheus 指标，持有独立 registry，
// 多个策略实例互不冲突。
type Metrics struct {
	registry *prometheus.Registry

	OrdersSent      prometheus.Counter
	OrdersCancelled prometheus.Counter
	OrdersRejected  prometheus.Counter
	Trades          prometheus.Counter
	EngineResends   prometheus.Counter
	ActivePacks     prometheus.Gauge
	PoolSizes       *prometheus.GaugeVec
}

// NewMetrics 创建指标收集器，namespace 一般取策略名。
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	m := &Metrics{
		registry: reg,
		OrdersSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "template",
			Name: "orders_sent_total", Help: "Orders submitted to the gateway.",
		}),
		OrdersCancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "template",
			Name: "orders_cancelled_total", Help: "Cancel requests dispatched.",
		}),
		OrdersRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "template",
			Name: "orders_rejected_total", Help: "Rejected order callbacks.",
		}),
		Trades: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "template",
			Name: "trades_total", Help: "Trade fills received.",
		}),
		EngineResends: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "template",
			Name: "engine_resends_total", Help: "Remainder resends by compound engines.",
		}),
		ActivePacks: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "template",
			Name: "active_packs", Help: "Order packs not yet terminal.",
		}),
		PoolSizes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "template",
			Name: "engine_pool_size", Help: "Entries per compound engine pool.",
		}, []string{"engine"}),
	}
	return m
}

// Handler 返回 /metrics 处理器。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 暴露底层 registry，便于挂接额外收集器。
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
