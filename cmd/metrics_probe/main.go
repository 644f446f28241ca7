package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"

	"order-template-go/template"
)

// 指标探针：起一个只含合成数值的 /metrics 端点，
// 便于在接真实流量前验证 Prometheus/Grafana 抓取链路。
func main() {
	addr := flag.String("metricsAddr", ":9100", "Prometheus 指标监听地址")
	active := flag.Float64("activePacks", 3, "模拟在途订单包数量")
	flag.Parse()

	m := template.NewMetrics("order_template")
	m.ActivePacks.Set(*active)
	m.PoolSizes.WithLabelValues("composory").Set(1)
	m.PoolSizes.WithLabelValues("step").Set(2)

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	go func() {
		if err := http.ListenAndServe(*addr, mux); err != nil {
			fmt.Println("metrics server failed:", err)
		}
	}()
	fmt.Printf("metrics_probe started at %s\n", *addr)

	// 周期性推进计数器，观察抓取值变化
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		m.OrdersSent.Inc()
		m.Trades.Inc()
	}
}
