package main

import (
	"flag"
	"fmt"
	"math/rand"
	"time"

	"order-template-go/gateway"
	"order-template-go/order"
	"order-template-go/sim"
	"order-template-go/template"
)

// 一个极简的本地回放：随机游走生成行情，驱动分步建仓与自动退出链路。
// 在途委托以给定概率按挂价成交；仅用于演示，不会连接真实交易所。
func main() {
	symbol := flag.String("symbol", "BTC-USDT", "trading symbol")
	ticks := flag.Int("ticks", 60, "number of random ticks to simulate")
	volume := flag.Float64("volume", 10, "target open volume")
	step := flag.Float64("step", 2, "step order slice size")
	stopLoss := flag.Float64("stopLossPct", 0.01, "stop loss distance from entry")
	fillProb := flag.Float64("fillProb", 0.6, "probability an active order fills on a tick")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	r := sim.NewRunner(sim.Config{
		Start: time.Now().UTC().Truncate(time.Second),
		Contracts: []gateway.Contract{
			{Symbol: *symbol, PriceTick: 0.1, MinVolume: 0.001, Size: 1},
		},
		Options: template.DefaultOptions(),
	})

	mid := 100.0
	r.Tick(*symbol, mid-0.1, 50, mid+0.1, 50)

	info, parent, err := r.Template.MakeStepOrder(order.CtOrderBuy, *symbol, mid+0.1, *volume, *step,
		time.Duration(*ticks)*time.Second, 2*time.Second)
	if err != nil {
		fmt.Println("step order failed:", err)
		return
	}

	exitSet := false
	for i := 0; i < *ticks; i++ {
		r.Advance(time.Second)
		mid += (rng.Float64() - 0.52) * 0.4
		r.Tick(*symbol, mid-0.1, 50, mid+0.1, 50)

		for _, p := range r.Template.Book().Active() {
			if p.Fake || rng.Float64() > *fillProb {
				continue
			}
			r.Gateway.Fill(p.OrderID, p.Order.Price, p.Order.Remaining())
		}

		if !exitSet && parent.Order.TradedVolume > 0 {
			sl := parent.Order.AvgPrice * (1 - *stopLoss)
			if _, err := r.Template.SetAutoExit(parent, &sl, nil, false); err == nil {
				exitSet = true
				fmt.Printf("tick %2d: auto exit armed, stopLoss=%.2f\n", i, sl)
			}
		}
	}

	fmt.Printf("\nsymbol=%s children=%d\n", *symbol, len(info.ChildIDs))
	fmt.Printf("parent: status=%s traded=%.4f avg=%.2f\n",
		parent.Order.Status, parent.Order.TradedVolume, parent.Order.AvgPrice)
	fmt.Printf("flattened=%v closes=%d fills=%d\n",
		r.Template.Book().OrderClosed(parent), len(parent.CloseIDs), r.Template.Fills().Len())
}
