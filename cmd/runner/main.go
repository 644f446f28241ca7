package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"

	"order-template-go/config"
	"order-template-go/gateway"
	"order-template-go/infrastructure/alert"
	"order-template-go/infrastructure/logger"
	"order-template-go/spot"
	"order-template-go/template"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	autoAck := flag.Bool("autoAck", true, "纸面网关下单后立即回报已挂")
	spotMode := flag.Bool("spot", false, "现货模式：报单数量受币种余额约束")
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	zlog, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zlog.Close()

	alerts := alert.NewManager([]alert.Channel{
		alert.NewZapChannel("log", zlog.Logger),
	}, time.Minute)
	metrics := template.NewMetrics("order_template")
	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Addr, metrics, zlog)
	}

	// 纸面撮合承接订单流转，行情来自组合深度流。
	paper := gateway.NewPaper(nil, gateway.NewTokenBucketLimiter(5, 10))
	paper.AutoAck = *autoAck
	for sym, sc := range cfg.Symbols {
		paper.RegisterContract(gateway.Contract{
			Symbol:    sym,
			PriceTick: sc.PriceTick,
			MinVolume: sc.MinVolume,
			Size:      1,
		})
	}

	opts := template.Options{
		Name:       cfg.Strategy.Name,
		Author:     cfg.Strategy.Author,
		Symbols:    cfg.SymbolList(),
		CancelGap:  cfg.CancelGap(),
		UpperLimit: cfg.Strategy.UpperLimit,
		LowerLimit: cfg.Strategy.LowerLimit,
		LimitRange: cfg.Strategy.LimitRange,
	}
	tpl := template.New(paper, zlog, nil, opts)
	priceLimit := template.NewSymbolPriceLimit(cfg.LimitRanges(), cfg.Strategy.LimitRange)
	tpl.SetPriceLimitPolicy(priceLimit)
	tpl.SetMetrics(metrics)
	tpl.SetAlertManager(alerts)
	if *spotMode {
		tpl.SetMaxVolumePolicy(spot.NewMaxVolumePolicy(tpl, paper))
	}
	if cfg.Notice.PeriodSeconds > 0 {
		period := time.Duration(cfg.Notice.PeriodSeconds) * time.Second
		shift := time.Duration(cfg.Notice.ShiftSeconds) * time.Second
		for _, sym := range cfg.SymbolList() {
			tpl.StatusNotice(sym, period, shift)
		}
	}

	pump := template.NewPump(tpl, 1024)
	pump.Start()
	defer pump.Stop()
	paper.SetHandler(pump)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := gateway.NewWSFeed(pump, zlog.Logger)
	if cfg.Gateway.Endpoint != "" {
		feed.Endpoint = cfg.Gateway.Endpoint
	}
	for _, sym := range cfg.SymbolList() {
		if err := feed.SubscribeDepth(sym); err != nil {
			log.Fatalf("订阅 depth 失败: %v", err)
		}
	}
	go func() {
		if err := feed.Run(ctx); err != nil && ctx.Err() == nil {
			zlog.Error("ws feed exited", zap.Error(err))
			cancel()
		}
	}()

	// 配置热更新：只有价格偏移限制表支持运行中替换
	go func() {
		err := config.Watcher{Path: *cfgPath}.Start(ctx, func(next config.AppConfig) {
			priceLimit.Update(next.LimitRanges())
			zlog.Info("price limit ranges reloaded", zap.Int("symbols", len(next.Symbols)))
		})
		if err != nil && ctx.Err() == nil {
			zlog.Warn("config watcher stopped", zap.Error(err))
		}
	}()

	go watchdogLoop(ctx)
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	zlog.Info("runner started",
		zap.String("env", cfg.Env),
		zap.String("strategy", cfg.Strategy.Name),
		zap.Strings("symbols", cfg.SymbolList()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	cancel()
	zlog.Info("runner exit")
}

// watchdogLoop 按 systemd 要求的一半间隔喂狗。未启用 watchdog 时直接返回。
func watchdogLoop(ctx context.Context) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
		}
	}
}

func serveMetrics(addr string, m *template.Metrics, zlog *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	zlog.Info("metrics listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		zlog.Error("metrics server failed", zap.Error(err))
	}
}
