package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherReload(t *testing.T) {
	path := writeConfig(t, sampleYAML)

	updates := make(chan AppConfig, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = Watcher{Path: path}.Start(ctx, func(cfg AppConfig) {
			select {
			case updates <- cfg:
			default:
			}
		})
	}()

	// 给 watcher 一点启动时间再写入
	time.Sleep(100 * time.Millisecond)
	changed := sampleYAML + "\ngateway:\n  endpoint: wss://example\n"
	require.NoError(t, os.WriteFile(path, []byte(changed), 0644))

	select {
	case cfg := <-updates:
		require.Equal(t, "wss://example", cfg.Gateway.Endpoint)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestWatcherIgnoresInvalid(t *testing.T) {
	path := writeConfig(t, sampleYAML)

	updates := make(chan AppConfig, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = Watcher{Path: path}.Start(ctx, func(cfg AppConfig) { updates <- cfg })
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("env: ''\n"), 0644))

	select {
	case <-updates:
		t.Fatal("invalid config must not be delivered")
	case <-time.After(500 * time.Millisecond):
	}
}
