package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
env: test
strategy:
  name: lifecycle
  author: desk
  cancelGapSeconds: 5
  upperLimit: 1.02
  lowerLimit: 0.98
  limitRange: 0.02
notice:
  periodSeconds: 3600
symbols:
  BTC-USDT:
    priceTick: 0.1
    minVolume: 0.001
  BTC-USDT-SWAP:
    priceTick: 0.1
    minVolume: 0.001
    limitRange: 0.01
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "lifecycle", cfg.Strategy.Name)
	assert.Len(t, cfg.Symbols, 2)
	assert.Equal(t, 0.001, cfg.Symbols["BTC-USDT"].MinVolume)
}

func TestLoadMissingSymbols(t *testing.T) {
	_, err := Load(writeConfig(t, "env: test\nstrategy:\n  name: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbols")
}

func TestLoadInvalidLimits(t *testing.T) {
	bad := `
env: test
strategy:
  name: x
  upperLimit: 0.9
symbols:
  A-B: {priceTick: 0.1, minVolume: 1}
`
	_, err := Load(writeConfig(t, bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upperLimit")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OT_GATEWAY_API_KEY", "k-from-env")
	cfg, err := LoadWithEnvOverrides(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "k-from-env", cfg.Gateway.APIKey)
}

func TestLimitRanges(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	ranges := cfg.LimitRanges()
	assert.Equal(t, 0.02, ranges["BTC-USDT"], "default backfill")
	assert.Equal(t, 0.01, ranges["BTC-USDT-SWAP"], "per-symbol override")
}

func TestCancelGapDefault(t *testing.T) {
	var cfg AppConfig
	assert.Equal(t, "5s", cfg.CancelGap().String())
}
