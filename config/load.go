package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"order-template-go/infrastructure/logger"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env      string                  `yaml:"env"`
	Strategy StrategyConfig          `yaml:"strategy"`
	Gateway  GatewayConfig           `yaml:"gateway"`
	Logger   logger.Config           `yaml:"logger"`
	Metrics  MetricsConfig           `yaml:"metrics"`
	Notice   NoticeConfig            `yaml:"notice"`
	Symbols  map[string]SymbolConfig `yaml:"symbols"`
}

// StrategyConfig 模板级参数。
type StrategyConfig struct {
	Name             string  `yaml:"name"`
	Author           string  `yaml:"author"`
	CancelGapSeconds int     `yaml:"cancelGapSeconds"` // 同一订单撤单最小间隔
	UpperLimit       float64 `yaml:"upperLimit"`       // 买向挂单价上限系数
	LowerLimit       float64 `yaml:"lowerLimit"`       // 卖向挂单价下限系数
	LimitRange       float64 `yaml:"limitRange"`       // 默认价格偏移限制
}

type GatewayConfig struct {
	Endpoint  string `yaml:"endpoint"`
	APIKey    string `yaml:"apiKey"`
	APISecret string `yaml:"apiSecret"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// NoticeConfig 状态探测参数。
type NoticeConfig struct {
	PeriodSeconds int `yaml:"periodSeconds"`
	ShiftSeconds  int `yaml:"shiftSeconds"`
}

// SymbolConfig 保存交易对的精度与限制参数。
type SymbolConfig struct {
	PriceTick  float64 `yaml:"priceTick"`
	MinVolume  float64 `yaml:"minVolume"`
	LimitRange float64 `yaml:"limitRange"` // 覆盖默认价格偏移限制，0 表示沿用默认
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides sensitive fields from env vars if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("OT_GATEWAY_API_KEY"); v != "" {
		cfg.Gateway.APIKey = v
	}
	if v := os.Getenv("OT_GATEWAY_API_SECRET"); v != "" {
		cfg.Gateway.APISecret = v
	}
	return cfg, Validate(cfg)
}

// Validate ensures required fields are present and sane.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	if cfg.Strategy.Name == "" {
		return errors.New("strategy.name is required")
	}
	if cfg.Strategy.CancelGapSeconds < 0 {
		return errors.New("strategy.cancelGapSeconds must be >= 0")
	}
	if cfg.Strategy.UpperLimit != 0 && cfg.Strategy.UpperLimit <= 1 {
		return errors.New("strategy.upperLimit must be > 1")
	}
	if cfg.Strategy.LowerLimit != 0 && (cfg.Strategy.LowerLimit <= 0 || cfg.Strategy.LowerLimit >= 1) {
		return errors.New("strategy.lowerLimit must be in (0, 1)")
	}
	if cfg.Strategy.LimitRange < 0 || cfg.Strategy.LimitRange >= 1 {
		return errors.New("strategy.limitRange must be in [0, 1)")
	}
	if len(cfg.Symbols) == 0 {
		return errors.New("symbols config is required")
	}
	for sym, sc := range cfg.Symbols {
		if sc.PriceTick <= 0 {
			return fmt.Errorf("symbol %s priceTick must be > 0", sym)
		}
		if sc.MinVolume <= 0 {
			return fmt.Errorf("symbol %s minVolume must be > 0", sym)
		}
		if sc.LimitRange < 0 || sc.LimitRange >= 1 {
			return fmt.Errorf("symbol %s limitRange must be in [0, 1)", sym)
		}
	}
	if cfg.Notice.PeriodSeconds < 0 || cfg.Notice.ShiftSeconds < 0 {
		return errors.New("notice period/shift must be >= 0")
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		return errors.New("metrics.addr is required when metrics enabled")
	}
	return nil
}

// SymbolList 返回配置的全部品种。
func (cfg AppConfig) SymbolList() []string {
	symbols := make([]string, 0, len(cfg.Symbols))
	for sym := range cfg.Symbols {
		symbols = append(symbols, sym)
	}
	return symbols
}

// CancelGap 返回撤单限频间隔，未配置时取默认 5s。
func (cfg AppConfig) CancelGap() time.Duration {
	if cfg.Strategy.CancelGapSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(cfg.Strategy.CancelGapSeconds) * time.Second
}

// LimitRanges 返回每个品种的价格偏移限制（含默认回填）。
func (cfg AppConfig) LimitRanges() map[string]float64 {
	def := cfg.Strategy.LimitRange
	if def <= 0 {
		def = 0.02
	}
	ranges := make(map[string]float64, len(cfg.Symbols))
	for sym, sc := range cfg.Symbols {
		if sc.LimitRange > 0 {
			ranges[sym] = sc.LimitRange
		} else {
			ranges[sym] = def
		}
	}
	return ranges
}
