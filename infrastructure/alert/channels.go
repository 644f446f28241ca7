package alert

import (
	"go.uber.org/zap"
)

// ZapChannel 把告警写入结构化日志流
type ZapChannel struct {
	log  *zap.Logger
	name string
}

// NewZapChannel 创建日志告警通道
func NewZapChannel(name string, log *zap.Logger) *ZapChannel {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapChannel{log: log, name: name}
}

// Send 发送告警到日志
func (c *ZapChannel) Send(alert Alert) error {
	fields := []zap.Field{
		zap.String("level", alert.Level),
		zap.Time("at", alert.Timestamp),
	}
	for k, v := range alert.Fields {
		fields = append(fields, zap.Any(k, v))
	}
	switch alert.Level {
	case "ERROR":
		c.log.Error(alert.Message, fields...)
	case "WARNING":
		c.log.Warn(alert.Message, fields...)
	default:
		c.log.Info(alert.Message, fields...)
	}
	return nil
}

// Name 返回通道名称
func (c *ZapChannel) Name() string {
	return c.name
}

// CollectChannel 在内存里累积告警，供测试断言
type CollectChannel struct {
	name   string
	Alerts []Alert
}

// NewCollectChannel 创建内存告警通道
func NewCollectChannel(name string) *CollectChannel {
	return &CollectChannel{name: name}
}

// Send 记录告警
func (c *CollectChannel) Send(alert Alert) error {
	c.Alerts = append(c.Alerts, alert)
	return nil
}

// Name 返回通道名称
func (c *CollectChannel) Name() string {
	return c.name
}
