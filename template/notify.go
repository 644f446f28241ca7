package template

import (
	"encoding/json"
	"strings"

	"order-template-go/order"
)

// statusEnvelope 状态探测日志信封负载。
type statusEnvelope struct {
	Info     *order.StatusNoticeInfo `json:"info"`
	Order    interface{}             `json:"order"`
	Type     string                  `json:"type"`
	Notify   bool                    `json:"notify"`
	Strategy string                  `json:"strategy"`
	Author   string                  `json:"author"`
	Message  string                  `json:"message"`
}

// statusNotify 输出 <StatusNotify> 信封。notify 为 true 时升级为 WARN
// 并推送告警通道。
func (t *OrderTemplate) statusNotify(info *order.StatusNoticeInfo, payload interface{}, typ string, notify bool, message string) {
	env := statusEnvelope{
		Info:     info,
		Order:    payload,
		Type:     typ,
		Notify:   notify,
		Strategy: t.opts.Name,
		Author:   t.opts.Author,
		Message:  message,
	}
	data, err := json.Marshal(env)
	if err != nil {
		t.log.LogError(err, map[string]interface{}{"op": "statusNotify"})
		return
	}
	line := "<StatusNotify>" + string(data) + "</StatusNotify>"
	if notify {
		t.log.Warn(line)
		if t.alerts != nil {
			_ = t.alerts.SendWarning(message, map[string]interface{}{
				"symbol":   info.Symbol,
				"strategy": t.opts.Name,
			})
		}
		return
	}
	t.log.Info(line)
}

// Notify 输出通用 <ding> 通知信封并推送告警通道。
func (t *OrderTemplate) Notify(title, message string, channels ...string) {
	var b strings.Builder
	b.WriteString("<ding>")
	b.WriteString("<title>")
	b.WriteString(title)
	b.WriteString("</title>")
	for _, ch := range channels {
		b.WriteString("<channel>")
		b.WriteString(ch)
		b.WriteString("</channel>")
	}
	b.WriteString("<message>")
	b.WriteString(message)
	b.WriteString("</message></ding>")
	t.log.Info(b.String())
	if t.alerts != nil {
		_ = t.alerts.SendInfo(message, map[string]interface{}{
			"title":    title,
			"strategy": t.opts.Name,
		})
	}
}

// SimpleNotify 以策略名为标题的快捷通知。
func (t *OrderTemplate) SimpleNotify(message string) {
	t.Notify(t.opts.Name, message)
}
