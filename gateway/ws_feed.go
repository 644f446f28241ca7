package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"order-template-go/market"
)

// DefaultWSEndpoint 默认行情 WS 端点。
const DefaultWSEndpoint = "wss://fstream.binance.com"

// combinedMessage 对应 combined stream 包装。
type combinedMessage struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// depthUpdate 提取 depth 消息的核心字段。
type depthUpdate struct {
	Symbol string           `json:"s"`
	Bids   [][2]json.Number `json:"b"`
	Asks   [][2]json.Number `json:"a"`
}

// ParseDepthTick 解析 combined stream 的 depth 消息为行情切片。
func ParseDepthTick(raw []byte, ts time.Time) (*market.Tick, error) {
	var msg combinedMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}
	var depth depthUpdate
	if err := json.Unmarshal(msg.Data, &depth); err != nil {
		return nil, err
	}
	tick := &market.Tick{Symbol: depth.Symbol, Ts: ts}
	for _, b := range depth.Bids {
		price, _ := b[0].Float64()
		vol, _ := b[1].Float64()
		tick.Bids = append(tick.Bids, market.Level{Price: price, Volume: vol})
	}
	for _, a := range depth.Asks {
		price, _ := a[0].Float64()
		vol, _ := a[1].Float64()
		tick.Asks = append(tick.Asks, market.Level{Price: price, Volume: vol})
	}
	if p := tick.BestBid(); p > 0 {
		tick.Last = p
	}
	return tick, nil
}

// WSFeed 订阅组合深度流并把解析结果派发给 EventHandler。
// 连接断开后按固定间隔重连（执行者确保网络可达）。
type WSFeed struct {
	Endpoint     string
	Dialer       *websocket.Dialer
	Reconnect    time.Duration
	depthStreams []string
	handler      EventHandler
	log          *zap.Logger
}

func NewWSFeed(handler EventHandler, log *zap.Logger) *WSFeed {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSFeed{
		Endpoint:  DefaultWSEndpoint,
		Dialer:    websocket.DefaultDialer,
		Reconnect: 5 * time.Second,
		handler:   handler,
		log:       log,
	}
}

func (f *WSFeed) SubscribeDepth(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol required")
	}
	stream := strings.ToLower(strings.ReplaceAll(symbol, "-", "")) + "@depth20@100ms"
	f.depthStreams = append(f.depthStreams, stream)
	return nil
}

// Run 阻塞读取行情直到 ctx 取消。
func (f *WSFeed) Run(ctx context.Context) error {
	if len(f.depthStreams) == 0 {
		return fmt.Errorf("no streams subscribed")
	}
	for {
		if err := f.runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Warn("ws feed disconnected", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.Reconnect):
		}
	}
}

func (f *WSFeed) runOnce(ctx context.Context) error {
	u := url.URL{
		Scheme: "wss",
		Host:   strings.TrimPrefix(f.Endpoint, "wss://"),
		Path:   "/stream",
	}
	q := u.Query()
	q.Set("streams", strings.Join(f.depthStreams, "/"))
	u.RawQuery = q.Encode()

	conn, _, err := f.Dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	f.log.Info("ws feed connected", zap.String("url", u.String()))

	for {
		_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		tick, err := ParseDepthTick(message, time.Now().UTC())
		if err != nil {
			f.log.Debug("ws feed skip frame", zap.Error(err))
			continue
		}
		if tick.Symbol == "" {
			continue
		}
		f.handler.OnTick(tick)
	}
}
