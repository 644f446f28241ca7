package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerFanOut(t *testing.T) {
	a := NewCollectChannel("a")
	b := NewCollectChannel("b")
	m := NewManager([]Channel{a, b}, 0)

	require.NoError(t, m.SendWarning("probe timeout", map[string]interface{}{"symbol": "BTC-USDT"}))
	require.Len(t, a.Alerts, 1)
	require.Len(t, b.Alerts, 1)
	assert.Equal(t, "WARNING", a.Alerts[0].Level)
	assert.False(t, a.Alerts[0].Timestamp.IsZero())
}

func TestManagerThrottle(t *testing.T) {
	c := NewCollectChannel("c")
	m := NewManager([]Channel{c}, time.Hour)

	require.NoError(t, m.SendWarning("dup", nil))
	require.NoError(t, m.SendWarning("dup", nil))
	assert.Len(t, c.Alerts, 1, "same level+message throttled")

	// 不同消息不受影响
	require.NoError(t, m.SendWarning("other", nil))
	assert.Len(t, c.Alerts, 2)

	// 不同级别单独限流
	require.NoError(t, m.SendError("dup", nil))
	assert.Len(t, c.Alerts, 3)
}

func TestThrottlerReset(t *testing.T) {
	th := NewThrottler(time.Hour)
	assert.True(t, th.Allow("k"))
	assert.False(t, th.Allow("k"))
	th.Reset("k")
	assert.True(t, th.Allow("k"))
}

func TestManagerAddChannel(t *testing.T) {
	m := NewManager(nil, 0)
	m.AddChannel(NewCollectChannel("late"))
	assert.Equal(t, []string{"late"}, m.Channels())
}
