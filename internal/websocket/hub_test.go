package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c *Client) (Message, bool) {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		if !ok {
			return Message{}, false
		}
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg, true
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}, false
	}
}

func TestHub_BroadcastsToAllClients(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	a, b := NewClient(h, nil), NewClient(h, nil)
	require.True(t, h.Register(a))
	require.True(t, h.Register(b))

	h.Publish("user.created", map[string]string{"username": "alice"})

	for _, c := range []*Client{a, b} {
		msg, ok := receive(t, c)
		require.True(t, ok)
		assert.Equal(t, "user.created", msg.Action)
		assert.Equal(t, map[string]interface{}{"username": "alice"}, msg.Payload)
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	c := NewClient(h, nil)
	require.True(t, h.Register(c))
	h.Unregister(c)

	_, ok := receive(t, c)
	assert.False(t, ok)

	// a second unregister is harmless
	h.Unregister(c)
}

func TestHub_StopClosesClients(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := NewClient(h, nil)
	require.True(t, h.Register(c))
	h.Stop()
	h.Stop()

	_, ok := receive(t, c)
	assert.False(t, ok)
	assert.False(t, h.Register(NewClient(h, nil)))
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	h := NewHub() // not running

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			h.Publish("user.deleted", map[string]string{"username": "bob"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked")
	}
}

func TestNewErrorMessage(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal(NewErrorMessage("boom"), &msg))
	assert.Equal(t, "error", msg.Action)
	assert.Equal(t, map[string]interface{}{"message": "boom"}, msg.Payload)
}
