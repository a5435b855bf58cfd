package websocket

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-search-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHub_NotifyReachesWatchersOnly(t *testing.T) {
	hub := startHub(t)

	a := &Client{Hub: hub, ConversationID: "c1", Send: make(chan []byte, 4)}
	b := &Client{Hub: hub, ConversationID: "c1", Send: make(chan []byte, 4)}
	other := &Client{Hub: hub, ConversationID: "c2", Send: make(chan []byte, 4)}
	for _, c := range []*Client{a, b, other} {
		require.True(t, hub.Join(c))
	}
	require.Eventually(t, func() bool { return hub.Watchers("c1") == 2 }, time.Second, 5*time.Millisecond)

	delivered := hub.Notify("c1", []byte(`{"type":"CHAT_ANSWERED"}`))

	assert.Equal(t, 2, delivered)
	assert.Equal(t, `{"type":"CHAT_ANSWERED"}`, string(<-a.Send))
	assert.Equal(t, `{"type":"CHAT_ANSWERED"}`, string(<-b.Send))
	assert.Empty(t, other.Send)
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := startHub(t)

	slow := &Client{Hub: hub, ConversationID: "c1", Send: make(chan []byte, 1)}
	require.True(t, hub.Join(slow))
	require.Eventually(t, func() bool { return hub.Watchers("c1") == 1 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, hub.Notify("c1", []byte("one")))
	assert.Equal(t, 0, hub.Notify("c1", []byte("two")))

	require.Eventually(t, func() bool { return hub.Watchers("c1") == 0 }, time.Second, 5*time.Millisecond)

	// buffered message survives, then the channel is closed
	assert.Equal(t, "one", string(<-slow.Send))
	_, open := <-slow.Send
	assert.False(t, open)
}

func TestHub_JoinAfterStopFails(t *testing.T) {
	hub := NewHub(logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	assert.False(t, hub.Join(&Client{Hub: hub, ConversationID: "c1", Send: make(chan []byte, 1)}))
}

func TestHub_NotifyWhileClientsLeave(t *testing.T) {
	hub := startHub(t)

	for i := 0; i < 2000; i++ {
		c := &Client{Hub: hub, ConversationID: "c1", Send: make(chan []byte, 64)}
		require.True(t, hub.Join(c))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.leave(c)
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				hub.Notify("c1", []byte("event"))
			}
		}()
		wg.Wait()
	}

	require.Eventually(t, func() bool { return hub.Watchers("c1") == 0 }, time.Second, 5*time.Millisecond)
}
