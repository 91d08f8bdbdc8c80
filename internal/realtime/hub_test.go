package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID, username string) *Client {
	// No underlying connection: frames accumulate in the send buffer and
	// tests read them back with drainFrames.
	return NewClient(nil, userID, username)
}

func drainFrames(c *Client) []map[string]any {
	var frames []map[string]any
	for {
		select {
		case data := <-c.send:
			var frame map[string]any
			if err := json.Unmarshal(data, &frame); err == nil {
				frames = append(frames, frame)
			}
		default:
			return frames
		}
	}
}

func frameTypes(frames []map[string]any) []string {
	types := make([]string, 0, len(frames))
	for _, f := range frames {
		if t, ok := f["type"].(string); ok {
			types = append(types, t)
		}
	}
	return types
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(nil)
	c1 := newTestClient("u1", "alice")
	c2 := newTestClient("u1", "alice")

	hub.Register(c1)
	hub.Register(c2)

	assert.True(t, hub.IsUserOnline("u1"))
	assert.Len(t, hub.ConnectionsOfUser("u1"), 2)

	hub.Unregister(c1.id)
	assert.True(t, hub.IsUserOnline("u1"))
	assert.Len(t, hub.ConnectionsOfUser("u1"), 1)

	hub.Unregister(c2.id)
	assert.False(t, hub.IsUserOnline("u1"))
	assert.Empty(t, hub.ConnectionsOfUser("u1"))
}

// IsUserOnline must agree with ConnectionsOfUser after every step of any
// register/unregister sequence.
func TestRegistryInvariant(t *testing.T) {
	hub := NewHub(nil)

	clients := []*Client{
		newTestClient("u1", "alice"),
		newTestClient("u1", "alice"),
		newTestClient("u2", "bob"),
	}

	check := func() {
		for _, userID := range []string{"u1", "u2"} {
			online := hub.IsUserOnline(userID)
			conns := hub.ConnectionsOfUser(userID)
			assert.Equal(t, online, len(conns) > 0, "userID %s", userID)
		}
	}

	for _, c := range clients {
		hub.Register(c)
		check()
	}
	for _, c := range clients {
		hub.Unregister(c.id)
		check()
	}
}

func TestUnregisterUnknownIDIsNoop(t *testing.T) {
	hub := NewHub(nil)
	c := newTestClient("u1", "alice")
	hub.Register(c)

	hub.Unregister("no-such-connection")
	hub.Unregister(c.id)
	hub.Unregister(c.id)

	assert.False(t, hub.IsUserOnline("u1"))
}

func TestRegisterDuplicateIDIgnored(t *testing.T) {
	hub := NewHub(nil)
	c := newTestClient("u1", "alice")

	hub.Register(c)
	hub.Register(c)

	assert.Len(t, hub.ConnectionsOfUser("u1"), 1)
}

func TestSubscribeUnsubscribePrunesTopic(t *testing.T) {
	hub := NewHub(nil)
	c := newTestClient("u1", "alice")
	hub.Register(c)

	topic := ChannelTopic("chan-1")
	hub.Subscribe(c.id, topic)
	assert.Len(t, hub.SubscribersOf(topic), 1)

	hub.Unsubscribe(c.id, topic)
	assert.Empty(t, hub.SubscribersOf(topic))

	hub.mu.RLock()
	_, exists := hub.topics[topic]
	hub.mu.RUnlock()
	assert.False(t, exists, "emptied topic must be pruned")
}

// Subscribing an already-unregistered connection must leave no trace:
// nothing will ever prune it afterwards.
func TestSubscribeAfterUnregisterIsIgnored(t *testing.T) {
	hub := NewHub(nil)
	c := newTestClient("u1", "alice")
	hub.Register(c)
	hub.Unregister(c.id)

	topic := ChannelTopic("chan-1")
	hub.Subscribe(c.id, topic)

	assert.Empty(t, hub.SubscribersOf(topic))

	hub.mu.RLock()
	_, exists := hub.topics[topic]
	hub.mu.RUnlock()
	assert.False(t, exists)
}

func TestUnregisterRemovesAllSubscriptions(t *testing.T) {
	hub := NewHub(nil)
	c := newTestClient("u1", "alice")
	hub.Register(c)

	t1 := ChannelTopic("chan-1")
	t2 := DirectTopic("u1", "u2")
	hub.Subscribe(c.id, t1)
	hub.Subscribe(c.id, t2)

	hub.Unregister(c.id)

	assert.Empty(t, hub.SubscribersOf(t1))
	assert.Empty(t, hub.SubscribersOf(t2))
}

func TestCanonicalDirectTopic(t *testing.T) {
	hub := NewHub(nil)
	c1 := newTestClient("u1", "alice")
	c2 := newTestClient("u2", "bob")
	hub.Register(c1)
	hub.Register(c2)

	hub.Subscribe(c1.id, DirectTopic("u1", "u2"))
	hub.Subscribe(c2.id, DirectTopic("u2", "u1"))

	subs := hub.SubscribersOf(DirectTopic("u1", "u2"))
	assert.ElementsMatch(t, []string{c1.id, c2.id}, subs)
}

func TestBroadcastToTopic(t *testing.T) {
	hub := NewHub(nil)
	topic := ChannelTopic("chan-1")

	a := newTestClient("ua", "alice")
	b := newTestClient("ub", "bob")
	for _, c := range []*Client{a, b} {
		hub.Register(c)
		hub.Subscribe(c.id, topic)
	}

	hub.BroadcastToTopic(topic, NewTypingFrame("ua", "alice", true), a.id)

	assert.Empty(t, drainFrames(a), "excluded connection must not receive the frame")

	frames := drainFrames(b)
	require.Len(t, frames, 1)
	assert.Equal(t, FrameTyping, frames[0]["type"])
	assert.Equal(t, true, frames[0]["is_typing"])
}

// A dead subscriber must not abort delivery to the rest, and must be gone
// from the registry and the index afterwards.
func TestBroadcastFanOutIsolation(t *testing.T) {
	hub := NewHub(nil)
	topic := ChannelTopic("chan-1")

	a := newTestClient("ua", "alice")
	b := newTestClient("ub", "bob")
	c := newTestClient("uc", "carol")
	for _, cl := range []*Client{a, b, c} {
		hub.Register(cl)
		hub.Subscribe(cl.id, topic)
	}

	// Kill B's transport
	b.close()

	hub.BroadcastToTopic(topic, NewUserJoinedFrame("ud", "dave"), "")

	assert.Len(t, drainFrames(a), 1)
	assert.Len(t, drainFrames(c), 1)

	assert.NotContains(t, hub.SubscribersOf(topic), b.id)
	assert.Empty(t, hub.ConnectionsOfUser("ub"))
	assert.False(t, hub.IsUserOnline("ub"))
}

func TestSendToUserReachesAllConnections(t *testing.T) {
	hub := NewHub(nil)
	c1 := newTestClient("u1", "alice")
	c2 := newTestClient("u1", "alice")
	hub.Register(c1)
	hub.Register(c2)

	hub.SendToUser("u1", NewErrorFrame("boom"))

	assert.Len(t, drainFrames(c1), 1)
	assert.Len(t, drainFrames(c2), 1)
}

func TestSendToConnectionFailureCleansUp(t *testing.T) {
	hub := NewHub(nil)
	c := newTestClient("u1", "alice")
	hub.Register(c)
	hub.Subscribe(c.id, ChannelTopic("chan-1"))

	c.close()
	hub.SendToConnection(c.id, NewErrorFrame("boom"))

	assert.False(t, hub.IsUserOnline("u1"))
	assert.Empty(t, hub.SubscribersOf(ChannelTopic("chan-1")))
}

func TestRelaySignalOfflineTargetIsNoop(t *testing.T) {
	hub := NewHub(nil)
	sender := newTestClient("u1", "alice")
	hub.Register(sender)

	hub.RelaySignal("offline-user", EventWebRTCOffer, json.RawMessage(`{"sdp":"x"}`), "u1", "alice")

	assert.Empty(t, drainFrames(sender))
}

func TestRelaySignalWrapsSenderIdentity(t *testing.T) {
	hub := NewHub(nil)
	target := newTestClient("u2", "bob")
	hub.Register(target)

	hub.RelaySignal("u2", EventWebRTCICECandidate, json.RawMessage(`{"candidate":"c"}`), "u1", "alice")

	frames := drainFrames(target)
	require.Len(t, frames, 1)
	assert.Equal(t, "webrtc_ice_candidate", frames[0]["type"])
	assert.Equal(t, "u1", frames[0]["from_user_id"])
	assert.Equal(t, "alice", frames[0]["from_username"])
	assert.Equal(t, map[string]any{"candidate": "c"}, frames[0]["data"])
}

// Registry mutations and broadcasts racing each other must leave the maps
// consistent: no connection survives its own unregister.
func TestConcurrentLifecyclesAndBroadcasts(t *testing.T) {
	hub := NewHub(nil)
	topic := ChannelTopic("chan-1")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := fmt.Sprintf("u%d", n%4)
			for j := 0; j < 50; j++ {
				c := newTestClient(userID, "user")
				hub.Register(c)
				hub.Subscribe(c.id, topic)
				hub.BroadcastToTopic(topic, NewTypingFrame(userID, "user", true), "")
				hub.Unregister(c.id)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		userID := fmt.Sprintf("u%d", i)
		assert.False(t, hub.IsUserOnline(userID))
		assert.Empty(t, hub.ConnectionsOfUser(userID))
	}
	assert.Empty(t, hub.SubscribersOf(topic))
}

func TestOnlineUsersOnTopicDeduplicates(t *testing.T) {
	hub := NewHub(nil)
	topic := ChannelTopic("chan-1")

	c1 := newTestClient("u1", "alice")
	c2 := newTestClient("u1", "alice")
	c3 := newTestClient("u2", "bob")
	for _, c := range []*Client{c1, c2, c3} {
		hub.Register(c)
		hub.Subscribe(c.id, topic)
	}

	assert.ElementsMatch(t, []string{"u1", "u2"}, hub.OnlineUsersOnTopic(topic))
}
