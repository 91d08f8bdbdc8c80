package realtime

import (
	"context"
	"log/slog"
	"sync"
)

// Presence mirrors user online state to an external cache. The hub calls it
// on the first connection of a user and after the last one goes away;
// failures are logged, never fatal.
type Presence interface {
	SetUserOnline(ctx context.Context, userID string) error
	SetUserOffline(ctx context.Context, userID string) error
}

// Hub is the connection registry and subscription index. All live
// connections, their owning users and their topic subscriptions live here;
// every map access happens under mu and never blocks on I/O.
type Hub struct {
	mu sync.RWMutex

	// Live connections by connection id
	conns map[string]*Client

	// Connection ids grouped by owning user; entries are pruned when the
	// last connection goes away
	userConns map[string]map[string]struct{}

	// Subscribed connection ids per topic; empty topics are pruned
	topics map[Topic]map[string]struct{}

	presence Presence

	// Process-lifetime context for detached tasks (assistant replies)
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHub(presence Presence) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		conns:     make(map[string]*Client),
		userConns: make(map[string]map[string]struct{}),
		topics:    make(map[Topic]map[string]struct{}),
		presence:  presence,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Register records a connection as live. Registering an id twice is a
// programming error and is ignored.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if _, ok := h.conns[c.id]; ok {
		h.mu.Unlock()
		return
	}
	h.conns[c.id] = c

	firstConn := h.userConns[c.userID] == nil
	if firstConn {
		h.userConns[c.userID] = make(map[string]struct{})
	}
	h.userConns[c.userID][c.id] = struct{}{}
	h.mu.Unlock()

	slog.Info("Client registered", "clientID", c.id, "userID", c.userID)

	if firstConn && h.presence != nil {
		if err := h.presence.SetUserOnline(h.ctx, c.userID); err != nil {
			slog.Error("Failed to set user online", "userID", c.userID, "error", err)
		}
	}
}

// Unregister removes a connection from the registry, its user's connection
// set and every topic it is subscribed to, pruning emptied entries.
// Unknown ids are a no-op.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	c, ok := h.conns[connID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, connID)

	lastConn := false
	if userSet, ok := h.userConns[c.userID]; ok {
		delete(userSet, connID)
		if len(userSet) == 0 {
			delete(h.userConns, c.userID)
			lastConn = true
		}
	}

	for topic, subs := range h.topics {
		delete(subs, connID)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	h.mu.Unlock()

	c.close()
	slog.Info("Client unregistered", "clientID", connID, "userID", c.userID)

	if lastConn && h.presence != nil {
		if err := h.presence.SetUserOffline(h.ctx, c.userID); err != nil {
			slog.Error("Failed to set user offline", "userID", c.userID, "error", err)
		}
	}
}

// Subscribe adds a connection to a topic's subscriber set. Unregistered
// connection ids are ignored: their unregister already ran and nothing would
// prune the subscription afterwards.
func (h *Hub) Subscribe(connID string, topic Topic) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[connID]; !ok {
		return
	}
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[string]struct{})
	}
	h.topics[topic][connID] = struct{}{}
}

// Unsubscribe removes a connection from a topic, pruning the topic when it
// has no subscribers left.
func (h *Hub) Unsubscribe(connID string, topic Topic) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(subs, connID)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}

// IsUserOnline reports whether the user has at least one live connection.
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConns[userID]) > 0
}

// ConnectionsOfUser returns a snapshot of the user's connection ids.
func (h *Hub) ConnectionsOfUser(userID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.userConns[userID]))
	for id := range h.userConns[userID] {
		ids = append(ids, id)
	}
	return ids
}

// SubscribersOf returns a snapshot of the topic's subscriber connection ids.
func (h *Hub) SubscribersOf(topic Topic) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.topics[topic]))
	for id := range h.topics[topic] {
		ids = append(ids, id)
	}
	return ids
}

// OnlineUsersOnTopic returns the distinct user ids with a live subscription
// to the topic.
func (h *Hub) OnlineUsersOnTopic(topic Topic) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]struct{})
	users := make([]string, 0, len(h.topics[topic]))
	for connID := range h.topics[topic] {
		c, ok := h.conns[connID]
		if !ok {
			continue
		}
		if _, dup := seen[c.userID]; dup {
			continue
		}
		seen[c.userID] = struct{}{}
		users = append(users, c.userID)
	}
	return users
}

func (h *Hub) client(connID string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.conns[connID]
	return c, ok
}

// Go runs fn as a detached task attached to the hub's lifetime, not to any
// single connection. Used for assistant replies that must survive the
// requester disconnecting.
func (h *Hub) Go(fn func(ctx context.Context)) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		fn(h.ctx)
	}()
}

// Shutdown closes every live connection, cancels detached tasks and waits
// for them to finish.
func (h *Hub) Shutdown() {
	h.cancel()

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.conns))
	for _, c := range h.conns {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}

	h.wg.Wait()
	slog.Info("Hub shut down")
}
