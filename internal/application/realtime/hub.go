// Package realtime fans order, menu and voucher events out to connected
// clients grouped in named rooms.
//
// Delivery is at-most-once: a member that is not connected, or whose
// outbound queue is full, simply misses the event. Nothing is persisted.
package realtime

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Message is one named event with its payload, as written to the wire.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Client is a live connection the hub can push messages to.
// Send must not block; it reports false when the message was dropped.
type Client interface {
	ID() string
	Send(Message) bool
}

type member struct {
	client Client
	rooms  map[string]struct{}
}

// Hub tracks room membership and order tracking sessions for live connections.
type Hub struct {
	mu       sync.RWMutex
	conns    map[string]*member
	rooms    map[string]map[string]struct{}
	tracking map[string]map[string]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		conns:    make(map[string]*member),
		rooms:    make(map[string]map[string]struct{}),
		tracking: make(map[string]map[string]struct{}),
	}
}

// Connect registers c with no room memberships. Reconnecting with the same id
// drops the previous connection's memberships.
func (h *Hub) Connect(c Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c.ID()]; ok {
		h.removeLocked(c.ID())
	}
	h.conns[c.ID()] = &member{client: c, rooms: make(map[string]struct{})}
}

// JoinRoom adds the connection to room. Unknown connections are ignored.
func (h *Hub) JoinRoom(connID, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.joinLocked(connID, room)
}

func (h *Hub) joinLocked(connID, room string) bool {
	m, ok := h.conns[connID]
	if !ok {
		return false
	}
	set, ok := h.rooms[room]
	if !ok {
		set = make(map[string]struct{})
		h.rooms[room] = set
	}
	set[connID] = struct{}{}
	m.rooms[room] = struct{}{}
	return true
}

// LeaveRoom removes the connection from room. Leaving an order room also ends
// the connection's tracking session for that order.
func (h *Hub) LeaveRoom(connID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(connID, room)
}

func (h *Hub) leaveLocked(connID, room string) {
	if m, ok := h.conns[connID]; ok {
		delete(m.rooms, room)
	}
	if set, ok := h.rooms[room]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(h.rooms, room)
		}
	}
	if orderID, ok := strings.CutPrefix(room, orderRoomPrefix); ok {
		h.untrackLocked(connID, orderID)
	}
}

// TrackOrder joins the order's room and records a tracking session.
func (h *Hub) TrackOrder(connID, orderID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.joinLocked(connID, OrderRoom(orderID)) {
		return false
	}
	set, ok := h.tracking[orderID]
	if !ok {
		set = make(map[string]struct{})
		h.tracking[orderID] = set
	}
	set[connID] = struct{}{}
	return true
}

// StopTracking leaves the order's room and ends the tracking session.
func (h *Hub) StopTracking(connID, orderID string) {
	h.LeaveRoom(connID, OrderRoom(orderID))
}

func (h *Hub) untrackLocked(connID, orderID string) {
	set, ok := h.tracking[orderID]
	if !ok {
		return
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(h.tracking, orderID)
	}
}

// Disconnect removes the connection from every room and tracking session.
func (h *Hub) Disconnect(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(connID)
}

func (h *Hub) removeLocked(connID string) {
	m, ok := h.conns[connID]
	if !ok {
		return
	}
	for room := range m.rooms {
		h.leaveLocked(connID, room)
	}
	// Tracking sets are kept in step with order rooms, but sweep them too in
	// case a session outlived its room membership.
	for orderID := range h.tracking {
		h.untrackLocked(connID, orderID)
	}
	delete(h.conns, connID)
}

// EmitToRoom delivers the event to every current member of room and returns
// how many accepted it. The lock is held for the whole fan-out so members see
// events for a room in emission order.
func (h *Hub) EmitToRoom(room, event string, data any) int {
	msg := Message{Event: event, Data: data}
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for connID := range h.rooms[room] {
		m, ok := h.conns[connID]
		if !ok {
			continue
		}
		if m.client.Send(msg) {
			delivered++
		} else {
			slog.Debug("dropped realtime event", "room", room, "event", event, "conn_id", connID)
		}
	}
	return delivered
}

// EmitToConnection delivers the event to a single connection.
func (h *Hub) EmitToConnection(connID, event string, data any) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	m, ok := h.conns[connID]
	if !ok {
		return false
	}
	return m.client.Send(Message{Event: event, Data: data})
}

// Members returns the sorted connection ids currently in room.
func (h *Hub) Members(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return sortedKeys(h.rooms[room])
}

// Trackers returns the sorted connection ids tracking orderID.
func (h *Hub) Trackers(orderID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return sortedKeys(h.tracking[orderID])
}

// Rooms returns the sorted rooms the connection belongs to.
func (h *Hub) Rooms(connID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	m, ok := h.conns[connID]
	if !ok {
		return nil
	}
	return sortedKeys(m.rooms)
}

// IsTracked reports whether any connection is tracking orderID.
func (h *Hub) IsTracked(orderID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.tracking[orderID]
	return ok
}

// ConnectionCount returns the number of registered connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
