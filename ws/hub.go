package ws

import (
	"sync"
	"sync/atomic"
)

type rooms struct {
	sync.Mutex
	// discussion_id -> connections focused on that discussion
	c map[uint]map[*Client]struct{}
}

// Hub is the live connection registry: one room per discussion, many
// connections per room, one room focus per connection. Created at service
// start and torn down with Close at shutdown.
type Hub struct {
	rooms      *rooms
	register   chan *Client
	unregister chan *Client
	count      int64
	stop       bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: &rooms{
			c: make(map[uint]map[*Client]struct{}),
		},
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Register() chan<- *Client {
	return h.register
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.rooms.Lock()
			if h.rooms.c[c.discussionID] == nil {
				h.rooms.c[c.discussionID] = make(map[*Client]struct{})
			}
			h.rooms.c[c.discussionID][c] = struct{}{}
			atomic.AddInt64(&h.count, 1)
			h.rooms.Unlock()
		case c := <-h.unregister:
			if c == nil {
				continue
			}
			h.rooms.Lock()
			if room := h.rooms.c[c.discussionID]; room != nil {
				if _, ok := room[c]; ok {
					delete(room, c)
					close(c.send)
					if len(room) == 0 {
						delete(h.rooms.c, c.discussionID)
					}
					atomic.AddInt64(&h.count, -1)
				}
			}
			h.rooms.Unlock()
			if h.stop && atomic.LoadInt64(&h.count) == 0 {
				return
			}
		}
	}
}

// Broadcast fans a persisted message out to the discussion's room. The
// sender's own connections are skipped (the sender renders from the create
// response), and each recipient only receives events for its own snapshot
// group, ungrouped events, or anything when it is the creator's connection.
// Delivery is best effort: a connection with a full send buffer is skipped.
func (h *Hub) Broadcast(discussionID, senderID uint, groupID *uint, payload []byte) {
	h.rooms.Lock()
	defer h.rooms.Unlock()
	for c := range h.rooms.c[discussionID] {
		if c.user.ID == senderID {
			continue
		}
		if !c.wants(groupID) {
			continue
		}
		select {
		case c.send <- payload:
		default:
		}
	}
}

// Typing relays a typing indicator to every other connection in the origin's
// room. Fire and forget.
func (h *Hub) Typing(origin *Client, payload []byte) {
	h.rooms.Lock()
	defer h.rooms.Unlock()
	for c := range h.rooms.c[origin.discussionID] {
		if c == origin {
			continue
		}
		select {
		case c.send <- payload:
		default:
		}
	}
}

// Close shuts every connection down; Run returns once the resulting
// unregisters drain.
func (h *Hub) Close() {
	h.stop = true
	h.rooms.Lock()
	cs := make([]*Client, 0)
	for _, room := range h.rooms.c {
		for c := range room {
			cs = append(cs, c)
		}
	}
	h.rooms.Unlock()
	for _, c := range cs {
		if c.conn != nil {
			c.conn.Close()
		}
	}
}
