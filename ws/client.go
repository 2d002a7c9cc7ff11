package ws

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kmcheng/discusshub-backend/db/model"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Client is one live connection focused on a single discussion room. The
// group fields are resolved once at join time; like a message's group tag
// they are a snapshot, not re-evaluated on membership edits.
type Client struct {
	logger       *log.Logger
	hub          *Hub
	conn         *websocket.Conn
	user         *model.User
	discussionID uint
	groupID      *uint
	creator      bool
	send         chan []byte
	// OnClose runs after the read pump exits, before unregistering.
	OnClose func()
}

type ClientCfg struct {
	Logger       *log.Logger
	Hub          *Hub
	Conn         *websocket.Conn
	User         *model.User
	DiscussionID uint
	GroupID      *uint
	Creator      bool
}

func NewClient(cfg *ClientCfg) *Client {
	return &Client{
		logger:       cfg.Logger,
		hub:          cfg.Hub,
		conn:         cfg.Conn,
		user:         cfg.User,
		discussionID: cfg.DiscussionID,
		groupID:      cfg.GroupID,
		creator:      cfg.Creator,
		send:         make(chan []byte, 256),
	}
}

// wants reports whether an event tagged with groupID should reach this
// connection.
func (c *Client) wants(groupID *uint) bool {
	if c.creator || groupID == nil {
		return true
	}
	return c.groupID != nil && *c.groupID == *groupID
}

// inbound frames from the peer; only ephemeral typing indicators are
// accepted here, message sends go through the REST path.
type inEvent struct {
	Type string `json:"type"`
}

// ReadPump relays typing events and keeps the connection alive until the
// peer goes away, then deregisters.
func (c *Client) ReadPump() {
	defer func() {
		if c.OnClose != nil {
			c.OnClose()
		}
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Printf("error: %v\n", err)
			}
			break
		}
		var ev inEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			c.logger.Printf("error: %v\n", err)
			continue
		}
		if ev.Type != EventTyping {
			continue
		}
		out, err := json.Marshal(&Event{
			Type:         EventTyping,
			DiscussionID: c.discussionID,
			UserID:       c.user.ID,
		})
		if err != nil {
			c.logger.Println(err)
			continue
		}
		c.hub.Typing(c, out)
	}
}

// WritePump drains the send channel to the peer.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(msg)

			// Add queued events to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
