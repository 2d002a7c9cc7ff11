package ws

import "encoding/json"

const (
	EventMessage = "message"
	EventTyping  = "typing"
)

// Event is the frame pushed to connected peers. Message events carry the
// serialized message exactly as the create response returned it, so clients
// can dedupe by id against their optimistic render.
type Event struct {
	Type         string          `json:"type"`
	DiscussionID uint            `json:"discussion_id"`
	Message      json.RawMessage `json:"message,omitempty"`
	UserID       uint            `json:"user_id,omitempty"`
}
