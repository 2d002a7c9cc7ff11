package mq

import "encoding/json"

// BroadcastTopic carries one envelope per successfully persisted message.
// Every server instance consumes it on its own channel (SERVER_ID) and fans
// out to its local room connections, so multi-instance deployments all see
// every event.
const BroadcastTopic = "messages"

// Envelope wraps a pre-serialized ws.Event with the routing fields the hub
// needs for per-recipient group filtering.
type Envelope struct {
	DiscussionID uint            `json:"discussion_id"`
	SenderID     uint            `json:"sender_id"`
	GroupID      *uint           `json:"group_id,omitempty"`
	Event        json.RawMessage `json:"event"`
}
