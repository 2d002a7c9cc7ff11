package model

import "time"

const (
	MsgTypeText  = "text"
	MsgTypeFile  = "file"
	MsgTypeEmoji = "emoji"
)

type Message struct {
	Base
	DiscussionID uint  `gorm:"index" json:"discussion_id"`
	SenderID     uint  `json:"sender_id"`
	Sender       *User `json:"sender,omitempty"`

	// GroupID is the sender's group within the discussion at send time.
	// Nil for the creating lecturer (visible to every group). Never
	// recomputed after creation.
	GroupID *uint  `gorm:"index" json:"group_id"`
	Group   *Group `json:"-"`

	Type     string `gorm:"type:varchar(8)" json:"type"`
	Content  string `json:"content"`
	FileURL  string `json:"file_url,omitempty"`
	FileName string `json:"file_name,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`

	// ReplyTo stays nil after the target is deleted; clients render
	// "message unavailable" for a set ReplyToID with no preview.
	ReplyToID *uint    `json:"reply_to_id,omitempty"`
	ReplyTo   *Message `json:"reply_to,omitempty"`

	Edited bool          `json:"edited"`
	Reads  []MessageRead `json:"reads,omitempty"`
}

// MessageRead is an append-only read receipt.
type MessageRead struct {
	MessageID uint      `gorm:"primaryKey" json:"message_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	ReadAt    time.Time `json:"read_at"`
}
