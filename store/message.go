package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/kmcheng/discusshub-backend/db/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateMessageInput struct {
	Content   string
	Type      string
	FileURL   string
	FileName  string
	FileSize  int64
	ReplyToID *uint
}

// CreateMessage persists a message for sender in the discussion, tagged with
// the sender's snapshot group (nil for the creating lecturer). The reply
// target, if any, must exist and belong to the same discussion.
func CreateMessage(db *gorm.DB, d *model.Discussion, sender *model.User, groupID *uint, in CreateMessageInput) (*model.Message, error) {
	switch in.Type {
	case model.MsgTypeText, model.MsgTypeEmoji:
		if in.Content == "" {
			return nil, fmt.Errorf("%w: empty content", ErrValidation)
		}
	case model.MsgTypeFile:
		if in.FileURL == "" {
			return nil, fmt.Errorf("%w: missing file url", ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown message type %q", ErrValidation, in.Type)
	}

	var replyTo *model.Message
	if in.ReplyToID != nil {
		var err error
		if replyTo, err = ResolveReply(db, d.ID, *in.ReplyToID); err != nil {
			return nil, err
		}
	}

	m := &model.Message{
		DiscussionID: d.ID,
		SenderID:     sender.ID,
		GroupID:      groupID,
		Type:         in.Type,
		Content:      in.Content,
		FileURL:      in.FileURL,
		FileName:     in.FileName,
		FileSize:     in.FileSize,
		ReplyToID:    in.ReplyToID,
	}
	if err := db.Create(m).Error; err != nil {
		return nil, err
	}
	m.Sender = sender
	m.ReplyTo = replyTo
	return m, nil
}

// ListMessages returns the discussion's messages ascending by creation time,
// primary key breaking same-timestamp ties so the order is stable across
// calls. A non-nil groupFilter narrows the result to that group's messages
// plus the ungrouped (lecturer-authored) ones.
func ListMessages(db *gorm.DB, discussionID uint, groupFilter *uint) ([]model.Message, error) {
	q := db.
		Where("discussion_id = ?", discussionID).
		Preload("Sender").
		Preload("ReplyTo.Sender").
		Preload("Reads").
		Order("created_at asc").
		Order("id asc")
	if groupFilter != nil {
		q = q.Where("group_id = ? OR group_id IS NULL", *groupFilter)
	}
	msgs := make([]model.Message, 0)
	if err := q.Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// EditMessage replaces the content of the editor's own message and marks it
// edited. Only content is mutable; the snapshot group and type are not.
func EditMessage(db *gorm.DB, id uint, editor *model.User, content string) (*model.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", ErrValidation)
	}
	m, err := getMessage(db, id)
	if err != nil {
		return nil, err
	}
	if m.SenderID != editor.ID {
		return nil, fmt.Errorf("%w: not the sender", ErrForbidden)
	}
	if err := db.Model(m).Updates(map[string]any{"content": content, "edited": true}).Error; err != nil {
		return nil, err
	}
	m.Sender = editor
	return m, nil
}

// DeleteMessage removes the requester's own message. Replies pointing at it
// keep their reply_to_id and resolve to no preview afterwards.
func DeleteMessage(db *gorm.DB, id uint, requester *model.User) error {
	m, err := getMessage(db, id)
	if err != nil {
		return err
	}
	if m.SenderID != requester.ID {
		return fmt.Errorf("%w: not the sender", ErrForbidden)
	}
	return db.Delete(m).Error
}

// AppendRead records a read receipt once per (message, user) pair.
func AppendRead(db *gorm.DB, messageID uint, userID uint) error {
	if _, err := getMessage(db, messageID); err != nil {
		return err
	}
	r := &model.MessageRead{MessageID: messageID, UserID: userID, ReadAt: time.Now()}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(r).Error
}

func getMessage(db *gorm.DB, id uint) (*model.Message, error) {
	m := &model.Message{}
	if err := db.First(m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: message %d", ErrNotFound, id)
		}
		return nil, err
	}
	return m, nil
}
