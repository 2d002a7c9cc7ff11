package store

import (
	"errors"
	"fmt"

	"github.com/kmcheng/discusshub-backend/db/model"
	"gorm.io/gorm"
)

// ResolveReply loads the reply target with its sender so the caller can
// embed a quoted preview. NotFound when no such message exists,
// InvalidReference when it belongs to another discussion.
func ResolveReply(db *gorm.DB, discussionID uint, replyToID uint) (*model.Message, error) {
	m := &model.Message{}
	if err := db.Preload("Sender").First(m, replyToID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: reply target %d", ErrNotFound, replyToID)
		}
		return nil, err
	}
	if m.DiscussionID != discussionID {
		return nil, fmt.Errorf("%w: reply target belongs to discussion %d", ErrInvalidReference, m.DiscussionID)
	}
	return m, nil
}
