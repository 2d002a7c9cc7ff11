package store

import (
	"errors"
	"fmt"

	"github.com/kmcheng/discusshub-backend/db/model"
	"gorm.io/gorm"
)

type DiscussionInput struct {
	Title      string
	Content    string
	CategoryID *uint
	Tags       []string
	GroupIDs   []uint
}

// CreateDiscussion persists a discussion owned by creator with an ordered,
// non-empty group list. Every referenced group must be owned by creator.
func CreateDiscussion(db *gorm.DB, creator *model.User, in DiscussionInput) (*model.Discussion, error) {
	if in.Title == "" || in.Content == "" {
		return nil, fmt.Errorf("%w: missing title or content", ErrValidation)
	}
	if len(in.GroupIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one group required", ErrValidation)
	}
	if err := checkGroupOwnership(db, creator.ID, in.GroupIDs); err != nil {
		return nil, err
	}
	d := &model.Discussion{
		Title:      in.Title,
		Content:    in.Content,
		Active:     true,
		CreatorID:  creator.ID,
		CategoryID: in.CategoryID,
		Tags:       in.Tags,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		return replaceGroups(tx, d.ID, in.GroupIDs)
	})
	if err != nil {
		return nil, err
	}
	return GetDiscussion(db, d.ID)
}

// UpdateDiscussion mutates title/content/category/tags/groups, creator only.
func UpdateDiscussion(db *gorm.DB, id uint, requester *model.User, in DiscussionInput) (*model.Discussion, error) {
	d, err := GetDiscussion(db, id)
	if err != nil {
		return nil, err
	}
	if d.CreatorID != requester.ID {
		return nil, fmt.Errorf("%w: not the creator", ErrForbidden)
	}
	if in.Title == "" || in.Content == "" {
		return nil, fmt.Errorf("%w: missing title or content", ErrValidation)
	}
	if len(in.GroupIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one group required", ErrValidation)
	}
	if err := checkGroupOwnership(db, requester.ID, in.GroupIDs); err != nil {
		return nil, err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"title":       in.Title,
			"content":     in.Content,
			"category_id": in.CategoryID,
		}
		if err := tx.Model(d).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Model(d).Update("tags", in.Tags).Error; err != nil {
			return err
		}
		return replaceGroups(tx, d.ID, in.GroupIDs)
	})
	if err != nil {
		return nil, err
	}
	return GetDiscussion(db, id)
}

// DeleteDiscussion removes the discussion and cascades to its messages and
// group associations, creator only.
func DeleteDiscussion(db *gorm.DB, id uint, requester *model.User) error {
	d, err := GetDiscussion(db, id)
	if err != nil {
		return err
	}
	if d.CreatorID != requester.ID {
		return fmt.Errorf("%w: not the creator", ErrForbidden)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("discussion_id = ?", id).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("discussion_id = ?", id).Delete(&model.DiscussionGroup{}).Error; err != nil {
			return err
		}
		return tx.Delete(d).Error
	})
}

// GetDiscussion loads a discussion with its groups in stored order, each
// with its member roster, ready for membership resolution.
func GetDiscussion(db *gorm.DB, id uint) (*model.Discussion, error) {
	d := &model.Discussion{}
	if err := db.Preload("Creator").Preload("Category").First(d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: discussion %d", ErrNotFound, id)
		}
		return nil, err
	}
	gs := make([]*model.Group, 0)
	err := db.
		Joins("JOIN discussion_groups dg ON dg.group_id = groups.id").
		Where("dg.discussion_id = ?", id).
		Order("dg.position asc").
		Preload("Members").
		Find(&gs).Error
	if err != nil {
		return nil, err
	}
	d.Groups = gs
	return d, nil
}

// ListDiscussionsFor returns discussions visible to u: the ones they created
// plus the ones attached to a group they belong to.
func ListDiscussionsFor(db *gorm.DB, u *model.User) ([]model.Discussion, error) {
	ds := make([]model.Discussion, 0)
	sub := db.Table("discussion_groups dg").
		Select("dg.discussion_id").
		Joins("JOIN group_members gm ON gm.group_id = dg.group_id").
		Where("gm.user_id = ?", u.ID)
	err := db.
		Preload("Creator").
		Preload("Category").
		Where("creator_id = ?", u.ID).
		Or("id IN (?)", sub).
		Order("created_at desc").
		Find(&ds).Error
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func replaceGroups(tx *gorm.DB, discussionID uint, groupIDs []uint) error {
	if err := tx.Where("discussion_id = ?", discussionID).Delete(&model.DiscussionGroup{}).Error; err != nil {
		return err
	}
	rows := make([]model.DiscussionGroup, 0, len(groupIDs))
	seen := make(map[uint]bool, len(groupIDs))
	pos := 0
	for _, gid := range groupIDs {
		if seen[gid] {
			continue
		}
		seen[gid] = true
		rows = append(rows, model.DiscussionGroup{DiscussionID: discussionID, GroupID: gid, Position: pos})
		pos++
	}
	return tx.Create(&rows).Error
}

func checkGroupOwnership(db *gorm.DB, creatorID uint, groupIDs []uint) error {
	var count int64
	err := db.Model(&model.Group{}).
		Where("id IN ? AND creator_id = ?", groupIDs, creatorID).
		Count(&count).Error
	if err != nil {
		return err
	}
	ids := make(map[uint]bool, len(groupIDs))
	for _, id := range groupIDs {
		ids[id] = true
	}
	if count != int64(len(ids)) {
		return fmt.Errorf("%w: group not owned by discussion creator", ErrInvalidReference)
	}
	return nil
}
