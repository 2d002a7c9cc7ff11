package model

type Discussion struct {
	Base
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Active     bool      `json:"active"`
	CreatorID  uint      `gorm:"index" json:"creator_id"`
	Creator    *User     `json:"creator,omitempty"`
	CategoryID *uint     `json:"category_id,omitempty"`
	Category   *Category `json:"category,omitempty"`
	Tags       []string  `gorm:"serializer:json" json:"tags"`

	// Groups is the discussion's associated groups in stored order.
	// The join rows live in discussion_groups; loading is done explicitly
	// so the order (position column) is preserved.
	Groups []*Group `gorm:"-" json:"groups,omitempty"`
}

// DiscussionGroup is the ordered join row between a discussion and a group.
type DiscussionGroup struct {
	DiscussionID uint `gorm:"primaryKey"`
	GroupID      uint `gorm:"primaryKey"`
	Position     int  `gorm:"index"`
}
