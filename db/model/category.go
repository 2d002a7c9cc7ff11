package model

type Category struct {
	Base
	Name      string `json:"name"`
	CreatorID uint   `gorm:"index" json:"creator_id"`
}
