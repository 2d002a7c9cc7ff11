package model

type Group struct {
	Base
	Name      string  `json:"name"`
	CreatorID uint    `gorm:"index" json:"creator_id"`
	Creator   *User   `json:"creator,omitempty"`
	Active    bool    `json:"active"`
	Members   []*User `gorm:"many2many:group_members" json:"members,omitempty"`
}

// HasMember reports whether uid is on the loaded roster.
func (g *Group) HasMember(uid uint) bool {
	for _, m := range g.Members {
		if m.ID == uid {
			return true
		}
	}
	return false
}
