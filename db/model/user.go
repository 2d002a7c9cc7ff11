package model

const (
	RoleAdmin    = "admin"
	RoleLecturer = "lecturer"
	RoleStudent  = "student"
)

type User struct {
	Base
	Email       string    `gorm:"unique" json:"email"`
	Displayname string    `json:"displayname"`
	Pass        string    `json:"-"`
	Role        string    `gorm:"type:varchar(16)" json:"role"`
	Approved    bool      `json:"approved"`
	Sessions    []Session `json:"-"`
}
