package group

type InCreateGroup struct {
	Name *string `json:"name"`
}

type InUpdateGroup struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

type InMember struct {
	UserID *uint `json:"user_id"`
}
