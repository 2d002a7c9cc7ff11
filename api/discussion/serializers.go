package discussion

import "github.com/kmcheng/discusshub-backend/db/model"

type InDiscussion struct {
	Title      *string  `json:"title"`
	Content    *string  `json:"content"`
	CategoryID *uint    `json:"category_id"`
	Tags       []string `json:"tags"`
	GroupIDs   []uint   `json:"group_ids"`
}

type InCreateMsg struct {
	Content   *string `json:"content"`
	Type      *string `json:"type"`
	FileURL   *string `json:"file_url"`
	FileName  *string `json:"file_name"`
	FileSize  *int64  `json:"file_size"`
	ReplyToID *uint   `json:"reply_to_id"`
}

type InEditMsg struct {
	Content *string `json:"content"`
}

// OutDiscussion adds the derived single-group compatibility field: clients
// still on the legacy singular shape read group_id, everyone else uses the
// plural ordered groups list, which is the canonical source of truth.
type OutDiscussion struct {
	*model.Discussion
	GroupID *uint `json:"group_id"`
}

func NewOutDiscussion(d *model.Discussion) *OutDiscussion {
	out := &OutDiscussion{Discussion: d}
	if len(d.Groups) > 0 {
		out.GroupID = &d.Groups[0].ID
	}
	return out
}
