package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/kmcheng/discusshub-backend/db/model"
	"github.com/kmcheng/discusshub-backend/store"
)

type OutUser struct {
	ID          uint   `json:"id"`
	Displayname string `json:"displayname"`
	Role        string `json:"role"`
}

func NewOutUser(u *model.User) *OutUser {
	if u == nil {
		return nil
	}
	return &OutUser{ID: u.ID, Displayname: u.Displayname, Role: u.Role}
}

type OutFile struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// OutReply is the quoted preview embedded in a reply's payload so clients
// can render it without a second round trip.
type OutReply struct {
	ID      uint     `json:"id"`
	Sender  *OutUser `json:"sender"`
	Type    string   `json:"type"`
	Content string   `json:"content"`
}

type OutMessage struct {
	ID           uint                `json:"id"`
	DiscussionID uint                `json:"discussion_id"`
	Sender       *OutUser            `json:"sender"`
	GroupID      *uint               `json:"group_id"`
	Type         string              `json:"type"`
	Content      string              `json:"content"`
	File         *OutFile            `json:"file,omitempty"`
	ReplyToID    *uint               `json:"reply_to_id,omitempty"`
	ReplyTo      *OutReply           `json:"reply_to,omitempty"`
	Edited       bool                `json:"edited"`
	CreatedAt    time.Time           `json:"created_at"`
	Reads        []model.MessageRead `json:"reads,omitempty"`
}

// NewOutMessage serializes a stored message. A set ReplyToID with a nil
// ReplyTo means the target was deleted; the preview is simply omitted.
func NewOutMessage(m *model.Message) *OutMessage {
	out := &OutMessage{
		ID:           m.ID,
		DiscussionID: m.DiscussionID,
		Sender:       NewOutUser(m.Sender),
		GroupID:      m.GroupID,
		Type:         m.Type,
		Content:      m.Content,
		ReplyToID:    m.ReplyToID,
		Edited:       m.Edited,
		CreatedAt:    m.CreatedAt,
		Reads:        m.Reads,
	}
	if m.Type == model.MsgTypeFile {
		out.File = &OutFile{URL: m.FileURL, Name: m.FileName, Size: m.FileSize}
	}
	if m.ReplyTo != nil {
		out.ReplyTo = &OutReply{
			ID:      m.ReplyTo.ID,
			Sender:  NewOutUser(m.ReplyTo.Sender),
			Type:    m.ReplyTo.Type,
			Content: m.ReplyTo.Content,
		}
	}
	return out
}

// WriteError maps the store taxonomy onto status codes. Anything outside the
// taxonomy is a 500.
func WriteError(w http.ResponseWriter, err error) {
	var code int
	switch {
	case errors.Is(err, store.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, store.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, store.ErrInvalidReference):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrValidation):
		code = http.StatusBadRequest
	default:
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(code)
	w.Write([]byte(err.Error()))
}
