package discussion

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kmcheng/discusshub-backend/api"
	"github.com/kmcheng/discusshub-backend/db"
	"github.com/kmcheng/discusshub-backend/db/model"
	"github.com/kmcheng/discusshub-backend/mq"
	"github.com/kmcheng/discusshub-backend/notify"
	"github.com/kmcheng/discusshub-backend/store"
	"github.com/kmcheng/discusshub-backend/visibility"
	"github.com/kmcheng/discusshub-backend/ws"
)

func (h *Handlers) createMsg(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	d := r.Context().Value("discussion").(*model.Discussion)

	// Snapshot the sender's group now; the message keeps this tag forever.
	var groupID *uint
	if !visibility.IsCreator(d, u) {
		gid, ok := visibility.ResolveGroup(d, u)
		if !ok {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("not a participant of this discussion"))
			return
		}
		groupID = &gid
	}

	var body InCreateMsg
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	in := store.CreateMessageInput{Type: model.MsgTypeText, ReplyToID: body.ReplyToID}
	if body.Type != nil {
		in.Type = *body.Type
	}
	if body.Content != nil {
		in.Content = *body.Content
	}
	if body.FileURL != nil {
		in.FileURL = *body.FileURL
	}
	if body.FileName != nil {
		in.FileName = *body.FileName
	}
	if body.FileSize != nil {
		in.FileSize = *body.FileSize
	}

	m, err := store.CreateMessage(db.GetDB(r.Context()), d, u, groupID, in)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	out := api.NewOutMessage(m)
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(out)

	// The write is the source of truth; fan-out is a server-side side
	// effect of the successful create and never blocks the ack.
	go h.afterCreate(d, m, out)
}

func (h *Handlers) afterCreate(d *model.Discussion, m *model.Message, out *api.OutMessage) {
	b, err := json.Marshal(out)
	if err != nil {
		h.logger.Println(err)
		return
	}
	ev, err := json.Marshal(&ws.Event{
		Type:         ws.EventMessage,
		DiscussionID: d.ID,
		Message:      b,
	})
	if err != nil {
		h.logger.Println(err)
		return
	}
	if err := mq.Publish(mq.BroadcastTopic, &mq.Envelope{
		DiscussionID: d.ID,
		SenderID:     m.SenderID,
		GroupID:      m.GroupID,
		Event:        ev,
	}); err != nil {
		h.logger.Println(err)
	}
	notify.MessageCreated(context.Background(), h.logger, d, m)
}

func (h *Handlers) listMsgs(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	d := r.Context().Value("discussion").(*model.Discussion)

	var filter *uint
	if !visibility.IsCreator(d, u) {
		gid, ok := visibility.ResolveGroup(d, u)
		if !ok {
			// A participant in none of the groups sees nothing.
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode([]*api.OutMessage{})
			return
		}
		filter = &gid
	}

	msgs, err := store.ListMessages(db.GetDB(r.Context()), d.ID, filter)
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	out := make([]*api.OutMessage, 0, len(msgs))
	for i := range msgs {
		out = append(out, api.NewOutMessage(&msgs[i]))
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(out)
}

func (h *Handlers) editMsg(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	id, err := strconv.ParseUint(chi.URLParam(r, "messageID"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var body InEditMsg
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Content == nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	m, err := store.EditMessage(db.GetDB(r.Context()), uint(id), u, *body.Content)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(api.NewOutMessage(m))
}

func (h *Handlers) deleteMsg(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	id, err := strconv.ParseUint(chi.URLParam(r, "messageID"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := store.DeleteMessage(db.GetDB(r.Context()), uint(id), u); err != nil {
		api.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) readMsg(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	id, err := strconv.ParseUint(chi.URLParam(r, "messageID"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := store.AppendRead(db.GetDB(r.Context()), uint(id), u.ID); err != nil {
		api.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
