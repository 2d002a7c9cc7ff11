package socket

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/kmcheng/discusshub-backend/db/model"
	"github.com/kmcheng/discusshub-backend/middleware"
	"github.com/kmcheng/discusshub-backend/presence"
	"github.com/kmcheng/discusshub-backend/visibility"
	"github.com/kmcheng/discusshub-backend/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handlers struct {
	logger *log.Logger
	hub    *ws.Hub
}

// serveWs joins the connection to the discussion's room. A connection is
// focused on exactly one room; clients reconnect to switch. The viewer's
// group is resolved here once and rides along as the connection's snapshot.
func (h *Handlers) serveWs(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	s := r.Context().Value("session").(*model.Session)
	d := r.Context().Value("discussion").(*model.Discussion)

	creator := visibility.IsCreator(d, u)
	var groupID *uint
	if !creator {
		gid, ok := visibility.ResolveGroup(d, u)
		if !ok {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		groupID = &gid
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Println(err)
		return
	}
	c := ws.NewClient(&ws.ClientCfg{
		Logger:       h.logger,
		Hub:          h.hub,
		Conn:         conn,
		User:         u,
		DiscussionID: d.ID,
		GroupID:      groupID,
		Creator:      creator,
	})

	if err := presence.SetOnline(r.Context(), u.ID, s.IP); err != nil {
		h.logger.Println(err)
	}
	uid, ip := u.ID, s.IP
	c.OnClose = func() {
		if err := presence.SetOffline(context.Background(), uid, ip); err != nil {
			h.logger.Println(err)
		}
	}

	h.hub.Register() <- c
	go c.WritePump()
	go c.ReadPump()
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticator(h.logger))
		r.With(middleware.WithDiscussion).Get("/discussions/{discussionID}/ws", h.serveWs)
	})
}

func NewHandlers(logger *log.Logger, hub *ws.Hub) *Handlers {
	return &Handlers{logger, hub}
}
