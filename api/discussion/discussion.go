package discussion

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kmcheng/discusshub-backend/api"
	"github.com/kmcheng/discusshub-backend/db"
	"github.com/kmcheng/discusshub-backend/db/model"
	"github.com/kmcheng/discusshub-backend/middleware"
	"github.com/kmcheng/discusshub-backend/store"
	"github.com/kmcheng/discusshub-backend/visibility"
)

type Handlers struct {
	logger *log.Logger
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	ds, err := store.ListDiscussionsFor(db.GetDB(r.Context()), u)
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ds)
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	d := r.Context().Value("discussion").(*model.Discussion)
	if _, ok := visibility.ResolveGroup(d, u); !ok && !visibility.IsCreator(d, u) {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(NewOutDiscussion(d))
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	var body InDiscussion
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	in := store.DiscussionInput{
		CategoryID: body.CategoryID,
		Tags:       body.Tags,
		GroupIDs:   body.GroupIDs,
	}
	if body.Title != nil {
		in.Title = *body.Title
	}
	if body.Content != nil {
		in.Content = *body.Content
	}
	d, err := store.CreateDiscussion(db.GetDB(r.Context()), u, in)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(NewOutDiscussion(d))
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	d := r.Context().Value("discussion").(*model.Discussion)
	var body InDiscussion
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	// Unset fields keep their stored values.
	in := store.DiscussionInput{
		Title:      d.Title,
		Content:    d.Content,
		CategoryID: d.CategoryID,
		Tags:       d.Tags,
	}
	for _, g := range d.Groups {
		in.GroupIDs = append(in.GroupIDs, g.ID)
	}
	if body.Title != nil {
		in.Title = *body.Title
	}
	if body.Content != nil {
		in.Content = *body.Content
	}
	if body.CategoryID != nil {
		in.CategoryID = body.CategoryID
	}
	if body.Tags != nil {
		in.Tags = body.Tags
	}
	if body.GroupIDs != nil {
		in.GroupIDs = body.GroupIDs
	}
	updated, err := store.UpdateDiscussion(db.GetDB(r.Context()), d.ID, u, in)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(NewOutDiscussion(updated))
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	d := r.Context().Value("discussion").(*model.Discussion)
	if err := store.DeleteDiscussion(db.GetDB(r.Context()), d.ID, u); err != nil {
		api.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Route("/discussions", func(r chi.Router) {
		r.Use(middleware.Authenticator(h.logger))
		r.With(middleware.NoCache).Get("/", h.list)
		r.With(middleware.RequireRole(model.RoleLecturer)).Post("/", h.create)
		r.Group(func(r chi.Router) {
			r.Use(middleware.WithDiscussion)
			r.With(middleware.NoCache).Get("/{discussionID}", h.get)
			r.With(middleware.RequireRole(model.RoleLecturer)).Patch("/{discussionID}", h.update)
			r.With(middleware.RequireRole(model.RoleLecturer)).Delete("/{discussionID}", h.delete)

			r.Post("/{discussionID}/messages", h.createMsg)
			r.With(middleware.NoCache).Get("/{discussionID}/messages", h.listMsgs)
			r.Patch("/{discussionID}/messages/{messageID}", h.editMsg)
			r.Delete("/{discussionID}/messages/{messageID}", h.deleteMsg)
			r.Post("/{discussionID}/messages/{messageID}/read", h.readMsg)

			r.With(middleware.NoCache).Get("/{discussionID}/export", h.export)
		})
	})
}

func NewHandlers(logger *log.Logger) *Handlers {
	return &Handlers{logger}
}
