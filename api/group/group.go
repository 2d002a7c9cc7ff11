package group

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kmcheng/discusshub-backend/db"
	"github.com/kmcheng/discusshub-backend/db/model"
	"github.com/kmcheng/discusshub-backend/middleware"
	"gorm.io/gorm"
)

type Handlers struct {
	logger *log.Logger
}

// listGroups: a lecturer sees the groups they own, a student the groups they
// belong to.
func (h *Handlers) listGroups(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	d := db.GetDB(r.Context())

	grps := make([]model.Group, 0)
	var err error
	if u.Role == model.RoleLecturer {
		err = d.Preload("Members").Where("creator_id = ?", u.ID).Find(&grps).Error
	} else {
		err = d.Preload("Members").
			Joins("JOIN group_members gm ON gm.group_id = groups.id").
			Where("gm.user_id = ?", u.ID).
			Find(&grps).Error
	}
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(grps)
}

func (h *Handlers) createGroup(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	var body InCreateGroup
	encoder, decoder := json.NewEncoder(w), json.NewDecoder(r.Body)
	err := decoder.Decode(&body)
	if body.Name == nil || *body.Name == "" || err != nil {
		if err != nil {
			h.logger.Println(err)
		}
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	g := &model.Group{
		Name:      *body.Name,
		CreatorID: u.ID,
		Active:    true,
	}
	if err := db.GetDB(r.Context()).Create(g).Error; err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	encoder.Encode(g)
}

func (h *Handlers) updateGroup(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	g := r.Context().Value("group").(*model.Group)
	if g.CreatorID != u.ID {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	var body InUpdateGroup
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	updates := map[string]any{}
	if body.Name != nil && *body.Name != "" {
		updates["name"] = *body.Name
	}
	if body.Active != nil {
		updates["active"] = *body.Active
	}
	if len(updates) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := db.GetDB(r.Context()).Model(g).Updates(updates).Error; err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(g)
}

// deleteGroup: members are untouched, they just lose the group's threads.
func (h *Handlers) deleteGroup(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	g := r.Context().Value("group").(*model.Group)
	if g.CreatorID != u.ID {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	d := db.GetDB(r.Context())
	if err := d.Model(g).Association("Members").Clear(); err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if err := d.Delete(g).Error; err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) addMember(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	g := r.Context().Value("group").(*model.Group)
	if g.CreatorID != u.ID {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	var body InMember
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	d := db.GetDB(r.Context())
	var member model.User
	if err := d.First(&member, *body.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			w.WriteHeader(http.StatusNotFound)
		} else {
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}
	if member.Role != model.RoleStudent {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte("only students can join a group"))
		return
	}
	if g.HasMember(member.ID) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("already a member"))
		return
	}
	if err := d.Model(g).Association("Members").Append(&member); err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) removeMember(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	g := r.Context().Value("group").(*model.Group)
	if g.CreatorID != u.ID {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	uid := chi.URLParam(r, "userID")
	d := db.GetDB(r.Context())
	var member model.User
	if err := d.First(&member, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			w.WriteHeader(http.StatusNotFound)
		} else {
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}
	if err := d.Model(g).Association("Members").Delete(&member); err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Route("/groups", func(r chi.Router) {
		r.Use(middleware.Authenticator(h.logger))
		r.With(middleware.NoCache).Get("/", h.listGroups)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleLecturer))
			r.Post("/", h.createGroup)
			r.With(middleware.WithGroup).Patch("/{groupID}", h.updateGroup)
			r.With(middleware.WithGroup).Delete("/{groupID}", h.deleteGroup)
			r.With(middleware.WithGroup).Post("/{groupID}/members", h.addMember)
			r.With(middleware.WithGroup).Delete("/{groupID}/members/{userID}", h.removeMember)
		})
	})
}

func NewHandlers(l *log.Logger) *Handlers {
	return &Handlers{l}
}
