package user

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

func (h *Handlers) listPending(w http.ResponseWriter, r *http.Request) {
	users := make([]model.User, 0)
	if err := db.GetDB(r.Context()).Where("approved = ?", false).Find(&users).Error; err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(users)
}

func (h *Handlers) approve(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "userID")
	tx := db.GetDB(r.Context()).Model(&model.User{}).Where("id = ?", uid).Update("approved", true)
	if tx.Error != nil {
		h.logger.Println(tx.Error)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if tx.RowsAffected == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// reject removes an account outright; also the admin's hard-delete path for
// approved users.
func (h *Handlers) reject(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "userID")
	var u model.User
	d := db.GetDB(r.Context())
	if err := d.First(&u, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			w.WriteHeader(http.StatusNotFound)
		} else {
			h.logger.Println(err)
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}
	if err := d.Delete(&u).Error; err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.Authenticator(h.logger))
		r.Use(middleware.RequireRole(model.RoleAdmin))
		r.With(middleware.NoCache).Get("/pending", h.listPending)
		r.Post("/{userID}/approve", h.approve)
		r.Delete("/{userID}", h.reject)
	})
}

func NewHandlers(logger *log.Logger) *Handlers {
	return &Handlers{logger}
}
