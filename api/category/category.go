package category

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

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	cats := make([]model.Category, 0)
	if err := db.GetDB(r.Context()).Find(&cats).Error; err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(cats)
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	var body struct {
		Name *string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == nil || *body.Name == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	c := &model.Category{Name: *body.Name, CreatorID: u.ID}
	if err := db.GetDB(r.Context()).Create(c).Error; err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(c)
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	d := db.GetDB(r.Context())
	var c model.Category
	if err := d.First(&c, chi.URLParam(r, "categoryID")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			w.WriteHeader(http.StatusNotFound)
		} else {
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}
	if c.CreatorID != u.ID {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if err := d.Delete(&c).Error; err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Route("/categories", func(r chi.Router) {
		r.Use(middleware.Authenticator(h.logger))
		r.With(middleware.NoCache).Get("/", h.list)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleLecturer))
			r.Post("/", h.create)
			r.Delete("/{categoryID}", h.delete)
		})
	})
}

func NewHandlers(logger *log.Logger) *Handlers {
	return &Handlers{logger}
}
