package upload

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kmcheng/discusshub-backend/middleware"
	"github.com/kmcheng/discusshub-backend/storage"
)

const maxUploadSize = 20 << 20

type Handlers struct {
	logger *log.Logger
}

// create stores the bytes with the external host and echoes the reference
// the client then attaches to a file message.
func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	f, header, err := r.FormFile("file")
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer f.Close()

	url, err := storage.Upload(r.Context(), f, header.Filename)
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(struct {
		URL  string `json:"url"`
		Name string `json:"name"`
		Size int64  `json:"size"`
	}{url, header.Filename, header.Size})
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticator(h.logger))
		r.Post("/uploads", h.create)
	})
}

func NewHandlers(logger *log.Logger) *Handlers {
	return &Handlers{logger}
}
