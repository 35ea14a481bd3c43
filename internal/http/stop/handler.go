package stop

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tripline/internal/http/respond"
	"github.com/MrJamesThe3rd/tripline/internal/identity"
	"github.com/MrJamesThe3rd/tripline/internal/stop"
)

type Handler struct {
	svc *stop.Service
}

func NewHandler(svc *stop.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/canonical", h.canonical)
	r.With(identity.Require(identity.RoleOperator)).Post("/", h.learn)
}

type canonicalResponse struct {
	Label     string `json:"label"`
	Canonical string `json:"canonical"`
}

func (h *Handler) canonical(w http.ResponseWriter, r *http.Request) {
	label := r.URL.Query().Get("label")
	if label == "" {
		http.Error(w, "label query parameter is required", http.StatusBadRequest)
		return
	}

	canonical, err := h.svc.Canonical(r.Context(), label)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, canonicalResponse{Label: label, Canonical: canonical})
}

type learnRequest struct {
	Alias     string `json:"alias" validate:"required"`
	Canonical string `json:"canonical" validate:"required"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	if err := h.svc.Learn(r.Context(), req.Alias, req.Canonical); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
