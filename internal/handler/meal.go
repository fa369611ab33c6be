package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mealmafia/mealmafia-go/internal/model"
	"github.com/mealmafia/mealmafia-go/internal/service"
)

// MealHandler handles HTTP requests for meal documents.
type MealHandler struct {
	service *service.MealService
}

// NewMealHandler creates a new MealHandler.
func NewMealHandler(svc *service.MealService) *MealHandler {
	return &MealHandler{service: svc}
}

// HandleList handles GET /meals requests.
func (h *MealHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	order := model.ParseSortOrder(r.URL.Query().Get("sort"))

	meals, err := h.service.List(r.Context(), order)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, meals)
}

// HandleGet handles GET /meals/{id} requests.
func (h *MealHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	meal, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, meal)
}

// HandleCreate handles POST /meals requests.
func (h *MealHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.Meal
	if !decodeJSON(w, r, &req, false) {
		return
	}

	res, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// HandleDelete handles DELETE /meal/{id} requests.
func (h *MealHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
