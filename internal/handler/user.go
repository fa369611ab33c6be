package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mealmafia/mealmafia-go/internal/model"
	"github.com/mealmafia/mealmafia-go/internal/service"
)

// UserHandler handles HTTP requests for user documents.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// HandleUpsert handles PUT /user requests.
func (h *UserHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	var req model.User
	if !decodeJSON(w, r, &req, false) {
		return
	}

	user, err := h.service.Upsert(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleList handles GET /users requests.
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// HandleSetRole handles PATCH /user/{id} requests.
func (h *UserHandler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	var req model.RoleRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	res, err := h.service.SetRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// HandleRole handles GET /user/role/{email} requests.
func (h *UserHandler) HandleRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.service.Role(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.RoleResponse{Role: role})
}
