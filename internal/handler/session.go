package handler

import (
	"net/http"
	"time"

	"github.com/mealmafia/mealmafia-go/internal/middleware"
	"github.com/mealmafia/mealmafia-go/internal/model"
	"github.com/mealmafia/mealmafia-go/internal/service"
)

// SessionHandler issues and clears the session cookie.
type SessionHandler struct {
	service    *service.SessionService
	production bool
}

// NewSessionHandler creates a new SessionHandler. In production the cookie is
// Secure with SameSite=None so a separately hosted client can send it.
func NewSessionHandler(svc *service.SessionService, production bool) *SessionHandler {
	return &SessionHandler{service: svc, production: production}
}

// HandleIssue handles POST /jwt requests.
func (h *SessionHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	var req model.SessionRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	token, expiresAt, err := h.service.Issue(req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, h.cookie(token, expiresAt))
	writeJSON(w, http.StatusOK, model.SuccessResponse{Success: true})
}

// HandleLogout handles POST /logout requests. The token itself stays valid
// until it expires.
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	c := h.cookie("", time.Time{})
	c.MaxAge = -1
	http.SetCookie(w, c)
	writeJSON(w, http.StatusOK, model.SuccessResponse{Success: true})
}

func (h *SessionHandler) cookie(value string, expires time.Time) *http.Cookie {
	sameSite := http.SameSiteStrictMode
	if h.production {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.production,
		SameSite: sameSite,
		Expires:  expires,
	}
}
