package handler

import (
	"net/http"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/transport/rest/middleware"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct{}

// NewAuthHandler creates a new auth handler
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Me handles GET /v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"userId": middleware.GetUserID(r.Context()),
	})
}
