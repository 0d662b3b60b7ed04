package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/bloglist/internal/service"
)

// LoginHandler serves /api/login.
type LoginHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewLoginHandler creates a LoginHandler.
func NewLoginHandler(auth *service.AuthService, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{auth: auth, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin exchanges credentials for a bearer token.
//
// HTTP: POST /api/login
// REQUEST BODY: {"username": "...", "password": "..."}
// RESPONSE:     {"token": "...", "username": "...", "name": "..."}
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMalformedBody(w, r, h.logger, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token:    result.Token,
		Username: result.Username,
		Name:     result.Name,
	})
}
