package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/bloglist/internal/service"
)

// UserHandler serves /api/users.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// HandleRegister creates an account.
//
// HTTP: POST /api/users
// REQUEST BODY: {"username": "...", "name": "...", "password": "..."}
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMalformedBody(w, r, h.logger, err)
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Name, req.Password)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, projectUser(user, nil))
}

// HandleList returns every user with the blogs they created.
//
// HTTP: GET /api/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, projectUser(&users[i].User, users[i].Blogs))
	}
	writeJSON(w, http.StatusOK, out)
}
