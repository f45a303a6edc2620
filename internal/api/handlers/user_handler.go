package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/botivate/coupon-service/internal/service"
)

type LoginRequest struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

type AddUserRequest struct {
	Name     string `json:"name"`
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserHandler serves login and account management.
type UserHandler struct {
	svc    *service.AuthService
	logger *zap.Logger
}

func NewUserHandler(svc *service.AuthService, logger *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// Login handles POST /auth/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.LoginID) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "login id and password are required")
		return
	}

	session, err := h.svc.Login(r.Context(), req.LoginID, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		h.logger.Error("login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// ListUsers handles GET /users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("user list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load users")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// AddUser handles POST /users.
func (h *UserHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req AddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.LoginID) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, login id and password are required")
		return
	}

	user, err := h.svc.AddUser(r.Context(), req.Name, req.LoginID, req.Password, req.Role)
	switch {
	case errors.Is(err, service.ErrLoginIDTaken):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.logger.Error("user add failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to add user")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}
