package handlers

import (
	"Lumen/internal/config"
	"Lumen/internal/middleware"
	"Lumen/internal/service"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserHandler обрабатывает регистрацию, вход и профиль пользователя.
type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
	Metrics     *middleware.Metrics
}

// NewUserHandler создаёт хендлер пользователей.
func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config, m *middleware.Metrics) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger, Config: cfg, Metrics: m}
}

// RegisterRequest тело POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse ответ POST /api/auth/login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ConsumeRequest тело POST /api/quota/consume; пустое тело означает amount=1.
type ConsumeRequest struct {
	Amount int `json:"amount"`
}

// StatusRequest тело PUT /api/admin/users/{id}/status.
type StatusRequest struct {
	IsPro bool `json:"is_pro"`
}

// AdminTokenHeader заголовок с токеном администратора.
const AdminTokenHeader = "X-Admin-Token"

// maxFormMemory лимит памяти для multipart-формы логина.
const maxFormMemory = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Register регистрация пользователя. Не выдаёт токен: клиент логинится отдельно.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Register: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		h.Metrics.AuthEvent("register", "invalid")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, service.ErrLoginTaken):
		h.Metrics.AuthEvent("register", "conflict")
		http.Error(w, "login already in use", http.StatusConflict)
		return
	case err != nil:
		h.Logger.Errorw("Register: service error", "username", req.Username, "error", err)
		h.Metrics.AuthEvent("register", "error")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.Logger.Infow("user registered", "user_id", user.ID, "username", user.Username)
	h.Metrics.AuthEvent("register", "ok")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Login принимает username/password формой (multipart или urlencoded) и выдаёт bearer token.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.Logger.Warnw("Login: invalid form", "error", err)
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		h.Metrics.AuthEvent("login", "invalid")
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.Login(r.Context(), username, password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.Metrics.AuthEvent("login", "denied")
		http.Error(w, "invalid login or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.Logger.Errorw("Login: service error", "username", username, "error", err)
		h.Metrics.AuthEvent("login", "error")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	token, err := middleware.IssueToken(user.ID, h.Config.AuthSecret, h.Config.TokenTTL)
	if err != nil {
		h.Logger.Errorw("Login: failed to issue token", "user_id", user.ID, "error", err)
		h.Metrics.AuthEvent("login", "error")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.Metrics.AuthEvent("login", "ok")
	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me возвращает профиль владельца токена.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.Metrics.AuthEvent("me", "denied")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	profile, err := h.UserService.Profile(r.Context(), userID)
	if errors.Is(err, service.ErrUserNotFound) {
		h.Metrics.AuthEvent("me", "denied")
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Errorw("Me: service error", "user_id", userID, "error", err)
		h.Metrics.AuthEvent("me", "error")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.Metrics.AuthEvent("me", "ok")
	writeJSON(w, http.StatusOK, profile)
}

// ConsumeQuota списывает квоту владельца токена.
func (h *UserHandler) ConsumeQuota(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.Metrics.AuthEvent("quota", "denied")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	req := ConsumeRequest{Amount: 1}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	profile, err := h.UserService.ConsumeQuota(r.Context(), userID, req.Amount)
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, service.ErrQuotaExhausted):
		h.Metrics.AuthEvent("quota", "exhausted")
		http.Error(w, "quota exhausted", http.StatusTooManyRequests)
		return
	case errors.Is(err, service.ErrUserNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
		return
	case err != nil:
		h.Logger.Errorw("ConsumeQuota: service error", "user_id", userID, "error", err)
		h.Metrics.AuthEvent("quota", "error")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.Metrics.AuthEvent("quota", "ok")
	writeJSON(w, http.StatusOK, profile)
}

// SetStatus меняет тариф пользователя. Доступно только с токеном администратора.
func (h *UserHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	given := r.Header.Get(AdminTokenHeader)
	if h.Config.AdminToken == "" || subtle.ConstantTimeCompare([]byte(given), []byte(h.Config.AdminToken)) != 1 {
		h.Metrics.AuthEvent("status", "denied")
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	profile, err := h.UserService.SetStatus(r.Context(), userID, req.IsPro)
	if errors.Is(err, service.ErrUserNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Errorw("SetStatus: service error", "user_id", userID, "error", err)
		h.Metrics.AuthEvent("status", "error")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.Logger.Infow("user status changed", "user_id", userID, "is_pro", req.IsPro)
	h.Metrics.AuthEvent("status", "ok")
	writeJSON(w, http.StatusOK, profile)
}
