package rest

import (
	"log/slog"
	"net/http"

	"github.com/dkoval/shoply/internal/service"
	"github.com/dkoval/shoply/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	service  service.AuthService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewAuthHandler(service service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest.auth"),
	}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	var req service.RegisterDto
	if !decodeAndValidate(w, r, mLogger, h.validate, &req) {
		return
	}

	result, err := h.service.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "user registered", "user_id", result.User.ID)
	web.RespondJSON(w, mLogger, http.StatusCreated, result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	var req service.LoginDto
	if !decodeAndValidate(w, r, mLogger, h.validate, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "user logged in", "user_id", result.User.ID)
	web.RespondJSON(w, mLogger, http.StatusOK, result)
}
