package rest

import (
	"log/slog"
	"net/http"

	"github.com/dkoval/shoply/internal/service"
	"github.com/dkoval/shoply/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// PaymentHandler serves the simulated payment intent flow.
type PaymentHandler struct {
	service  service.PaymentService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewPaymentHandler(service service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest.payments"),
	}
}

func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Post("/intents", h.CreateIntent)
		r.Post("/intents/{id}/confirm", h.Confirm)
	})
}

func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	var req service.PaymentIntentCreateDto
	if !decodeAndValidate(w, r, mLogger, h.validate, &req) {
		return
	}

	intent, err := h.service.CreateIntent(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "payment intent created",
		"intent_id", intent.ID, "order_id", req.OrderID, "user_id", userID)
	web.RespondJSON(w, mLogger, http.StatusCreated, intent)
}

func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	intentID := chi.URLParam(r, "id")
	if intentID == "" {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Missing intent ID")
		return
	}

	intent, err := h.service.Confirm(r.Context(), userID, intentID)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "payment intent confirmed", "intent_id", intentID, "user_id", userID)
	web.RespondJSON(w, mLogger, http.StatusOK, intent)
}
