package rest

import (
	"log/slog"
	"net/http"

	"github.com/dkoval/shoply/internal/service"
	"github.com/dkoval/shoply/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// OrderHandler serves the authenticated order workflow.
type OrderHandler struct {
	service  service.OrderService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewOrderHandler(service service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest.orders"),
	}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Place)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Post("/cancel", h.Cancel)
		})
	})
}

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	var req service.OrderCreateDto
	if !decodeAndValidate(w, r, mLogger, h.validate, &req) {
		return
	}

	order, err := h.service.Place(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "order placed",
		"order_id", order.ID, "user_id", userID, "total_amount", order.TotalAmount)
	web.RespondJSON(w, mLogger, http.StatusCreated, order)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}

	query := service.OrderQuery{
		Status: queryStringPtr(r, "status"),
		Page:   int32(web.QueryIntDefault(r, "page", 1, 1, 1<<30)),
		Limit:  int32(web.QueryIntDefault(r, "limit", 10, 1, 100)),
	}

	page, err := h.service.List(r.Context(), userID, query)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, page)
}

func (h *OrderHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}

	order, err := h.service.FindByID(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, order)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}

	order, err := h.service.Cancel(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "order cancelled", "order_id", id, "user_id", userID)
	web.RespondJSON(w, mLogger, http.StatusOK, order)
}
