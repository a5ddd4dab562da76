package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dkoval/shoply/internal/service"
	"github.com/dkoval/shoply/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// CartHandler serves the authenticated shopping cart.
type CartHandler struct {
	service  service.CartService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewCartHandler(service service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest.cart"),
	}
}

func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/items", h.AddItem)
		r.Delete("/", h.Clear)
		r.Route("/items/{productID}", func(r chi.Router) {
			r.Put("/", h.UpdateItem)
			r.Delete("/", h.RemoveItem)
		})
	})
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}

	cart, err := h.service.Get(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	var req service.CartAddDto
	if !decodeAndValidate(w, r, mLogger, h.validate, &req) {
		return
	}

	cart, err := h.service.AddItem(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "cart item added", "user_id", userID, "product_id", req.ProductID)
	web.RespondJSON(w, mLogger, http.StatusCreated, cart)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	productID, ok := web.ParsePathID(w, r, mLogger, "productID")
	if !ok {
		return
	}

	var req struct {
		Quantity int32 `json:"quantity" validate:"required,min=1"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}

	cart, err := h.service.UpdateItem(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	productID, ok := web.ParsePathID(w, r, mLogger, "productID")
	if !ok {
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), userID, productID)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, cart)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}

	removed, err := h.service.Clear(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "cart cleared", "user_id", userID, "removed", removed)
	web.RespondSuccess(w, mLogger, http.StatusOK, "Cart cleared", map[string]int64{"removed": removed})
}
