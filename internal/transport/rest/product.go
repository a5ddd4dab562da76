package rest

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dkoval/shoply/internal/service"
	"github.com/dkoval/shoply/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// ProductHandler serves the public catalog plus authenticated reviews.
type ProductHandler struct {
	service  service.CatalogService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewProductHandler(service service.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest.products"),
	}
}

// RegisterPublicRoutes mounts the endpoints that need no authentication.
func (h *ProductHandler) RegisterPublicRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/featured", h.Featured)
		r.Get("/categories", h.Categories)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Get("/reviews", h.Reviews)
		})
	})
}

// RegisterProtectedRoutes mounts the endpoints behind authentication.
func (h *ProductHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/products/{id}/reviews", h.AddReview)
}

func queryInt64Ptr(r *http.Request, key string) (*int64, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, true
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return nil, false
	}
	return &value, true
}

func queryStringPtr(r *http.Request, key string) *string {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	return &raw
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)

	minPrice, ok := queryInt64Ptr(r, "min_price")
	if !ok {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid min_price")
		return
	}
	maxPrice, ok := queryInt64Ptr(r, "max_price")
	if !ok {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid max_price")
		return
	}

	query := service.ProductQuery{
		Category: queryStringPtr(r, "category"),
		Search:   queryStringPtr(r, "search"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		SortBy:   r.URL.Query().Get("sort"),
		Page:     int32(web.QueryIntDefault(r, "page", 1, 1, 1<<30)),
		Limit:    int32(web.QueryIntDefault(r, "limit", 20, 1, 100)),
	}

	page, err := h.service.List(r.Context(), query)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, page)
}

func (h *ProductHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	product, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, product)
}

func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	limit := int32(web.QueryIntDefault(r, "limit", 8, 1, 50))

	products, err := h.service.Featured(r.Context(), limit)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, products)
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)

	categories, err := h.service.Categories(r.Context())
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, categories)
}

func (h *ProductHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	page := int32(web.QueryIntDefault(r, "page", 1, 1, 1<<30))
	limit := int32(web.QueryIntDefault(r, "limit", 10, 1, 100))

	reviews, err := h.service.Reviews(r.Context(), id, page, limit)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, reviews)
}

func (h *ProductHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}

	var req service.ReviewCreateDto
	if !decodeAndValidate(w, r, mLogger, h.validate, &req) {
		return
	}
	req.ProductID = id

	review, err := h.service.AddReview(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "review created", "product_id", id, "user_id", userID)
	web.RespondJSON(w, mLogger, http.StatusCreated, review)
}
