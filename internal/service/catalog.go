// Package service implements the business logic behind the HTTP API.
package service

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/dkoval/shoply/internal/errors"
	"github.com/dkoval/shoply/internal/store"
	"github.com/google/uuid"
)

// CatalogService exposes the public product catalog.
type CatalogService interface {
	// FindByID retrieves a single active product.
	// Returns ErrProductNotFound if no active product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// List returns a page of active products matching the query.
	List(ctx context.Context, query ProductQuery) (*ProductPageDto, error)

	// Featured returns up to limit featured products.
	Featured(ctx context.Context, limit int32) ([]ProductDto, error)

	// Categories returns the distinct product categories with counts.
	Categories(ctx context.Context) ([]CategoryDto, error)

	// Reviews returns a page of a product's reviews, newest first.
	Reviews(ctx context.Context, productID uuid.UUID, page, limit int32) (*ReviewPageDto, error)

	// AddReview records a review for a product. Each user may review a
	// product once; the product's average rating is refreshed afterwards.
	AddReview(ctx context.Context, userID uuid.UUID, review ReviewCreateDto) (*ReviewDto, error)
}

type catalogService struct {
	products store.ProductStore
}

// NewCatalogService wires the catalog over the product store.
func NewCatalogService(products store.ProductStore) CatalogService {
	return &catalogService{products: products}
}

// ProductQuery carries the catalog listing filters. Prices are minor units.
type ProductQuery struct {
	Category *string
	Search   *string
	MinPrice *int64
	MaxPrice *int64
	SortBy   string
	Page     int32
	Limit    int32
}

// PaginationDto is the page metadata returned with every list response.
type PaginationDto struct {
	Page        int32 `json:"page"`
	Limit       int32 `json:"limit"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int32 `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

func newPagination(page, limit int32, totalItems int64) PaginationDto {
	totalPages := int32(1)
	if totalItems > 0 {
		totalPages = int32((totalItems + int64(limit) - 1) / int64(limit))
	}
	return PaginationDto{
		Page:        page,
		Limit:       limit,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// normalizePage clamps page and limit to sane values and returns the
// row offset they address.
func normalizePage(page, limit, defaultLimit int32) (int32, int32, int32) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit, (page - 1) * limit
}

type ProductDto struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Price         int64     `json:"price"`
	StockQuantity int32     `json:"stock_quantity"`
	ImageURL      *string   `json:"image_url,omitempty"`
	Rating        float64   `json:"rating"`
	IsFeatured    bool      `json:"is_featured"`
	CreatedAt     time.Time `json:"created_at"`
}

type ProductPageDto struct {
	Products   []ProductDto  `json:"products"`
	Pagination PaginationDto `json:"pagination"`
}

type CategoryDto struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type ReviewDto struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	UserID       uuid.UUID `json:"user_id"`
	UserFullName string    `json:"user_full_name,omitempty"`
	UserAvatar   *string   `json:"user_avatar,omitempty"`
	Rating       int32     `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

type ReviewPageDto struct {
	Reviews    []ReviewDto   `json:"reviews"`
	Pagination PaginationDto `json:"pagination"`
}

// ReviewCreateDto is the payload for posting a review. The product ID
// comes from the URL, not the body.
type ReviewCreateDto struct {
	ProductID uuid.UUID `json:"-"`
	Rating    int32     `json:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment" validate:"max=2000"`
}

func toProductDto(p *store.Product) ProductDto {
	return ProductDto{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		ImageURL:      p.ImageURL,
		Rating:        p.Rating,
		IsFeatured:    p.IsFeatured,
		CreatedAt:     p.CreatedAt,
	}
}

func (s *catalogService) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.products.FindActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toProductDto(product)
	return &dto, nil
}

func (s *catalogService) List(ctx context.Context, query ProductQuery) (*ProductPageDto, error) {
	sortBy := store.ProductSort(query.SortBy)
	if sortBy == "" {
		sortBy = store.SortByNewest
	}
	switch sortBy {
	case store.SortByName, store.SortByPriceAsc, store.SortByPriceDesc,
		store.SortByRating, store.SortByNewest:
	default:
		return nil, apperrors.ErrValidation
	}

	page, limit, offset := normalizePage(query.Page, query.Limit, 20)
	products, total, err := s.products.List(ctx, store.ListProductsParams{
		Category: query.Category,
		Search:   query.Search,
		MinPrice: query.MinPrice,
		MaxPrice: query.MaxPrice,
		SortBy:   sortBy,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}

	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = toProductDto(&products[i])
	}
	return &ProductPageDto{Products: dtos, Pagination: newPagination(page, limit, total)}, nil
}

func (s *catalogService) Featured(ctx context.Context, limit int32) ([]ProductDto, error) {
	products, err := s.products.FindFeatured(ctx, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = toProductDto(&products[i])
	}
	return dtos, nil
}

func (s *catalogService) Categories(ctx context.Context) ([]CategoryDto, error) {
	counts, err := s.products.Categories(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]CategoryDto, len(counts))
	for i, c := range counts {
		dtos[i] = CategoryDto{Name: c.Name, Count: c.Count}
	}
	return dtos, nil
}

func (s *catalogService) Reviews(ctx context.Context, productID uuid.UUID, page, limit int32) (*ReviewPageDto, error) {
	if _, err := s.products.FindActiveByID(ctx, productID); err != nil {
		return nil, err
	}
	page, limit, offset := normalizePage(page, limit, 10)
	reviews, total, err := s.products.FindReviews(ctx, productID, offset, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]ReviewDto, len(reviews))
	for i, r := range reviews {
		dtos[i] = ReviewDto{
			ID:           r.ID,
			ProductID:    r.ProductID,
			UserID:       r.UserID,
			UserFullName: r.UserFullName,
			UserAvatar:   r.UserAvatar,
			Rating:       r.Rating,
			Comment:      r.Comment,
			CreatedAt:    r.CreatedAt,
		}
	}
	return &ReviewPageDto{Reviews: dtos, Pagination: newPagination(page, limit, total)}, nil
}

func (s *catalogService) AddReview(ctx context.Context, userID uuid.UUID, review ReviewCreateDto) (*ReviewDto, error) {
	if _, err := s.products.FindActiveByID(ctx, review.ProductID); err != nil {
		return nil, err
	}
	created, err := s.products.CreateReview(ctx, review.ProductID, userID, review.Rating, review.Comment)
	if err != nil {
		return nil, err
	}
	// The review is in; a stale average is tolerable until the next one.
	if _, err := s.products.RecomputeRating(ctx, review.ProductID); err != nil {
		slog.WarnContext(ctx, "failed to recompute product rating",
			"product_id", review.ProductID, "error", err)
	}
	return &ReviewDto{
		ID:        created.ID,
		ProductID: created.ProductID,
		UserID:    created.UserID,
		Rating:    created.Rating,
		Comment:   created.Comment,
		CreatedAt: created.CreatedAt,
	}, nil
}
