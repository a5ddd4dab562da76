package store

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/dkoval/shoply/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, name, description, category, price, stock_quantity, image_url, rating, is_active, is_featured, created_at, updated_at`

// PgProductStore implements ProductStore on PostgreSQL.
type PgProductStore struct {
	db *pgxpool.Pool
}

func NewPgProductStore(db *pgxpool.Pool) *PgProductStore {
	return &PgProductStore{db: db}
}

func scanProduct(row pgx.Row, p *Product) error {
	return row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price,
		&p.StockQuantity, &p.ImageURL, &p.Rating, &p.IsActive, &p.IsFeatured,
		&p.CreatedAt, &p.UpdatedAt)
}

func (s *PgProductStore) FindActiveByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var product Product
	row := s.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND is_active`, id)
	if err := scanProduct(row, &product); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &product, nil
}

func (s *PgProductStore) List(ctx context.Context, params ListProductsParams) ([]Product, int64, error) {
	where := ` WHERE is_active`
	args := []any{}
	next := func() int { return len(args) + 1 }

	if params.Category != nil {
		where += fmt.Sprintf(` AND category = $%d`, next())
		args = append(args, *params.Category)
	}
	if params.Search != nil {
		where += fmt.Sprintf(` AND (name ILIKE $%d OR description ILIKE $%d)`, next(), next())
		args = append(args, "%"+*params.Search+"%")
	}
	if params.MinPrice != nil {
		where += fmt.Sprintf(` AND price >= $%d`, next())
		args = append(args, *params.MinPrice)
	}
	if params.MaxPrice != nil {
		where += fmt.Sprintf(` AND price <= $%d`, next())
		args = append(args, *params.MaxPrice)
	}

	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var orderBy string
	switch params.SortBy {
	case SortByPriceAsc:
		orderBy = ` ORDER BY price ASC`
	case SortByPriceDesc:
		orderBy = ` ORDER BY price DESC`
	case SortByRating:
		orderBy = ` ORDER BY rating DESC`
	case SortByNewest:
		orderBy = ` ORDER BY created_at DESC`
	default:
		orderBy = ` ORDER BY name ASC`
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + orderBy +
		fmt.Sprintf(` OFFSET $%d LIMIT $%d`, next(), next()+1)
	args = append(args, params.Offset, params.Limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read products: %w", err)
	}
	return products, total, nil
}

func (s *PgProductStore) FindFeatured(ctx context.Context, limit int32) ([]Product, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE is_active AND is_featured LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find featured products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

func (s *PgProductStore) Categories(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.db.Query(ctx, `
		SELECT category, count(*)
		FROM products
		WHERE is_active AND category <> ''
		GROUP BY category
		ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return categories, nil
}

func (s *PgProductStore) FindReviews(ctx context.Context, productID uuid.UUID, offset, limit int32) ([]ReviewDetail, int64, error) {
	var total int64
	if err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM reviews WHERE product_id = $1`, productID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT r.id, r.product_id, r.user_id, r.rating, r.comment, r.created_at,
		       u.full_name, u.avatar_url
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1
		ORDER BY r.created_at DESC
		OFFSET $2 LIMIT $3`, productID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer rows.Close()

	var reviews []ReviewDetail
	for rows.Next() {
		var r ReviewDetail
		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Comment,
			&r.CreatedAt, &r.UserFullName, &r.UserAvatar); err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read reviews: %w", err)
	}
	return reviews, total, nil
}

func (s *PgProductStore) CreateReview(ctx context.Context, productID, userID uuid.UUID, rating int32, comment string) (*Review, error) {
	var review Review
	row := s.db.QueryRow(ctx, `
		INSERT INTO reviews (id, product_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, product_id, user_id, rating, comment, created_at`,
		uuid.New(), productID, userID, rating, comment)
	if err := row.Scan(&review.ID, &review.ProductID, &review.UserID, &review.Rating,
		&review.Comment, &review.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return &review, nil
}

func (s *PgProductStore) RecomputeRating(ctx context.Context, productID uuid.UUID) (float64, error) {
	var rating float64
	err := s.db.QueryRow(ctx, `
		UPDATE products
		SET rating = COALESCE((SELECT ROUND(AVG(rating)::numeric, 1) FROM reviews WHERE product_id = $1), 0)
		WHERE id = $1
		RETURNING rating`,
		productID).Scan(&rating)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrProductNotFound
		}
		return 0, fmt.Errorf("failed to recompute product rating: %w", err)
	}
	return rating, nil
}
