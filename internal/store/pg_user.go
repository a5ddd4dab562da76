package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/dkoval/shoply/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	userColumns = `id, email, password_hash, full_name, phone, avatar_url, is_active,
		created_at, updated_at`
	addressColumns = `id, user_id, label, full_name, phone, line1, line2, city, state,
		postal_code, country, is_default, created_at, updated_at`

	uniqueViolationCode = "23505"
)

// PgUserStore implements UserStore on PostgreSQL.
type PgUserStore struct {
	db *pgxpool.Pool
}

func NewPgUserStore(db *pgxpool.Pool) *PgUserStore {
	return &PgUserStore{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func scanUser(row pgx.Row, u *User) error {
	return row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone,
		&u.AvatarURL, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
}

func scanAddress(row pgx.Row, a *Address) error {
	return row.Scan(&a.ID, &a.UserID, &a.Label, &a.FullName, &a.Phone, &a.Line1,
		&a.Line2, &a.City, &a.State, &a.PostalCode, &a.Country, &a.IsDefault,
		&a.CreatedAt, &a.UpdatedAt)
}

func (s *PgUserStore) Create(ctx context.Context, email, passwordHash, fullName string) (*User, error) {
	var user User
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, full_name)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		uuid.New(), strings.ToLower(email), passwordHash, fullName)
	if err := scanUser(row, &user); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (s *PgUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	row := s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND is_active`,
		strings.ToLower(email))
	if err := scanUser(row, &user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

func (s *PgUserStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	row := s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND is_active`, id)
	if err := scanUser(row, &user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (s *PgUserStore) UpdateProfile(ctx context.Context, id uuid.UUID, params UpdateProfileParams) (*User, error) {
	var user User
	row := s.db.QueryRow(ctx, `
		UPDATE users
		SET full_name = COALESCE($2, full_name),
		    phone = COALESCE($3, phone),
		    updated_at = now()
		WHERE id = $1 AND is_active
		RETURNING `+userColumns,
		id, params.FullName, params.Phone)
	if err := scanUser(row, &user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &user, nil
}

func (s *PgUserStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1 AND is_active`,
		id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (s *PgUserStore) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL *string) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE users SET avatar_url = $2, updated_at = now() WHERE id = $1 AND is_active`,
		id, avatarURL)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (s *PgUserStore) ListAddresses(ctx context.Context, userID uuid.UUID) ([]Address, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+addressColumns+` FROM addresses
		 WHERE user_id = $1
		 ORDER BY is_default DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer rows.Close()

	var addresses []Address
	for rows.Next() {
		var addr Address
		if err := scanAddress(rows, &addr); err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, addr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read addresses: %w", err)
	}
	return addresses, nil
}

func (s *PgUserStore) FindAddress(ctx context.Context, id, userID uuid.UUID) (*Address, error) {
	var addr Address
	row := s.db.QueryRow(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err := scanAddress(row, &addr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to find address: %w", err)
	}
	return &addr, nil
}

func (s *PgUserStore) CreateAddress(ctx context.Context, params CreateAddressParams) (*Address, error) {
	var addr Address
	row := s.db.QueryRow(ctx, `
		INSERT INTO addresses (id, user_id, label, full_name, phone, line1, line2,
			city, state, postal_code, country, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+addressColumns,
		uuid.New(), params.UserID, params.Label, params.FullName, params.Phone,
		params.Line1, params.Line2, params.City, params.State, params.PostalCode,
		params.Country, params.IsDefault)
	if err := scanAddress(row, &addr); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return &addr, nil
}

func (s *PgUserStore) UpdateAddress(ctx context.Context, params UpdateAddressParams) (*Address, error) {
	var addr Address
	row := s.db.QueryRow(ctx, `
		UPDATE addresses
		SET label = COALESCE($2, label),
		    full_name = COALESCE($3, full_name),
		    phone = COALESCE($4, phone),
		    line1 = COALESCE($5, line1),
		    line2 = COALESCE($6, line2),
		    city = COALESCE($7, city),
		    state = COALESCE($8, state),
		    postal_code = COALESCE($9, postal_code),
		    country = COALESCE($10, country),
		    is_default = COALESCE($11, is_default),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+addressColumns,
		params.ID, params.Label, params.FullName, params.Phone, params.Line1,
		params.Line2, params.City, params.State, params.PostalCode,
		params.Country, params.IsDefault)
	if err := scanAddress(row, &addr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	return &addr, nil
}

func (s *PgUserStore) DeleteAddress(ctx context.Context, id, userID uuid.UUID) error {
	ct, err := s.db.Exec(ctx,
		`DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrAddressNotFound
	}
	return nil
}

func (s *PgUserStore) ClearDefaultAddress(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE addresses SET is_default = false, updated_at = now()
		 WHERE user_id = $1 AND is_default`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear default address: %w", err)
	}
	return nil
}

func (s *PgUserStore) ListWishlist(ctx context.Context, userID uuid.UUID) ([]WishlistEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT w.id, w.user_id, w.product_id, w.created_at,
		       p.id, p.name, p.description, p.category, p.price, p.stock_quantity,
		       p.image_url, p.rating, p.is_active, p.is_featured, p.created_at, p.updated_at
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	defer rows.Close()

	var entries []WishlistEntry
	for rows.Next() {
		var e WishlistEntry
		p := &e.Product
		if err := rows.Scan(&e.ID, &e.UserID, &e.ProductID, &e.CreatedAt,
			&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.StockQuantity,
			&p.ImageURL, &p.Rating, &p.IsActive, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read wishlist: %w", err)
	}
	return entries, nil
}

func (s *PgUserStore) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) (*WishlistItem, error) {
	var item WishlistItem
	row := s.db.QueryRow(ctx, `
		INSERT INTO wishlist_items (id, user_id, product_id)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, product_id, created_at`,
		uuid.New(), userID, productID)
	if err := row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrAlreadyInWishlist
		}
		return nil, fmt.Errorf("failed to add to wishlist: %w", err)
	}
	return &item, nil
}

func (s *PgUserStore) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	ct, err := s.db.Exec(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrWishlistItemNotFound
	}
	return nil
}

func (s *PgUserStore) InWishlist(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM wishlist_items WHERE user_id = $1 AND product_id = $2)`,
		userID, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check wishlist: %w", err)
	}
	return exists, nil
}
