// Package errors provides the domain error sentinels shared by services and handlers.
package errors

import (
	"errors"
	"fmt"
)

// Base kinds. Every domain sentinel below wraps exactly one kind, so
// handlers can map an error to an HTTP status with a single errors.Is
// check against the kind, while services still match specific sentinels.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("unauthorized")
)

var ErrEmptyOrder = fmt.Errorf("order must contain at least one item: %w", ErrValidation)
var ErrInsufficientStock = fmt.Errorf("insufficient stock: %w", ErrConflict)
var ErrOrderNotCancellable = fmt.Errorf("order cannot be cancelled: %w", ErrConflict)

var ErrOrderNotFound = fmt.Errorf("order %w", ErrNotFound)
var ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
var ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
var ErrAddressNotFound = fmt.Errorf("address %w", ErrNotFound)
var ErrCartItemNotFound = fmt.Errorf("cart item %w", ErrNotFound)
var ErrWishlistItemNotFound = fmt.Errorf("wishlist item %w", ErrNotFound)
var ErrPaymentNotFound = fmt.Errorf("payment intent %w", ErrNotFound)

var ErrEmailTaken = fmt.Errorf("email already registered: %w", ErrConflict)
var ErrAlreadyInWishlist = fmt.Errorf("product already in wishlist: %w", ErrConflict)
var ErrAlreadyReviewed = fmt.Errorf("product already reviewed: %w", ErrConflict)
var ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", ErrAuth)
var ErrAccessDenied = fmt.Errorf("access denied: %w", ErrAuth)

var ErrFileTooLarge = fmt.Errorf("file too large: %w", ErrValidation)
var ErrInvalidFileType = fmt.Errorf("invalid file type: %w", ErrValidation)
var ErrInvalidImage = fmt.Errorf("invalid image file: %w", ErrValidation)

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")
var ErrTransactionRollback = errors.New("failed to rollback transaction")
