package domain

import (
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Validation errors
	ErrInvalidCategory = errors.New("category must be one of uniform, book, others")
	ErrInvalidQuantity = errors.New("quantity must be between 0 and 1000000000")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrInvalidName     = errors.New("name must not be empty")

	// Accounting errors
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidAmount     = errors.New("quantity must be positive and amount must not be negative")
	ErrStockLimit        = errors.New("movement would push stock past the quantity limit")

	// Catalog lifecycle errors
	ErrProductReferenced = errors.New("product is referenced by sales or purchases")
	ErrQuantityLocked    = errors.New("quantity is managed by recorded sales and purchases")

	// Auth errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError reports which product field failed validation.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// AccountingError reports a rejected sale or purchase.
type AccountingError struct {
	Op        string // "sale" or "purchase"
	ProductID int64
	Err       error
}

func (e *AccountingError) Error() string {
	return fmt.Sprintf("%s for product %d: %v", e.Op, e.ProductID, e.Err)
}

func (e *AccountingError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a product validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
