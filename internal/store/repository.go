/**
 * @description
 * This file implements the data access layer for the entitlement-service.
 * It holds the shared repository type, the connection pool, and the sentinel
 * errors that the service layer uses to distinguish "row missing" from a
 * store failure.
 */
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrSubscriptionNotFound is returned when no subscription row exists for
	// the user (or no pending row matches the order being verified).
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrPlanNotFound is returned when the referenced plan does not exist.
	ErrPlanNotFound = errors.New("subscription plan not found")
	// ErrPurchaseNotFound is returned when no purchase row matches.
	ErrPurchaseNotFound = errors.New("purchase not found")
	// ErrContentNotFound is returned when a content id does not exist or a
	// video has no pay-per-view mapping.
	ErrContentNotFound = errors.New("pay-per-view content not found")
)

// Repository handles database operations for subscriptions, plans and
// pay-per-view purchases.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}
