/**
 * @description
 * Pay-per-view queries: the content catalog, the video-to-content lookup
 * join, and the purchase lifecycle (pending on order creation, completed on
 * verified payment).
 */
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/streamvibe/entitlement-service/internal/domain"
)

const purchaseColumns = `id, user_id, content_id, payment_status, razorpay_order_id, razorpay_payment_id, is_active, expires_at, purchase_amount, currency, updated_at`

func scanPurchase(row pgx.Row) (*domain.Purchase, error) {
	var p domain.Purchase
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.ContentID,
		&p.PaymentStatus,
		&p.RazorpayOrderID,
		&p.RazorpayPaymentID,
		&p.IsActive,
		&p.ExpiresAt,
		&p.PurchaseAmount,
		&p.Currency,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetContentByID retrieves one pay-per-view catalog entry.
func (r *Repository) GetContentByID(ctx context.Context, contentID string) (*domain.PayPerViewContent, error) {
	var c domain.PayPerViewContent
	query := `
        SELECT id, video_id, title, price, currency
        FROM pay_per_view_content
        WHERE id = $1
    `
	err := r.db.QueryRow(ctx, query, contentID).Scan(&c.ID, &c.VideoID, &c.Title, &c.Price, &c.Currency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ResolveContentIDByVideoID maps a video to its pay-per-view content entry.
// ErrContentNotFound means the video is simply not sold pay-per-view.
func (r *Repository) ResolveContentIDByVideoID(ctx context.Context, videoID string) (string, error) {
	var contentID string
	query := `
        SELECT id
        FROM pay_per_view_content
        WHERE video_id = $1
    `
	err := r.db.QueryRow(ctx, query, videoID).Scan(&contentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrContentNotFound
		}
		return "", err
	}
	return contentID, nil
}

// CreatePendingPurchase records a direct-payment order before verification.
func (r *Repository) CreatePendingPurchase(ctx context.Context, userID, contentID, orderID string, amount int64, currency string) (*domain.Purchase, error) {
	query := `
        INSERT INTO purchases (user_id, content_id, payment_status, razorpay_order_id, is_active, purchase_amount, currency)
        VALUES ($1, $2, 'pending', $3, FALSE, $4, $5)
        RETURNING ` + purchaseColumns + `
    `
	return scanPurchase(r.db.QueryRow(ctx, query, userID, contentID, orderID, amount, currency))
}

// FindPendingPurchaseByOrder looks up the pending row a verification callback
// refers to. At most one pending row exists per (user, order) pair.
func (r *Repository) FindPendingPurchaseByOrder(ctx context.Context, userID, orderID string) (*domain.Purchase, error) {
	query := `
        SELECT ` + purchaseColumns + `
        FROM purchases
        WHERE user_id = $1 AND razorpay_order_id = $2 AND payment_status = 'pending'
    `
	return scanPurchase(r.db.QueryRow(ctx, query, userID, orderID))
}

// CompletePurchase marks a verified purchase completed and active with its
// access window. Completed rows never transition again.
func (r *Repository) CompletePurchase(ctx context.Context, purchaseID, paymentID string, expiresAt time.Time) (*domain.Purchase, error) {
	query := `
        UPDATE purchases
        SET payment_status = 'completed',
            razorpay_payment_id = $2,
            is_active = TRUE,
            expires_at = $3,
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + purchaseColumns + `
    `
	return scanPurchase(r.db.QueryRow(ctx, query, purchaseID, paymentID, expiresAt))
}

// HasActivePurchase reports whether the user holds a completed, active,
// unexpired purchase for the content.
func (r *Repository) HasActivePurchase(ctx context.Context, userID, contentID string) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS (
            SELECT 1
            FROM purchases
            WHERE user_id = $1
              AND content_id = $2
              AND payment_status = 'completed'
              AND is_active = TRUE
              AND (expires_at IS NULL OR expires_at > NOW())
        )
    `
	err := r.db.QueryRow(ctx, query, userID, contentID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// DeactivateExpiredPurchases bulk-deactivates purchases whose window has
// passed. Run from the scheduled sweeper.
func (r *Repository) DeactivateExpiredPurchases(ctx context.Context) (int64, error) {
	query := `
        UPDATE purchases
        SET is_active = FALSE, updated_at = NOW()
        WHERE is_active = TRUE AND expires_at IS NOT NULL AND expires_at < NOW()
    `
	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
