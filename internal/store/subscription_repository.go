/**
 * @description
 * Subscription queries. The subscriptions table is keyed by user_id with
 * upsert semantics, so every write path goes through ON CONFLICT (user_id).
 */
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/streamvibe/entitlement-service/internal/domain"
)

const subscriptionColumns = `id, user_id, plan_id, status, current_period_start, current_period_end, expires_at, COALESCE(razorpay_order_id, ''), updated_at`

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.PlanID,
		&sub.Status,
		&sub.CurrentPeriodStart,
		&sub.CurrentPeriodEnd,
		&sub.ExpiresAt,
		&sub.RazorpayOrderID,
		&sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// GetSubscriptionByUserID retrieves the single subscription row for a user.
func (r *Repository) GetSubscriptionByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	query := `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions
        WHERE user_id = $1
    `
	return scanSubscription(r.db.QueryRow(ctx, query, userID))
}

// MarkSubscriptionExpired flips an active subscription to expired. Used by
// the resolver's lazy write-back when a lapsed row is read.
func (r *Repository) MarkSubscriptionExpired(ctx context.Context, userID string) error {
	query := `
        UPDATE subscriptions
        SET status = 'expired', updated_at = NOW()
        WHERE user_id = $1 AND status = 'active'
    `
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

// CreatePendingSubscription records a checkout order before payment. The
// upsert keeps the one-row-per-user invariant if the user retries checkout.
func (r *Repository) CreatePendingSubscription(ctx context.Context, userID, planID, orderID string) (*domain.Subscription, error) {
	query := `
        INSERT INTO subscriptions (user_id, plan_id, status, razorpay_order_id)
        VALUES ($1, $2, 'pending', $3)
        ON CONFLICT (user_id) DO UPDATE SET
            plan_id = EXCLUDED.plan_id,
            status = 'pending',
            razorpay_order_id = EXCLUDED.razorpay_order_id,
            updated_at = NOW()
        RETURNING ` + subscriptionColumns + `
    `
	return scanSubscription(r.db.QueryRow(ctx, query, userID, planID, orderID))
}

// FindPendingSubscriptionByOrder looks up the pending row a verification
// callback refers to. A completed or mismatched order yields no row.
func (r *Repository) FindPendingSubscriptionByOrder(ctx context.Context, userID, orderID string) (*domain.Subscription, error) {
	query := `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions
        WHERE user_id = $1 AND razorpay_order_id = $2 AND status = 'pending'
    `
	return scanSubscription(r.db.QueryRow(ctx, query, userID, orderID))
}

// ActivateSubscription transitions a verified subscription to active with the
// computed period bounds. expires_at is written through as an alias of
// current_period_end for older readers.
func (r *Repository) ActivateSubscription(ctx context.Context, userID, planID string, periodStart, periodEnd time.Time) (*domain.Subscription, error) {
	query := `
        UPDATE subscriptions
        SET status = 'active',
            plan_id = $2,
            current_period_start = $3,
            current_period_end = $4,
            expires_at = $4,
            updated_at = NOW()
        WHERE user_id = $1
        RETURNING ` + subscriptionColumns + `
    `
	return scanSubscription(r.db.QueryRow(ctx, query, userID, planID, periodStart, periodEnd))
}

// ExpireLapsedSubscriptions bulk-expires active rows whose period has ended.
// Complements the read-path write-back; run from the scheduled sweeper.
func (r *Repository) ExpireLapsedSubscriptions(ctx context.Context) (int64, error) {
	query := `
        UPDATE subscriptions
        SET status = 'expired', updated_at = NOW()
        WHERE status = 'active' AND current_period_end IS NOT NULL AND current_period_end < NOW()
    `
	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// GetPlanByID retrieves one plan from the immutable reference table.
func (r *Repository) GetPlanByID(ctx context.Context, planID string) (*domain.SubscriptionPlan, error) {
	var plan domain.SubscriptionPlan
	query := `
        SELECT id, name, COALESCE(description, ''), price, currency, billing_cycle
        FROM subscription_plans
        WHERE id = $1
    `
	err := r.db.QueryRow(ctx, query, planID).Scan(
		&plan.ID,
		&plan.Name,
		&plan.Description,
		&plan.Price,
		&plan.Currency,
		&plan.BillingCycle,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}
