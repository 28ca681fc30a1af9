/**
 * @description
 * This file defines the subscription domain models for the entitlement-service.
 * It includes the Subscription struct that maps to the database table, the
 * immutable SubscriptionPlan reference data, and the closed enumeration types
 * for subscription status and billing cycle.
 */
package domain

import "time"

// SubscriptionStatus is the closed set of states a subscription row can be in.
type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "pending"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionTrialing  SubscriptionStatus = "trialing"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// GrantsAccess reports whether the status alone (ignoring period bounds)
// entitles the user to subscription content.
func (s SubscriptionStatus) GrantsAccess() bool {
	return s == SubscriptionActive || s == SubscriptionTrialing
}

// BillingCycle determines how far a verified payment extends a subscription.
type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
	// BillingLifetime is the explicit case for any plan whose cycle is neither
	// monthly nor yearly; it is modelled as a 100-year window.
	BillingLifetime BillingCycle = "lifetime"
)

// ParseBillingCycle maps the stored cycle string onto a closed variant.
// Unknown values collapse to the lifetime case rather than an error so that
// legacy one-time plans keep working.
func ParseBillingCycle(raw string) BillingCycle {
	switch BillingCycle(raw) {
	case BillingMonthly:
		return BillingMonthly
	case BillingYearly:
		return BillingYearly
	default:
		return BillingLifetime
	}
}

// Subscription represents a user's single subscription row. The table is
// keyed by user_id with upsert semantics, so at most one row exists per user.
type Subscription struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"user_id"`
	PlanID             string             `json:"plan_id"`
	Status             SubscriptionStatus `json:"status"`
	CurrentPeriodStart *time.Time         `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time         `json:"current_period_end,omitempty"`
	// ExpiresAt mirrors CurrentPeriodEnd on every write. It is kept for older
	// clients that still read it; validity checks never consult it.
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	RazorpayOrderID string     `json:"razorpay_order_id,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// SubscriptionPlan is immutable reference data describing a purchasable plan.
type SubscriptionPlan struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        int64  `json:"price"` // minor currency units
	Currency     string `json:"currency"`
	BillingCycle string `json:"billing_cycle"`
}

// SubscriptionSnapshot is the DTO returned to clients checking their
// subscription. Validity is computed by the resolver, not stored.
type SubscriptionSnapshot struct {
	Status             SubscriptionStatus `json:"status"`
	PlanID             string             `json:"plan_id"`
	CurrentPeriodStart *time.Time         `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time         `json:"current_period_end,omitempty"`
	ExpiresAt          *time.Time         `json:"expires_at,omitempty"`
}

// Snapshot converts a subscription row into its client-facing view.
func (s *Subscription) Snapshot() *SubscriptionSnapshot {
	if s == nil {
		return nil
	}
	return &SubscriptionSnapshot{
		Status:             s.Status,
		PlanID:             s.PlanID,
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		ExpiresAt:          s.ExpiresAt,
	}
}
