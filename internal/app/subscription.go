/**
 * @description
 * Subscription state resolution. Decides whether a user's single subscription
 * row currently grants access and lazily corrects stale "active" rows whose
 * period has ended.
 */
package app

import (
	"context"
	"errors"

	"github.com/streamvibe/entitlement-service/internal/domain"
	"github.com/streamvibe/entitlement-service/internal/store"
)

// SubscriptionState is the resolver's answer: the validity boolean plus the
// full snapshot so callers can render plan details either way.
type SubscriptionState struct {
	IsSubscribed bool                         `json:"isSubscribed"`
	Subscription *domain.SubscriptionSnapshot `json:"subscription"`
}

// CheckSubscription resolves the current subscription state for a user.
// A user with no subscription row is simply not subscribed; that is not an
// error. Validity requires an access-granting status (active or trialing)
// and, when a period end is set, that it has not passed. current_period_end
// is the authoritative expiry field; expires_at is a write-through alias.
func (s *Service) CheckSubscription(ctx context.Context, userID string) (*SubscriptionState, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "userId"}
	}

	sub, err := s.repo.GetSubscriptionByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			return &SubscriptionState{IsSubscribed: false, Subscription: nil}, nil
		}
		return nil, err
	}

	now := s.now()
	valid := sub.Status.GrantsAccess() &&
		(sub.CurrentPeriodEnd == nil || now.Before(*sub.CurrentPeriodEnd))

	// Lazy expiry: an active row whose period has ended is corrected on read
	// rather than by a background job. A failed write-back does not fail the
	// check; the sweeper or the next read will retry it.
	if !valid && sub.Status == domain.SubscriptionActive {
		if err := s.repo.MarkSubscriptionExpired(ctx, userID); err != nil {
			s.logger.Error("failed to write back expired subscription status",
				"user_id", userID, "error", err)
		} else {
			sub.Status = domain.SubscriptionExpired
		}
	}

	return &SubscriptionState{
		IsSubscribed: valid,
		Subscription: sub.Snapshot(),
	}, nil
}
