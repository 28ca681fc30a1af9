/**
 * @description
 * The entitlement decision service. Composes the subscription and purchase
 * resolvers into a single access decision: either path granting access is
 * sufficient, and a failure in one resolver never blocks the other from
 * granting access.
 */
package app

import (
	"context"

	"github.com/streamvibe/entitlement-service/internal/domain"
)

// Decide computes the access decision for a user against an optional piece of
// content. An explicit contentID wins over videoID derivation; with neither,
// only the subscription path is consulted. The decision is recomputed fresh
// on every call and has no side effects beyond the resolver's lazy expiry
// write-back, so it is safe to call repeatedly and concurrently.
func (s *Service) Decide(ctx context.Context, userID, videoID, contentID string) (*domain.EntitlementDecision, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "userId"}
	}

	if contentID == "" && videoID != "" {
		resolved, err := s.ResolveContentID(ctx, videoID)
		if err != nil {
			// Degrade the purchase path rather than failing the decision; a
			// subscription can still grant access.
			s.logger.Error("content lookup failed during entitlement decision",
				"user_id", userID, "video_id", videoID, "error", err)
		} else {
			contentID = resolved
		}
	}

	decision := &domain.EntitlementDecision{ContentID: contentID}

	subState, err := s.CheckSubscription(ctx, userID)
	if err != nil {
		s.logger.Error("subscription resolution failed during entitlement decision",
			"user_id", userID, "error", err)
	} else {
		decision.SubscriptionActive = subState.IsSubscribed
		decision.Subscription = subState.Subscription
	}

	if contentID != "" {
		purchased, err := s.HasPurchaseAccess(ctx, userID, contentID)
		if err != nil {
			s.logger.Error("purchase resolution failed during entitlement decision",
				"user_id", userID, "content_id", contentID, "error", err)
		} else {
			decision.PayPerViewAccess = purchased
		}
	}

	decision.HasAccess = decision.SubscriptionActive || decision.PayPerViewAccess
	return decision, nil
}
