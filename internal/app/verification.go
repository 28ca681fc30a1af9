/**
 * @description
 * The payment verification workflow: the state machine that turns a pending
 * subscription or purchase into an active one once the gateway callback is
 * proven authentic. Steps run strictly in order; nothing is written before
 * the signature check passes.
 */
package app

import (
	"context"
	"errors"

	"github.com/streamvibe/entitlement-service/internal/domain"
	"github.com/streamvibe/entitlement-service/internal/store"
	"github.com/streamvibe/entitlement-service/pkg/events"
	"github.com/streamvibe/entitlement-service/pkg/razorpay"
)

// VerifyPaymentRequest carries the checkout callback fields. PlanID is only
// required for subscription payments.
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
	PlanID    string `json:"planId,omitempty"`
}

func (r VerifyPaymentRequest) validate(requirePlan bool) error {
	switch {
	case r.OrderID == "":
		return &ValidationError{Field: "razorpay_order_id"}
	case r.PaymentID == "":
		return &ValidationError{Field: "razorpay_payment_id"}
	case r.Signature == "":
		return &ValidationError{Field: "razorpay_signature"}
	case requirePlan && r.PlanID == "":
		return &ValidationError{Field: "planId"}
	}
	return nil
}

// VerifySubscriptionPayment transitions a pending subscription to active.
// Order of operations: field presence, signature, pending record, plan
// reference, then the single terminal write. Any failure before the write
// leaves the pending record untouched.
func (s *Service) VerifySubscriptionPayment(ctx context.Context, userID string, req VerifyPaymentRequest) (*domain.Subscription, error) {
	if err := req.validate(true); err != nil {
		return nil, err
	}

	if !razorpay.VerifySignature(req.OrderID, req.PaymentID, req.Signature, s.keySecret) {
		s.logger.Warn("subscription payment signature mismatch",
			"user_id", userID, "order_id", req.OrderID)
		return nil, ErrInvalidSignature
	}

	if _, err := s.repo.FindPendingSubscriptionByOrder(ctx, userID, req.OrderID); err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	plan, err := s.repo.GetPlanByID(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, store.ErrPlanNotFound) {
			return nil, ErrReferenceNotFound
		}
		return nil, err
	}

	periodStart := s.now()
	periodEnd := periodEndFor(domain.ParseBillingCycle(plan.BillingCycle), periodStart)

	sub, err := s.repo.ActivateSubscription(ctx, userID, plan.ID, periodStart, periodEnd)
	if err != nil {
		// The gateway payment already succeeded; this gap has to be resolved
		// out-of-band, so log everything reconciliation needs.
		s.logger.Error("verified subscription payment could not be persisted",
			"user_id", userID, "order_id", req.OrderID, "payment_id", req.PaymentID,
			"plan_id", plan.ID, "error", err)
		return nil, &PersistenceError{Op: "activate subscription", Err: err}
	}

	s.logger.Info("subscription activated",
		"user_id", userID, "plan_id", plan.ID, "order_id", req.OrderID,
		"period_end", periodEnd)

	s.publish(ctx, events.RoutingSubscriptionActivated, map[string]interface{}{
		"user_id":            userID,
		"plan_id":            plan.ID,
		"order_id":           req.OrderID,
		"payment_id":         req.PaymentID,
		"current_period_end": periodEnd,
	})

	return sub, nil
}

// VerifyPayPerViewPayment transitions a pending purchase to completed with a
// fixed 30-day access window.
func (s *Service) VerifyPayPerViewPayment(ctx context.Context, userID string, req VerifyPaymentRequest) (*domain.Purchase, error) {
	if err := req.validate(false); err != nil {
		return nil, err
	}

	if !razorpay.VerifySignature(req.OrderID, req.PaymentID, req.Signature, s.keySecret) {
		s.logger.Warn("pay-per-view payment signature mismatch",
			"user_id", userID, "order_id", req.OrderID)
		return nil, ErrInvalidSignature
	}

	pending, err := s.repo.FindPendingPurchaseByOrder(ctx, userID, req.OrderID)
	if err != nil {
		if errors.Is(err, store.ErrPurchaseNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	if _, err := s.repo.GetContentByID(ctx, pending.ContentID); err != nil {
		if errors.Is(err, store.ErrContentNotFound) {
			return nil, ErrReferenceNotFound
		}
		return nil, err
	}

	expiresAt := s.now().Add(payPerViewWindow)

	purchase, err := s.repo.CompletePurchase(ctx, pending.ID, req.PaymentID, expiresAt)
	if err != nil {
		s.logger.Error("verified pay-per-view payment could not be persisted",
			"user_id", userID, "order_id", req.OrderID, "payment_id", req.PaymentID,
			"content_id", pending.ContentID, "error", err)
		return nil, &PersistenceError{Op: "complete purchase", Err: err}
	}

	s.logger.Info("pay-per-view purchase completed",
		"user_id", userID, "content_id", pending.ContentID, "order_id", req.OrderID,
		"expires_at", expiresAt)

	s.publish(ctx, events.RoutingPayPerViewCompleted, map[string]interface{}{
		"user_id":    userID,
		"content_id": pending.ContentID,
		"order_id":   req.OrderID,
		"payment_id": req.PaymentID,
		"expires_at": expiresAt,
	})

	return purchase, nil
}

// publish emits a payment event. Publishing is best-effort: a broker failure
// must never fail a request whose state change already committed.
func (s *Service) publish(ctx context.Context, routingKey string, body interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, body); err != nil {
		s.logger.Error("failed to publish payment event",
			"routing_key", routingKey, "error", err)
	}
}
