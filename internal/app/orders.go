/**
 * @description
 * Checkout order creation. Creates a gateway order for a plan or a
 * pay-per-view content item and records the matching pending row so the
 * later verification callback has something to complete.
 */
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/streamvibe/entitlement-service/internal/store"
)

// OrderDetails is what the client-side checkout widget needs to open.
type OrderDetails struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
}

// CreateSubscriptionOrder creates a gateway order for a plan and upserts the
// user's subscription row as pending.
func (s *Service) CreateSubscriptionOrder(ctx context.Context, userID, planID string) (*OrderDetails, error) {
	if planID == "" {
		return nil, &ValidationError{Field: "planId"}
	}

	plan, err := s.repo.GetPlanByID(ctx, planID)
	if err != nil {
		if errors.Is(err, store.ErrPlanNotFound) {
			return nil, ErrReferenceNotFound
		}
		return nil, err
	}

	receipt := fmt.Sprintf("sub_%s", uuid.NewString())
	order, err := s.gateway.CreateOrder(ctx, plan.Price, plan.Currency, receipt)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	if _, err := s.repo.CreatePendingSubscription(ctx, userID, planID, order.ID); err != nil {
		return nil, err
	}

	s.logger.Info("subscription order created",
		"user_id", userID, "plan_id", planID, "order_id", order.ID)

	return &OrderDetails{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    s.gateway.KeyID(),
	}, nil
}

// CreatePayPerViewOrder creates a gateway order for a content item and
// records a pending purchase row.
func (s *Service) CreatePayPerViewOrder(ctx context.Context, userID, contentID string) (*OrderDetails, error) {
	if contentID == "" {
		return nil, &ValidationError{Field: "contentId"}
	}

	content, err := s.repo.GetContentByID(ctx, contentID)
	if err != nil {
		if errors.Is(err, store.ErrContentNotFound) {
			return nil, ErrReferenceNotFound
		}
		return nil, err
	}

	receipt := fmt.Sprintf("ppv_%s", uuid.NewString())
	order, err := s.gateway.CreateOrder(ctx, content.Price, content.Currency, receipt)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	if _, err := s.repo.CreatePendingPurchase(ctx, userID, contentID, order.ID, content.Price, content.Currency); err != nil {
		return nil, err
	}

	s.logger.Info("pay-per-view order created",
		"user_id", userID, "content_id", contentID, "order_id", order.ID)

	return &OrderDetails{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    s.gateway.KeyID(),
	}, nil
}
