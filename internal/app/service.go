/**
 * @description
 * This file contains the core service type for the entitlement-service and
 * the collaborator interfaces it depends on. The Service layer orchestrates
 * data from the repository, the payment gateway, and the event producer, and
 * applies the access rules.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/streamvibe/entitlement-service/internal/domain"
	"github.com/streamvibe/entitlement-service/pkg/events"
	"github.com/streamvibe/entitlement-service/pkg/razorpay"
)

// Repository defines the interface for database operations that the service needs.
type Repository interface {
	GetSubscriptionByUserID(ctx context.Context, userID string) (*domain.Subscription, error)
	MarkSubscriptionExpired(ctx context.Context, userID string) error
	CreatePendingSubscription(ctx context.Context, userID, planID, orderID string) (*domain.Subscription, error)
	FindPendingSubscriptionByOrder(ctx context.Context, userID, orderID string) (*domain.Subscription, error)
	ActivateSubscription(ctx context.Context, userID, planID string, periodStart, periodEnd time.Time) (*domain.Subscription, error)
	GetPlanByID(ctx context.Context, planID string) (*domain.SubscriptionPlan, error)

	GetContentByID(ctx context.Context, contentID string) (*domain.PayPerViewContent, error)
	ResolveContentIDByVideoID(ctx context.Context, videoID string) (string, error)
	CreatePendingPurchase(ctx context.Context, userID, contentID, orderID string, amount int64, currency string) (*domain.Purchase, error)
	FindPendingPurchaseByOrder(ctx context.Context, userID, orderID string) (*domain.Purchase, error)
	CompletePurchase(ctx context.Context, purchaseID, paymentID string, expiresAt time.Time) (*domain.Purchase, error)
	HasActivePurchase(ctx context.Context, userID, contentID string) (bool, error)
}

// Gateway defines the interface for the payment gateway operations the
// service needs when creating checkout orders.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*razorpay.Order, error)
	KeyID() string
}

// Service provides the entitlement and payment business logic.
type Service struct {
	repo      Repository
	gateway   Gateway
	publisher events.Publisher
	logger    *slog.Logger
	keySecret string

	// now is injectable for deterministic period arithmetic in tests.
	now func() time.Time
}

// NewService creates a new entitlement service.
func NewService(repo Repository, gateway Gateway, publisher events.Publisher, logger *slog.Logger, keySecret string) *Service {
	return &Service{
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
		logger:    logger,
		keySecret: keySecret,
		now:       time.Now,
	}
}
