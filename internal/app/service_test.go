package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/streamvibe/entitlement-service/internal/domain"
	"github.com/streamvibe/entitlement-service/internal/store"
	"github.com/streamvibe/entitlement-service/pkg/razorpay"
)

const testSecret = "test-key-secret"

type activationCall struct {
	userID      string
	planID      string
	periodStart time.Time
	periodEnd   time.Time
}

type completionCall struct {
	purchaseID string
	paymentID  string
	expiresAt  time.Time
}

type repoStub struct {
	sub            *domain.Subscription
	subErr         error
	markExpired    int
	markExpiredErr error

	plan    *domain.SubscriptionPlan
	planErr error

	content    *domain.PayPerViewContent
	contentErr error

	contentIDByVideo map[string]string
	videoErr         error

	pendingSub    *domain.Subscription
	pendingSubErr error
	activated     *activationCall
	activateErr   error

	pendingPurchase    *domain.Purchase
	pendingPurchaseErr error
	completed          *completionCall
	completeErr        error

	hasPurchaseFor map[string]bool
	hasPurchaseErr error
}

func (r *repoStub) GetSubscriptionByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	if r.subErr != nil {
		return nil, r.subErr
	}
	if r.sub == nil {
		return nil, store.ErrSubscriptionNotFound
	}
	sub := *r.sub
	return &sub, nil
}

func (r *repoStub) MarkSubscriptionExpired(ctx context.Context, userID string) error {
	if r.markExpiredErr != nil {
		return r.markExpiredErr
	}
	r.markExpired++
	if r.sub != nil {
		r.sub.Status = domain.SubscriptionExpired
	}
	return nil
}

func (r *repoStub) CreatePendingSubscription(ctx context.Context, userID, planID, orderID string) (*domain.Subscription, error) {
	sub := &domain.Subscription{UserID: userID, PlanID: planID, Status: domain.SubscriptionPending, RazorpayOrderID: orderID}
	r.sub = sub
	return sub, nil
}

func (r *repoStub) FindPendingSubscriptionByOrder(ctx context.Context, userID, orderID string) (*domain.Subscription, error) {
	if r.pendingSubErr != nil {
		return nil, r.pendingSubErr
	}
	if r.pendingSub == nil || r.pendingSub.RazorpayOrderID != orderID {
		return nil, store.ErrSubscriptionNotFound
	}
	return r.pendingSub, nil
}

func (r *repoStub) ActivateSubscription(ctx context.Context, userID, planID string, periodStart, periodEnd time.Time) (*domain.Subscription, error) {
	if r.activateErr != nil {
		return nil, r.activateErr
	}
	r.activated = &activationCall{userID: userID, planID: planID, periodStart: periodStart, periodEnd: periodEnd}
	return &domain.Subscription{
		UserID:             userID,
		PlanID:             planID,
		Status:             domain.SubscriptionActive,
		CurrentPeriodStart: &periodStart,
		CurrentPeriodEnd:   &periodEnd,
		ExpiresAt:          &periodEnd,
	}, nil
}

func (r *repoStub) GetPlanByID(ctx context.Context, planID string) (*domain.SubscriptionPlan, error) {
	if r.planErr != nil {
		return nil, r.planErr
	}
	if r.plan == nil || r.plan.ID != planID {
		return nil, store.ErrPlanNotFound
	}
	return r.plan, nil
}

func (r *repoStub) GetContentByID(ctx context.Context, contentID string) (*domain.PayPerViewContent, error) {
	if r.contentErr != nil {
		return nil, r.contentErr
	}
	if r.content == nil || r.content.ID != contentID {
		return nil, store.ErrContentNotFound
	}
	return r.content, nil
}

func (r *repoStub) ResolveContentIDByVideoID(ctx context.Context, videoID string) (string, error) {
	if r.videoErr != nil {
		return "", r.videoErr
	}
	if id, ok := r.contentIDByVideo[videoID]; ok {
		return id, nil
	}
	return "", store.ErrContentNotFound
}

func (r *repoStub) CreatePendingPurchase(ctx context.Context, userID, contentID, orderID string, amount int64, currency string) (*domain.Purchase, error) {
	p := &domain.Purchase{
		ID:              "purchase-1",
		UserID:          userID,
		ContentID:       contentID,
		PaymentStatus:   domain.PaymentPending,
		RazorpayOrderID: orderID,
		PurchaseAmount:  amount,
		Currency:        currency,
	}
	r.pendingPurchase = p
	return p, nil
}

func (r *repoStub) FindPendingPurchaseByOrder(ctx context.Context, userID, orderID string) (*domain.Purchase, error) {
	if r.pendingPurchaseErr != nil {
		return nil, r.pendingPurchaseErr
	}
	if r.pendingPurchase == nil || r.pendingPurchase.RazorpayOrderID != orderID {
		return nil, store.ErrPurchaseNotFound
	}
	return r.pendingPurchase, nil
}

func (r *repoStub) CompletePurchase(ctx context.Context, purchaseID, paymentID string, expiresAt time.Time) (*domain.Purchase, error) {
	if r.completeErr != nil {
		return nil, r.completeErr
	}
	r.completed = &completionCall{purchaseID: purchaseID, paymentID: paymentID, expiresAt: expiresAt}
	return &domain.Purchase{
		ID:                purchaseID,
		PaymentStatus:     domain.PaymentCompleted,
		RazorpayPaymentID: &paymentID,
		IsActive:          true,
		ExpiresAt:         &expiresAt,
	}, nil
}

func (r *repoStub) HasActivePurchase(ctx context.Context, userID, contentID string) (bool, error) {
	if r.hasPurchaseErr != nil {
		return false, r.hasPurchaseErr
	}
	return r.hasPurchaseFor[contentID], nil
}

type gatewayStub struct {
	order *razorpay.Order
	err   error
}

func (g *gatewayStub) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*razorpay.Order, error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.order != nil {
		return g.order, nil
	}
	return &razorpay.Order{ID: "order_test", Amount: amount, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

func (g *gatewayStub) KeyID() string { return "rzp_test_key" }

type publisherStub struct {
	routingKeys []string
	err         error
}

func (p *publisherStub) Publish(ctx context.Context, routingKey string, body interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.routingKeys = append(p.routingKeys, routingKey)
	return nil
}

func (p *publisherStub) Close() {}

func newTestService(repo *repoStub) (*Service, *publisherStub) {
	pub := &publisherStub{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, &gatewayStub{}, pub, logger, testSecret)
	return svc, pub
}

func timePtr(t time.Time) *time.Time { return &t }
