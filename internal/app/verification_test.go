package app

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/streamvibe/entitlement-service/internal/domain"
	"github.com/streamvibe/entitlement-service/pkg/events"
)

func signCallback(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func pendingSubscriptionRepo() *repoStub {
	return &repoStub{
		pendingSub: &domain.Subscription{
			UserID:          "user-1",
			PlanID:          "plan-monthly",
			Status:          domain.SubscriptionPending,
			RazorpayOrderID: "order_abc",
		},
		plan: &domain.SubscriptionPlan{
			ID:           "plan-monthly",
			Name:         "Monthly",
			Price:        49900,
			Currency:     "INR",
			BillingCycle: "monthly",
		},
	}
}

func validSubscriptionCallback() VerifyPaymentRequest {
	return VerifyPaymentRequest{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: signCallback("order_abc", "pay_xyz", testSecret),
		PlanID:    "plan-monthly",
	}
}

func TestVerifySubscriptionPayment_MissingFields(t *testing.T) {
	repo := pendingSubscriptionRepo()
	svc, _ := newTestService(repo)

	cases := []struct {
		name   string
		mutate func(*VerifyPaymentRequest)
	}{
		{"order id", func(r *VerifyPaymentRequest) { r.OrderID = "" }},
		{"payment id", func(r *VerifyPaymentRequest) { r.PaymentID = "" }},
		{"signature", func(r *VerifyPaymentRequest) { r.Signature = "" }},
		{"plan id", func(r *VerifyPaymentRequest) { r.PlanID = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validSubscriptionCallback()
			tc.mutate(&req)

			_, err := svc.VerifySubscriptionPayment(context.Background(), "user-1", req)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if repo.activated != nil {
				t.Fatal("no state change may happen on a validation failure")
			}
		})
	}
}

func TestVerifySubscriptionPayment_TamperedSignature(t *testing.T) {
	repo := pendingSubscriptionRepo()
	svc, _ := newTestService(repo)

	req := validSubscriptionCallback()
	// Flip one hex digit.
	sig := []byte(req.Signature)
	if sig[0] == 'a' {
		sig[0] = 'b'
	} else {
		sig[0] = 'a'
	}
	req.Signature = string(sig)

	_, err := svc.VerifySubscriptionPayment(context.Background(), "user-1", req)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if repo.activated != nil {
		t.Fatal("a forged callback must leave the pending record untouched")
	}
	if repo.pendingSub.Status != domain.SubscriptionPending {
		t.Errorf("pending record changed state: %s", repo.pendingSub.Status)
	}
}

func TestVerifySubscriptionPayment_NoPendingRecord(t *testing.T) {
	repo := pendingSubscriptionRepo()
	repo.pendingSub = nil
	svc, _ := newTestService(repo)

	_, err := svc.VerifySubscriptionPayment(context.Background(), "user-1", validSubscriptionCallback())
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestVerifySubscriptionPayment_UnknownPlan(t *testing.T) {
	repo := pendingSubscriptionRepo()
	repo.plan = nil
	svc, _ := newTestService(repo)

	_, err := svc.VerifySubscriptionPayment(context.Background(), "user-1", validSubscriptionCallback())
	if !errors.Is(err, ErrReferenceNotFound) {
		t.Fatalf("expected ErrReferenceNotFound, got %v", err)
	}
	if repo.activated != nil {
		t.Fatal("no state change may happen when the plan reference is missing")
	}
}

func TestVerifySubscriptionPayment_MonthlyPeriodClampsToMonthEnd(t *testing.T) {
	repo := pendingSubscriptionRepo()
	svc, _ := newTestService(repo)
	svc.now = func() time.Time {
		return time.Date(2024, time.January, 31, 10, 0, 0, 0, time.UTC)
	}

	sub, err := svc.VerifySubscriptionPayment(context.Background(), "user-1", validSubscriptionCallback())
	if err != nil {
		t.Fatalf("VerifySubscriptionPayment returned error: %v", err)
	}
	if sub.Status != domain.SubscriptionActive {
		t.Errorf("expected active status, got %s", sub.Status)
	}

	want := time.Date(2024, time.February, 29, 10, 0, 0, 0, time.UTC)
	if !repo.activated.periodEnd.Equal(want) {
		t.Errorf("expected period end %v, got %v", want, repo.activated.periodEnd)
	}
	if !repo.activated.periodStart.Equal(svc.now()) {
		t.Errorf("expected period start now, got %v", repo.activated.periodStart)
	}
}

func TestVerifySubscriptionPayment_YearlyAndLifetimeCycles(t *testing.T) {
	start := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		cycle string
		want  time.Time
	}{
		{"yearly", time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)},
		{"one_time", time.Date(2124, time.March, 15, 12, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.cycle, func(t *testing.T) {
			repo := pendingSubscriptionRepo()
			repo.plan.BillingCycle = tc.cycle
			svc, _ := newTestService(repo)
			svc.now = func() time.Time { return start }

			if _, err := svc.VerifySubscriptionPayment(context.Background(), "user-1", validSubscriptionCallback()); err != nil {
				t.Fatalf("VerifySubscriptionPayment returned error: %v", err)
			}
			if !repo.activated.periodEnd.Equal(tc.want) {
				t.Errorf("expected period end %v, got %v", tc.want, repo.activated.periodEnd)
			}
		})
	}
}

func TestVerifySubscriptionPayment_PersistenceFailureIsHardError(t *testing.T) {
	repo := pendingSubscriptionRepo()
	repo.activateErr = errors.New("write failed")
	svc, pub := newTestService(repo)

	_, err := svc.VerifySubscriptionPayment(context.Background(), "user-1", validSubscriptionCallback())
	var pErr *PersistenceError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if len(pub.routingKeys) != 0 {
		t.Error("no event may be published when persistence failed")
	}
}

func TestVerifySubscriptionPayment_PublishesActivationEvent(t *testing.T) {
	repo := pendingSubscriptionRepo()
	svc, pub := newTestService(repo)

	if _, err := svc.VerifySubscriptionPayment(context.Background(), "user-1", validSubscriptionCallback()); err != nil {
		t.Fatalf("VerifySubscriptionPayment returned error: %v", err)
	}
	if len(pub.routingKeys) != 1 || pub.routingKeys[0] != events.RoutingSubscriptionActivated {
		t.Errorf("expected one %s event, got %v", events.RoutingSubscriptionActivated, pub.routingKeys)
	}
}

func TestVerifySubscriptionPayment_PublishFailureDoesNotFailRequest(t *testing.T) {
	repo := pendingSubscriptionRepo()
	svc, pub := newTestService(repo)
	pub.err = errors.New("broker down")

	if _, err := svc.VerifySubscriptionPayment(context.Background(), "user-1", validSubscriptionCallback()); err != nil {
		t.Fatalf("a broker failure must not fail a committed verification, got %v", err)
	}
}

func pendingPurchaseRepo() *repoStub {
	return &repoStub{
		pendingPurchase: &domain.Purchase{
			ID:              "purchase-1",
			UserID:          "user-1",
			ContentID:       "content-x",
			PaymentStatus:   domain.PaymentPending,
			RazorpayOrderID: "order_ppv",
		},
		content: &domain.PayPerViewContent{
			ID:       "content-x",
			VideoID:  "video-7",
			Title:    "Premiere",
			Price:    19900,
			Currency: "INR",
		},
	}
}

func validPurchaseCallback() VerifyPaymentRequest {
	return VerifyPaymentRequest{
		OrderID:   "order_ppv",
		PaymentID: "pay_ppv",
		Signature: signCallback("order_ppv", "pay_ppv", testSecret),
	}
}

func TestVerifyPayPerViewPayment_SetsThirtyDayWindow(t *testing.T) {
	repo := pendingPurchaseRepo()
	svc, pub := newTestService(repo)
	now := time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	purchase, err := svc.VerifyPayPerViewPayment(context.Background(), "user-1", validPurchaseCallback())
	if err != nil {
		t.Fatalf("VerifyPayPerViewPayment returned error: %v", err)
	}

	want := now.Add(30 * 24 * time.Hour)
	if !repo.completed.expiresAt.Equal(want) {
		t.Errorf("expected expires_at %v, got %v", want, repo.completed.expiresAt)
	}
	if repo.completed.paymentID != "pay_ppv" {
		t.Errorf("expected payment id recorded, got %q", repo.completed.paymentID)
	}
	if !purchase.IsActive || purchase.PaymentStatus != domain.PaymentCompleted {
		t.Errorf("expected active completed purchase, got %+v", purchase)
	}
	if len(pub.routingKeys) != 1 || pub.routingKeys[0] != events.RoutingPayPerViewCompleted {
		t.Errorf("expected one %s event, got %v", events.RoutingPayPerViewCompleted, pub.routingKeys)
	}
}

func TestVerifyPayPerViewPayment_PlanNotRequired(t *testing.T) {
	repo := pendingPurchaseRepo()
	svc, _ := newTestService(repo)

	req := validPurchaseCallback()
	req.PlanID = ""
	if _, err := svc.VerifyPayPerViewPayment(context.Background(), "user-1", req); err != nil {
		t.Fatalf("pay-per-view verification must not require a plan id, got %v", err)
	}
}

func TestVerifyPayPerViewPayment_TamperedSignatureLeavesStateUntouched(t *testing.T) {
	repo := pendingPurchaseRepo()
	svc, _ := newTestService(repo)

	req := validPurchaseCallback()
	req.Signature = signCallback("order_ppv", "pay_other", testSecret)

	_, err := svc.VerifyPayPerViewPayment(context.Background(), "user-1", req)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if repo.completed != nil {
		t.Fatal("a forged callback must not complete the purchase")
	}
}

func TestVerifyPayPerViewPayment_NoPendingRecord(t *testing.T) {
	repo := pendingPurchaseRepo()
	repo.pendingPurchase = nil
	svc, _ := newTestService(repo)

	_, err := svc.VerifyPayPerViewPayment(context.Background(), "user-1", validPurchaseCallback())
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestVerifyPayPerViewPayment_MissingContentReference(t *testing.T) {
	repo := pendingPurchaseRepo()
	repo.content = nil
	svc, _ := newTestService(repo)

	_, err := svc.VerifyPayPerViewPayment(context.Background(), "user-1", validPurchaseCallback())
	if !errors.Is(err, ErrReferenceNotFound) {
		t.Fatalf("expected ErrReferenceNotFound, got %v", err)
	}
	if repo.completed != nil {
		t.Fatal("no state change may happen when the content reference is missing")
	}
}

func TestVerifyPayPerViewPayment_PersistenceFailureIsHardError(t *testing.T) {
	repo := pendingPurchaseRepo()
	repo.completeErr = errors.New("write failed")
	svc, _ := newTestService(repo)

	_, err := svc.VerifyPayPerViewPayment(context.Background(), "user-1", validPurchaseCallback())
	var pErr *PersistenceError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}
