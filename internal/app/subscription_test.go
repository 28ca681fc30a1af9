package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/streamvibe/entitlement-service/internal/domain"
)

func TestCheckSubscription_NoRowMeansNotSubscribed(t *testing.T) {
	svc, _ := newTestService(&repoStub{})

	state, err := svc.CheckSubscription(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CheckSubscription returned error: %v", err)
	}
	if state.IsSubscribed {
		t.Error("expected IsSubscribed=false for a user with no subscription row")
	}
	if state.Subscription != nil {
		t.Errorf("expected nil snapshot, got %+v", state.Subscription)
	}
}

func TestCheckSubscription_ActiveWithinPeriod(t *testing.T) {
	repo := &repoStub{sub: &domain.Subscription{
		UserID:           "user-1",
		PlanID:           "plan-monthly",
		Status:           domain.SubscriptionActive,
		CurrentPeriodEnd: timePtr(time.Now().Add(24 * time.Hour)),
	}}
	svc, _ := newTestService(repo)

	state, err := svc.CheckSubscription(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CheckSubscription returned error: %v", err)
	}
	if !state.IsSubscribed {
		t.Error("expected IsSubscribed=true for an active subscription within its period")
	}
	if repo.markExpired != 0 {
		t.Error("expected no expiry write-back for a valid subscription")
	}
}

func TestCheckSubscription_TrialingWithoutPeriodEnd(t *testing.T) {
	repo := &repoStub{sub: &domain.Subscription{
		UserID: "user-1",
		Status: domain.SubscriptionTrialing,
	}}
	svc, _ := newTestService(repo)

	state, err := svc.CheckSubscription(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CheckSubscription returned error: %v", err)
	}
	if !state.IsSubscribed {
		t.Error("expected trialing subscription with no period end to be valid")
	}
}

func TestCheckSubscription_LapsedActiveTriggersWriteBack(t *testing.T) {
	repo := &repoStub{sub: &domain.Subscription{
		UserID:           "user-1",
		Status:           domain.SubscriptionActive,
		CurrentPeriodEnd: timePtr(time.Now().Add(-time.Hour)),
	}}
	svc, _ := newTestService(repo)

	state, err := svc.CheckSubscription(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CheckSubscription returned error: %v", err)
	}
	if state.IsSubscribed {
		t.Error("expected IsSubscribed=false when the period has ended")
	}
	if repo.markExpired != 1 {
		t.Errorf("expected exactly one expiry write-back, got %d", repo.markExpired)
	}
	if state.Subscription.Status != domain.SubscriptionExpired {
		t.Errorf("expected returned snapshot status expired, got %s", state.Subscription.Status)
	}
}

func TestCheckSubscription_CancelledDoesNotWriteBack(t *testing.T) {
	repo := &repoStub{sub: &domain.Subscription{
		UserID: "user-1",
		Status: domain.SubscriptionCancelled,
	}}
	svc, _ := newTestService(repo)

	state, err := svc.CheckSubscription(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CheckSubscription returned error: %v", err)
	}
	if state.IsSubscribed {
		t.Error("expected cancelled subscription to be invalid")
	}
	if repo.markExpired != 0 {
		t.Error("lazy expiry must only rewrite rows that still claim to be active")
	}
}

func TestCheckSubscription_WriteBackFailureDoesNotFailCheck(t *testing.T) {
	repo := &repoStub{
		sub: &domain.Subscription{
			UserID:           "user-1",
			Status:           domain.SubscriptionActive,
			CurrentPeriodEnd: timePtr(time.Now().Add(-time.Hour)),
		},
		markExpiredErr: errors.New("db unavailable"),
	}
	svc, _ := newTestService(repo)

	state, err := svc.CheckSubscription(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CheckSubscription returned error: %v", err)
	}
	if state.IsSubscribed {
		t.Error("expected IsSubscribed=false even when the write-back fails")
	}
}

func TestCheckSubscription_EmptyUserIDIsValidationError(t *testing.T) {
	svc, _ := newTestService(&repoStub{})

	_, err := svc.CheckSubscription(context.Background(), "")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
