/**
 * @description
 * This file defines the entitlement decision model: the derived, per-request
 * answer to "may this user watch this content". It is never persisted and is
 * recomputed on every call.
 */
package domain

// EntitlementDecision is the full breakdown returned by the decision service.
// Clients use the individual booleans to choose where to send an unentitled
// user (subscribe page vs. one-off payment page).
type EntitlementDecision struct {
	HasAccess          bool                  `json:"hasAccess"`
	SubscriptionActive bool                  `json:"subscriptionActive"`
	PayPerViewAccess   bool                  `json:"payPerViewAccess"`
	Subscription       *SubscriptionSnapshot `json:"subscription,omitempty"`
	ContentID          string                `json:"contentId,omitempty"`
}
