/**
 * @description
 * This file defines the pay-per-view purchase domain models. A Purchase row is
 * created as pending when a direct-payment order is initiated and becomes a
 * terminal completed/failed record after gateway verification.
 */
package domain

import "time"

// PaymentStatus is the closed set of states a pay-per-view purchase can be in.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Purchase represents one user's purchase of one pay-per-view content item.
type Purchase struct {
	ID                string        `json:"id"`
	UserID            string        `json:"user_id"`
	ContentID         string        `json:"content_id"`
	PaymentStatus     PaymentStatus `json:"payment_status"`
	RazorpayOrderID   string        `json:"razorpay_order_id"`
	RazorpayPaymentID *string       `json:"razorpay_payment_id,omitempty"`
	IsActive          bool          `json:"is_active"`
	ExpiresAt         *time.Time    `json:"expires_at,omitempty"`
	PurchaseAmount    int64         `json:"purchase_amount"` // minor currency units
	Currency          string        `json:"currency"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// PayPerViewContent is the catalog entry for content sold outside the
// subscription. VideoID links it back to the playable video asset.
type PayPerViewContent struct {
	ID       string `json:"id"`
	VideoID  string `json:"video_id"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	Currency string `json:"currency"`
}
