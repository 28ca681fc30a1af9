/**
 * @description
 * Payment-callback signature verification. Razorpay signs its checkout
 * callbacks with HMAC-SHA256 over "<order_id>|<payment_id>" keyed by the
 * merchant secret and renders the digest as lowercase hex.
 */
package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature reports whether the callback signature matches the expected
// HMAC-SHA256 digest of "orderID|paymentID" under secret. It never fails for
// malformed input; anything that does not match the expected digest is simply
// not a valid signature.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
