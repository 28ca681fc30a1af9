/**
 * @description
 * The client access guard contract: a pure decision over the viewer's auth
 * and entitlement state, the target route, and whether the target is marked
 * pay-per-view. The client calls this to gate navigation; rendering itself is
 * out of scope here.
 */
package guard

import "strings"

// Redirect targets used by the guard.
const (
	RedirectSignIn    = "/signin"
	RedirectSubscribe = "/subscribe"
	RedirectPayment   = "/payment"
)

// Viewer captures everything the guard needs to know about the current user.
// Entitled reflects the entitlement decision for the specific target content
// and is only meaningful when the target is marked premium.
type Viewer struct {
	Authenticated      bool
	SubscriptionActive bool
	Entitled           bool
}

// Decision is the guard's verdict for one navigation attempt.
type Decision struct {
	Allow      bool
	RedirectTo string
}

var authRoutes = []string{
	"/signin",
	"/signup",
	"/forgot-password",
	"/reset-password",
	"/verify-email",
}

var openAuthenticatedRoutes = []string{
	"/profile",
	"/subscribe",
	"/payment",
}

func matchesAny(route string, prefixes []string) bool {
	for _, p := range prefixes {
		if route == p || strings.HasPrefix(route, p+"/") {
			return true
		}
	}
	return false
}

// Evaluate applies the access rules in priority order:
//  1. Pay-per-view-marked targets always require a passed entitlement check,
//     regardless of subscription state.
//  2. Unauthenticated viewers may only reach auth-flow and email-verification
//     routes; everything else redirects to sign-in.
//  3. Authenticated viewers always reach profile, auth, subscribe and payment
//     routes.
//  4. All other routes require an active subscription, else redirect to the
//     subscribe page.
func Evaluate(v Viewer, route string, premium bool) Decision {
	if premium {
		if !v.Authenticated {
			return Decision{Allow: false, RedirectTo: RedirectSignIn}
		}
		if v.Entitled {
			return Decision{Allow: true}
		}
		return Decision{Allow: false, RedirectTo: RedirectPayment}
	}

	if !v.Authenticated {
		if matchesAny(route, authRoutes) {
			return Decision{Allow: true}
		}
		return Decision{Allow: false, RedirectTo: RedirectSignIn}
	}

	if matchesAny(route, authRoutes) || matchesAny(route, openAuthenticatedRoutes) {
		return Decision{Allow: true}
	}

	if v.SubscriptionActive {
		return Decision{Allow: true}
	}
	return Decision{Allow: false, RedirectTo: RedirectSubscribe}
}
