// Package lifecycle derives a coupon's effective status from its stored
// state and the clock. The derivation is pure: persisting the derived
// status is an optimization handled by the repository sweep, never a
// requirement for correct reads.
package lifecycle

import (
	"time"

	"github.com/fairyhunter13/coupon-redemption-service/internal/model"
)

// Derive returns the effective status of a coupon at the given instant.
//
// Rules, in order:
//   - Availed is permanent. A redeemed coupon never auto-expires.
//   - A non-Availed coupon past its expiry is Expired.
//   - Otherwise the stored status stands (this preserves Disabled).
func Derive(stored model.Status, expiryAt, now time.Time) model.Status {
	if stored == model.StatusAvailed {
		return model.StatusAvailed
	}
	if expiryAt.Before(now) {
		return model.StatusExpired
	}
	return stored
}

// Apply returns a copy of the coupon with Status replaced by its effective
// status at now. The input is not mutated.
func Apply(c model.Coupon, now time.Time) model.Coupon {
	c.Status = Derive(c.Status, c.ExpiryAt, now)
	return c
}
