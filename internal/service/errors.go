package service

import "errors"

var (
	// ErrCouponExists is returned when a coupon code collides with an existing one.
	ErrCouponExists = errors.New("coupon code already exists")

	// ErrCouponNotFound is returned when a coupon cannot be found.
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrInvalidRequest is returned when request data is invalid or incomplete.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidState is returned when a coupon is not in the state the
	// requested transition needs, including "already redeemed".
	ErrInvalidState = errors.New("coupon is already used, disabled, or expired")

	// ErrRateLimited is returned when the claimant identity is inside its
	// cooldown window.
	ErrRateLimited = errors.New("too many attempts from this address")

	// ErrSessionClaimed is returned when the session holds a live claim
	// receipt from an earlier redemption.
	ErrSessionClaimed = errors.New("session already redeemed a coupon")

	// ErrInvalidCredentials is returned on a failed admin login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
