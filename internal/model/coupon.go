package model

import "time"

// Status is the closed set of coupon states.
type Status string

const (
	StatusAvailable Status = "Available"
	StatusExpired   Status = "Expired"
	StatusAvailed   Status = "Availed"
	StatusDisabled  Status = "Disabled"
)

// UnclaimedSentinel is written to claimed_by when an admin reverts an
// Availed coupon back to Available.
const UnclaimedSentinel = "Not Claimed"

// Valid reports whether s is one of the four known states.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusExpired, StatusAvailed, StatusDisabled:
		return true
	}
	return false
}

// Coupon represents a coupon record as stored.
type Coupon struct {
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	ExpiryAt  time.Time `json:"expiry_at"`
	Status    Status    `json:"status"`
	ClaimedBy *string   `json:"claimed_by"`
}

// CreateCouponRequest is the DTO for POST /coupons/create.
type CreateCouponRequest struct {
	Code     string    `json:"code" validate:"required,notblank,max=255"`
	ExpiryAt time.Time `json:"expiry_at" validate:"required"`
	Status   Status    `json:"status" validate:"omitempty,couponstatus"`
}

// UpdateCouponRequest is the DTO for PUT /coupons/update/:code.
// Nil fields are left unchanged.
type UpdateCouponRequest struct {
	Code     *string    `json:"code" validate:"omitempty,notblank,max=255"`
	ExpiryAt *time.Time `json:"expiry_at"`
	Status   *Status    `json:"status" validate:"omitempty,couponstatus"`
}

// LoginRequest is the DTO for POST /login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,notblank,max=255"`
	Password string `json:"password" validate:"required,max=255"`
}

// RedeemResult is returned by a successful redemption: who claimed the
// coupon and the receipt to hand back to the session.
type RedeemResult struct {
	ClaimedBy string
	Receipt   string
}
