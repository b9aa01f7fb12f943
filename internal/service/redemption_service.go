package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-redemption-service/internal/lifecycle"
	"github.com/fairyhunter13/coupon-redemption-service/internal/model"
	"github.com/fairyhunter13/coupon-redemption-service/internal/throttle"
)

// RedemptionStoreInterface defines the coupon data access needed by
// redemption: a point lookup and the atomic conditional claim.
type RedemptionStoreInterface interface {
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	Redeem(ctx context.Context, code, claimedBy string, now time.Time) error
}

// ReceiptServiceInterface issues and verifies session claim receipts.
type ReceiptServiceInterface interface {
	IssueReceipt(couponCode string) (string, error)
	ValidateReceipt(tokenString string) error
}

// RedemptionService orchestrates claim attempts. The receipt and cooldown
// checks up front are advisory pre-filters; the store's conditional write is
// what guarantees at most one successful redemption per coupon.
type RedemptionService struct {
	store    RedemptionStoreInterface
	tracker  throttle.Tracker
	receipts ReceiptServiceInterface
	now      func() time.Time
}

// NewRedemptionService creates a new RedemptionService.
func NewRedemptionService(store RedemptionStoreInterface, tracker throttle.Tracker, receipts ReceiptServiceInterface) *RedemptionService {
	return &RedemptionService{
		store:    store,
		tracker:  tracker,
		receipts: receipts,
		now:      time.Now,
	}
}

// NewRedemptionServiceWithClock creates a RedemptionService with a custom
// clock. Primarily used for testing.
func NewRedemptionServiceWithClock(store RedemptionStoreInterface, tracker throttle.Tracker, receipts ReceiptServiceInterface, now func() time.Time) *RedemptionService {
	return &RedemptionService{
		store:    store,
		tracker:  tracker,
		receipts: receipts,
		now:      now,
	}
}

// Redeem attempts to redeem the coupon for the given claimant identity.
// receipt is the claim receipt presented by the session, empty when absent.
//
// Returns:
//   - ErrSessionClaimed when the session holds a live receipt
//   - ErrRateLimited when the identity is inside its cooldown window
//   - ErrCouponNotFound when the code does not exist
//   - ErrInvalidState when the coupon is not effectively Available, or the
//     conditional write lost a race to a concurrent redeemer
//
// No failure path mutates anything; the tracker entry and the fresh receipt
// are produced only after the conditional write committed.
func (s *RedemptionService) Redeem(ctx context.Context, code, identity, receipt string) (*model.RedeemResult, error) {
	if code == "" || identity == "" {
		return nil, ErrInvalidRequest
	}
	now := s.now()

	if receipt != "" && s.receipts.ValidateReceipt(receipt) == nil {
		return nil, ErrSessionClaimed
	}

	active, err := s.tracker.Active(ctx, identity, now)
	if err != nil {
		// The tracker is advisory; a broken backend must not turn
		// redemption into a 500. Fail open and let the conditional
		// write arbitrate.
		log.Warn().Err(err).Str("identity", identity).Msg("cooldown check failed, proceeding")
	} else if active {
		return nil, ErrRateLimited
	}

	coupon, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	if lifecycle.Derive(coupon.Status, coupon.ExpiryAt, now) != model.StatusAvailable {
		return nil, ErrInvalidState
	}

	// The pre-checks above can race; this write cannot. No retry on a lost
	// race: the coupon is gone and the caller gets ErrInvalidState.
	if err := s.store.Redeem(ctx, code, identity, now); err != nil {
		if errors.Is(err, ErrInvalidState) {
			return nil, ErrInvalidState
		}
		return nil, fmt.Errorf("redeem coupon: %w", err)
	}

	if err := s.tracker.Record(ctx, identity, now); err != nil {
		log.Warn().Err(err).Str("identity", identity).Msg("cooldown record failed")
	}

	newReceipt, err := s.receipts.IssueReceipt(code)
	if err != nil {
		// The redemption is committed; the receipt only hardens the
		// session against re-claiming, so degrade instead of failing.
		log.Error().Err(err).Str("code", code).Msg("receipt issuance failed")
		newReceipt = ""
	}

	return &model.RedeemResult{ClaimedBy: identity, Receipt: newReceipt}, nil
}
