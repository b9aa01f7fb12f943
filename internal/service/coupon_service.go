package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fairyhunter13/coupon-redemption-service/internal/lifecycle"
	"github.com/fairyhunter13/coupon-redemption-service/internal/model"
)

// CouponRepositoryInterface defines the coupon data access needed by the
// admin operations.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, coupon *model.Coupon) error
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	List(ctx context.Context) ([]model.Coupon, error)
	Update(ctx context.Context, code string, updated *model.Coupon) error
	Delete(ctx context.Context, code string) error
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// CouponService provides the admin-side coupon operations: create, update,
// delete, list, and the expiry sweep. Redemption lives in RedemptionService.
type CouponService struct {
	repo CouponRepositoryInterface
	now  func() time.Time
}

// NewCouponService creates a new CouponService with the given repository.
func NewCouponService(repo CouponRepositoryInterface) *CouponService {
	return &CouponService{repo: repo, now: time.Now}
}

// NewCouponServiceWithClock creates a CouponService with a custom clock.
// Primarily used for testing.
func NewCouponServiceWithClock(repo CouponRepositoryInterface, now func() time.Time) *CouponService {
	return &CouponService{repo: repo, now: now}
}

// Create creates a new coupon. Status defaults to Available when the request
// leaves it empty; claimed_by starts absent.
// Returns ErrCouponExists if the code is already taken.
func (s *CouponService) Create(ctx context.Context, req *model.CreateCouponRequest) error {
	// Handlers validate requests; guard callers that don't.
	if req == nil || req.Code == "" || req.ExpiryAt.IsZero() {
		return ErrInvalidRequest
	}

	status := req.Status
	if status == "" {
		status = model.StatusAvailable
	}
	if !status.Valid() {
		return ErrInvalidRequest
	}

	coupon := &model.Coupon{
		Code:     req.Code,
		ExpiryAt: req.ExpiryAt,
		Status:   status,
	}
	return s.repo.Insert(ctx, coupon)
}

// List returns all coupons with their effective status derived at the
// current instant. Stored rows are not mutated.
func (s *CouponService) List(ctx context.Context) ([]model.Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}

	now := s.now()
	for i := range coupons {
		coupons[i] = lifecycle.Apply(coupons[i], now)
	}
	return coupons, nil
}

// Update merges the requested field changes onto the stored coupon and
// applies them in one atomic write. The admin-set status is authoritative
// and is not re-derived here, with two rules layered on top:
//
//   - Availed -> Available clears the claimant to the unclaimed sentinel.
//   - A coupon that would remain Expired while its new expiry lies in the
//     future is revived to Available.
//
// Returns ErrCouponNotFound if the code does not exist and ErrCouponExists
// if a rename collides with another coupon.
func (s *CouponService) Update(ctx context.Context, code string, req *model.UpdateCouponRequest) (*model.Coupon, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, ErrInvalidRequest
	}

	existing, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if existing == nil {
		return nil, ErrCouponNotFound
	}

	merged := *existing
	if req.Code != nil {
		merged.Code = *req.Code
	}
	if req.ExpiryAt != nil {
		merged.ExpiryAt = *req.ExpiryAt
	}
	if req.Status != nil {
		merged.Status = *req.Status
	}

	if existing.Status == model.StatusAvailed && merged.Status == model.StatusAvailable {
		sentinel := model.UnclaimedSentinel
		merged.ClaimedBy = &sentinel
	}
	if merged.Status == model.StatusExpired && merged.ExpiryAt.After(s.now()) {
		merged.Status = model.StatusAvailable
	}

	if err := s.repo.Update(ctx, code, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Delete permanently removes a coupon.
// Returns ErrCouponNotFound if the code does not exist.
func (s *CouponService) Delete(ctx context.Context, code string) error {
	if code == "" {
		return ErrInvalidRequest
	}
	return s.repo.Delete(ctx, code)
}

// SweepExpired persists the derived Expired status for past-expiry coupons.
// Returns the number of rows converged.
func (s *CouponService) SweepExpired(ctx context.Context) (int64, error) {
	return s.repo.SweepExpired(ctx, s.now())
}
