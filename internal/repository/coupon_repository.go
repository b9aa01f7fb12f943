package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/coupon-redemption-service/internal/model"
	"github.com/fairyhunter13/coupon-redemption-service/internal/service"
)

// PoolInterface defines the database operations needed by the repository.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CouponRepository provides data access for coupons using pgx.
type CouponRepository struct {
	pool PoolInterface
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a new CouponRepository with a custom
// pool interface. This is primarily used for testing.
func NewCouponRepositoryWithPool(pool PoolInterface) *CouponRepository {
	return &CouponRepository{pool: pool}
}

const couponColumns = `code, created_at, expiry_at, status, claimed_by`

// Insert inserts a new coupon.
// Returns service.ErrCouponExists if the code is already taken.
func (r *CouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO coupons (code, expiry_at, status) VALUES ($1, $2, $3)`,
		coupon.Code, coupon.ExpiryAt, coupon.Status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrCouponExists
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// GetByCode retrieves a coupon by its code.
// Returns nil, nil if the coupon is not found (service layer handles this).
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	var coupon model.Coupon
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&coupon.Code,
		&coupon.CreatedAt,
		&coupon.ExpiryAt,
		&coupon.Status,
		&coupon.ClaimedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get coupon by code %s: %w", code, err)
	}
	return &coupon, nil
}

// List retrieves all coupons ordered by creation time.
// On success, returns an empty slice (not nil) when no coupons exist.
func (r *CouponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []model.Coupon
	for rows.Next() {
		var coupon model.Coupon
		err := rows.Scan(
			&coupon.Code,
			&coupon.CreatedAt,
			&coupon.ExpiryAt,
			&coupon.Status,
			&coupon.ClaimedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("scan coupon row: %w", err)
		}
		coupons = append(coupons, coupon)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupon rows: %w", err)
	}

	if coupons == nil {
		coupons = []model.Coupon{}
	}
	return coupons, nil
}

// Redeem atomically transitions a coupon to Availed for the given claimant,
// but only if it is still Available and unexpired at write time. This single
// conditional UPDATE is the authority for at-most-one redemption; everything
// the service checks beforehand is advisory.
// Returns service.ErrInvalidState if the condition did not hold.
func (r *CouponRepository) Redeem(ctx context.Context, code, claimedBy string, now time.Time) error {
	query := `UPDATE coupons SET status = $1, claimed_by = $2
		WHERE code = $3 AND status = $4 AND expiry_at > $5`

	tag, err := r.pool.Exec(ctx, query,
		model.StatusAvailed, claimedBy, code, model.StatusAvailable, now)
	if err != nil {
		return fmt.Errorf("redeem coupon %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		// Lost the race, or the coupon expired between read and write.
		return service.ErrInvalidState
	}
	return nil
}

// Update applies the already-merged coupon fields to the row identified by
// code in one atomic UPDATE, renaming the coupon when updated.Code differs.
// Returns service.ErrCouponNotFound if no row matched and
// service.ErrCouponExists if a rename collides with another code.
func (r *CouponRepository) Update(ctx context.Context, code string, updated *model.Coupon) error {
	query := `UPDATE coupons SET code = $1, expiry_at = $2, status = $3, claimed_by = $4
		WHERE code = $5`

	tag, err := r.pool.Exec(ctx, query,
		updated.Code, updated.ExpiryAt, updated.Status, updated.ClaimedBy, code)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrCouponExists
		}
		return fmt.Errorf("update coupon %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCouponNotFound
	}
	return nil
}

// Delete permanently removes a coupon.
// Returns service.ErrCouponNotFound if the code does not exist.
func (r *CouponRepository) Delete(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("delete coupon %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCouponNotFound
	}
	return nil
}

// SweepExpired persists the Expired status for every non-Availed coupon past
// its expiry, so stored state converges with derived state. Reads stay
// correct without it; this only keeps the table tidy.
// Returns the number of rows updated.
func (r *CouponRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE coupons SET status = $1
		WHERE expiry_at < $2 AND status NOT IN ($3, $4)`

	tag, err := r.pool.Exec(ctx, query,
		model.StatusExpired, now, model.StatusAvailed, model.StatusExpired)
	if err != nil {
		return 0, fmt.Errorf("sweep expired coupons: %w", err)
	}
	return tag.RowsAffected(), nil
}
