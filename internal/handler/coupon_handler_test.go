package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/coupon-redemption-service/internal/model"
	"github.com/fairyhunter13/coupon-redemption-service/internal/service"
	"github.com/fairyhunter13/coupon-redemption-service/internal/validator"
)

// mockCouponService is a mock implementation of CouponServiceInterface.
type mockCouponService struct {
	createFn func(ctx context.Context, req *model.CreateCouponRequest) error
	listFn   func(ctx context.Context) ([]model.Coupon, error)
	updateFn func(ctx context.Context, code string, req *model.UpdateCouponRequest) (*model.Coupon, error)
	deleteFn func(ctx context.Context, code string) error
}

func (m *mockCouponService) Create(ctx context.Context, req *model.CreateCouponRequest) error {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return nil
}

func (m *mockCouponService) List(ctx context.Context) ([]model.Coupon, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.Coupon{}, nil
}

func (m *mockCouponService) Update(ctx context.Context, code string, req *model.UpdateCouponRequest) (*model.Coupon, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, code, req)
	}
	return &model.Coupon{Code: code}, nil
}

func (m *mockCouponService) Delete(ctx context.Context, code string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, code)
	}
	return nil
}

func setupCouponApp(mockSvc *mockCouponService) *fiber.App {
	app := fiber.New()
	h := NewCouponHandler(mockSvc, validator.New())
	app.Get("/coupons", h.ListCoupons)
	app.Post("/coupons/create", h.CreateCoupon)
	app.Put("/coupons/update/:code", h.UpdateCoupon)
	app.Delete("/coupons/delete/:code", h.DeleteCoupon)
	return app
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestListCoupons_DerivedStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockSvc := &mockCouponService{
		listFn: func(ctx context.Context) ([]model.Coupon, error) {
			return []model.Coupon{
				{Code: "SAVE10", Status: model.StatusExpired, ExpiryAt: now.Add(-time.Hour), CreatedAt: now},
			}, nil
		},
	}
	app := setupCouponApp(mockSvc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/coupons", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var coupons []model.Coupon
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&coupons))
	require.Len(t, coupons, 1)
	assert.Equal(t, model.StatusExpired, coupons[0].Status)
}

func TestListCoupons_StoreFailure(t *testing.T) {
	mockSvc := &mockCouponService{
		listFn: func(ctx context.Context) ([]model.Coupon, error) {
			return nil, errors.New("store timeout")
		},
	}
	app := setupCouponApp(mockSvc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/coupons", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestCreateCoupon_Success(t *testing.T) {
	var captured *model.CreateCouponRequest
	mockSvc := &mockCouponService{
		createFn: func(ctx context.Context, req *model.CreateCouponRequest) error {
			captured = req
			return nil
		},
	}
	app := setupCouponApp(mockSvc)

	body := `{"code": "SAVE10", "expiry_at": "2026-12-31T23:59:59Z", "status": "Available"}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/coupons/create", body))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, captured)
	assert.Equal(t, "SAVE10", captured.Code)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"success":true`)
}

func TestCreateCoupon_DuplicateCode(t *testing.T) {
	mockSvc := &mockCouponService{
		createFn: func(ctx context.Context, req *model.CreateCouponRequest) error {
			return service.ErrCouponExists
		},
	}
	app := setupCouponApp(mockSvc)

	body := `{"code": "SAVE10", "expiry_at": "2026-12-31T23:59:59Z"}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/coupons/create", body))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(payload), "already exists")
}

func TestCreateCoupon_ValidationFailures(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want string
	}{
		{"missing code", `{"expiry_at": "2026-12-31T23:59:59Z"}`, "code is required"},
		{"blank code", `{"code": "   ", "expiry_at": "2026-12-31T23:59:59Z"}`, "whitespace"},
		{"missing expiry", `{"code": "SAVE10"}`, "expiry_at is required"},
		{"unknown status", `{"code": "SAVE10", "expiry_at": "2026-12-31T23:59:59Z", "status": "Frozen"}`, "status must be one of"},
		{"malformed json", `{"code": `, "invalid request body"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := setupCouponApp(&mockCouponService{})
			resp, err := app.Test(jsonRequest(http.MethodPost, "/coupons/create", tc.body))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

			payload, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(payload), tc.want)
		})
	}
}

func TestUpdateCoupon_Success(t *testing.T) {
	mockSvc := &mockCouponService{
		updateFn: func(ctx context.Context, code string, req *model.UpdateCouponRequest) (*model.Coupon, error) {
			return &model.Coupon{Code: "SAVE20", Status: model.StatusAvailable}, nil
		},
	}
	app := setupCouponApp(mockSvc)

	body := `{"code": "SAVE20"}`
	resp, err := app.Test(jsonRequest(http.MethodPut, "/coupons/update/SAVE10", body))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"success":true`)
	assert.Contains(t, string(payload), `"SAVE20"`)
}

func TestUpdateCoupon_NotFound(t *testing.T) {
	mockSvc := &mockCouponService{
		updateFn: func(ctx context.Context, code string, req *model.UpdateCouponRequest) (*model.Coupon, error) {
			return nil, service.ErrCouponNotFound
		},
	}
	app := setupCouponApp(mockSvc)

	resp, err := app.Test(jsonRequest(http.MethodPut, "/coupons/update/MISSING", `{}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUpdateCoupon_RenameConflict(t *testing.T) {
	mockSvc := &mockCouponService{
		updateFn: func(ctx context.Context, code string, req *model.UpdateCouponRequest) (*model.Coupon, error) {
			return nil, service.ErrCouponExists
		},
	}
	app := setupCouponApp(mockSvc)

	resp, err := app.Test(jsonRequest(http.MethodPut, "/coupons/update/SAVE10", `{"code": "TAKEN"}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteCoupon_Success(t *testing.T) {
	var deleted string
	mockSvc := &mockCouponService{
		deleteFn: func(ctx context.Context, code string) error {
			deleted = code
			return nil
		},
	}
	app := setupCouponApp(mockSvc)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/coupons/delete/SAVE10", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "SAVE10", deleted)
}

func TestDeleteCoupon_NotFound(t *testing.T) {
	mockSvc := &mockCouponService{
		deleteFn: func(ctx context.Context, code string) error {
			return service.ErrCouponNotFound
		},
	}
	app := setupCouponApp(mockSvc)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/coupons/delete/MISSING", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
