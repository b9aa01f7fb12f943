package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-redemption-service/internal/model"
	"github.com/fairyhunter13/coupon-redemption-service/internal/service"
)

// CouponServiceInterface defines the admin-side coupon business logic.
type CouponServiceInterface interface {
	Create(ctx context.Context, req *model.CreateCouponRequest) error
	List(ctx context.Context) ([]model.Coupon, error)
	Update(ctx context.Context, code string, req *model.UpdateCouponRequest) (*model.Coupon, error)
	Delete(ctx context.Context, code string) error
}

// CouponHandler handles HTTP requests for the coupon inventory.
type CouponHandler struct {
	service   CouponServiceInterface
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service and validator.
func NewCouponHandler(svc CouponServiceInterface, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, validator: v}
}

// formatValidationError converts validator errors to field-specific messages.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			tag := fe.Tag()

			switch field {
			case "Code":
				if tag == "required" {
					return "invalid request: code is required"
				}
				if tag == "notblank" {
					return "invalid request: code cannot be whitespace only"
				}
				if tag == "max" {
					return "invalid request: code exceeds maximum length of 255"
				}
				return "invalid request: code is invalid"
			case "ExpiryAt":
				if tag == "required" {
					return "invalid request: expiry_at is required"
				}
				return "invalid request: expiry_at is invalid"
			case "Status":
				if tag == "couponstatus" {
					return "invalid request: status must be one of Available, Expired, Availed, Disabled"
				}
				return "invalid request: status is invalid"
			default:
				// Defensive: handle unknown fields with descriptive message
				if tag == "required" {
					return "invalid request: " + field + " is required"
				}
				if tag == "max" {
					return "invalid request: " + field + " exceeds maximum length"
				}
				return "invalid request: " + field + " is invalid"
			}
		}
	}
	return "invalid request"
}

// ListCoupons handles GET /coupons. Every record carries its effective
// status, derived at read time.
func (h *CouponHandler) ListCoupons(c *fiber.Ctx) error {
	coupons, err := h.service.List(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list coupons")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
	}
	return c.JSON(coupons)
}

// CreateCoupon handles POST /coupons/create.
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	var req model.CreateCouponRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid request body"})
	}

	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": formatValidationError(err)})
	}

	if err := h.service.Create(c.Context(), &req); err != nil {
		if errors.Is(err, service.ErrCouponExists) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "coupon code already exists"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid request"})
		}
		log.Error().Err(err).Str("code", req.Code).Msg("failed to create coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "internal server error"})
	}

	log.Info().Str("code", req.Code).Msg("coupon created")
	return c.JSON(fiber.Map{"success": true, "message": "coupon created successfully"})
}

// UpdateCoupon handles PUT /coupons/update/:code.
func (h *CouponHandler) UpdateCoupon(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid request: code is required"})
	}

	var req model.UpdateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid request body"})
	}

	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": formatValidationError(err)})
	}

	coupon, err := h.service.Update(c.Context(), code, &req)
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "coupon not found"})
		}
		if errors.Is(err, service.ErrCouponExists) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "coupon code already exists"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid request"})
		}
		log.Error().Err(err).Str("code", code).Msg("failed to update coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "internal server error"})
	}

	log.Info().Str("code", code).Str("new_code", coupon.Code).Msg("coupon updated")
	return c.JSON(fiber.Map{"success": true, "message": "coupon updated successfully", "coupon": coupon})
}

// DeleteCoupon handles DELETE /coupons/delete/:code.
func (h *CouponHandler) DeleteCoupon(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request: code is required"})
	}

	if err := h.service.Delete(c.Context(), code); err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "coupon not found"})
		}
		log.Error().Err(err).Str("code", code).Msg("failed to delete coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
	}

	log.Info().Str("code", code).Msg("coupon deleted")
	return c.JSON(fiber.Map{"message": "coupon deleted successfully"})
}
