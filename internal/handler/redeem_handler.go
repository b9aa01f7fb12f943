package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-redemption-service/internal/model"
	"github.com/fairyhunter13/coupon-redemption-service/internal/service"
)

// receiptCookie is the session cookie carrying the claim receipt.
const receiptCookie = "redeemed"

// RedemptionServiceInterface defines the redemption business logic.
type RedemptionServiceInterface interface {
	Redeem(ctx context.Context, code, identity, receipt string) (*model.RedeemResult, error)
}

// RedeemHandler handles HTTP requests for coupon redemption.
type RedeemHandler struct {
	service  RedemptionServiceInterface
	cooldown time.Duration
}

// NewRedeemHandler creates a new RedeemHandler. cooldown sets the max-age of
// the receipt cookie and must match the service's cooldown window.
func NewRedeemHandler(svc RedemptionServiceInterface, cooldown time.Duration) *RedeemHandler {
	return &RedeemHandler{service: svc, cooldown: cooldown}
}

// RedeemCoupon handles PUT /coupons/redeem/:code. The claimant identity is
// the client IP; the claim receipt travels in an httpOnly session cookie.
func (h *RedeemHandler) RedeemCoupon(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request: code is required"})
	}

	identity := c.IP()
	receipt := c.Cookies(receiptCookie)

	result, err := h.service.Redeem(c.Context(), code, identity, receipt)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionClaimed):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "you have already redeemed a coupon in this session, please try again later",
			})
		case errors.Is(err, service.ErrRateLimited):
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "too many attempts detected from this IP, please try again later",
			})
		case errors.Is(err, service.ErrCouponNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "coupon not found"})
		case errors.Is(err, service.ErrInvalidState):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "coupon is already used, disabled, or expired",
			})
		case errors.Is(err, service.ErrInvalidRequest):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request"})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("code", code).
			Str("identity", identity).
			Msg("failed to redeem coupon")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
	}

	if result.Receipt != "" {
		c.Cookie(&fiber.Cookie{
			Name:     receiptCookie,
			Value:    result.Receipt,
			MaxAge:   int(h.cooldown.Seconds()),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("code", code).
		Str("claimed_by", result.ClaimedBy).
		Msg("coupon redeemed")

	return c.JSON(fiber.Map{
		"message":    "coupon redeemed successfully",
		"claimed_by": result.ClaimedBy,
	})
}
