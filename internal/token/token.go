// Package token issues and verifies the two short-lived credentials the
// service hands out: admin bearer tokens for the management endpoints and
// claim receipts bound to a redeeming session.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when a token fails signature or claim checks.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token is past its expiry.
	ErrExpiredToken = errors.New("token expired")
)

const (
	audienceAdmin   = "admin"
	audienceReceipt = "receipt"
)

// Claims is the JWT claim set for both token kinds. For admin tokens
// Subject is the username; for receipts it is the redeemed coupon code
// (recorded for audit, not re-checked on later requests).
type Claims struct {
	jwt.RegisteredClaims
}

// Service signs and verifies HS256 tokens.
type Service struct {
	secret     []byte
	adminTTL   time.Duration
	receiptTTL time.Duration
}

// NewService creates a token Service. receiptTTL should equal the
// redemption cooldown window so receipts lapse together with the throttle.
func NewService(secret string, adminTTL, receiptTTL time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		adminTTL:   adminTTL,
		receiptTTL: receiptTTL,
	}
}

// GenerateAdminToken issues a bearer token for the given admin username.
func (s *Service) GenerateAdminToken(username string) (string, error) {
	return s.sign(username, audienceAdmin, s.adminTTL)
}

// ValidateAdminToken verifies an admin bearer token and returns the username.
func (s *Service) ValidateAdminToken(tokenString string) (string, error) {
	claims, err := s.parse(tokenString, audienceAdmin)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// IssueReceipt issues a claim receipt recording the redeemed coupon code.
func (s *Service) IssueReceipt(couponCode string) (string, error) {
	return s.sign(couponCode, audienceReceipt, s.receiptTTL)
}

// ValidateReceipt verifies a claim receipt. A nil error means the session
// holds a live receipt and must not redeem again.
func (s *Service) ValidateReceipt(tokenString string) error {
	_, err := s.parse(tokenString, audienceReceipt)
	return err
}

func (s *Service) sign(subject, audience string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  jwt.ClaimStrings{audience},
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) parse(tokenString, audience string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithAudience(audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
