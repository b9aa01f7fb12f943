package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService("test-secret", time.Hour, 10*time.Minute)
}

func TestAdminToken_RoundTrip(t *testing.T) {
	svc := newTestService()

	signed, err := svc.GenerateAdminToken("admin")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	username, err := svc.ValidateAdminToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "admin", username)
}

func TestAdminToken_WrongSecret(t *testing.T) {
	signed, err := newTestService().GenerateAdminToken("admin")
	require.NoError(t, err)

	other := NewService("other-secret", time.Hour, 10*time.Minute)
	_, err = other.ValidateAdminToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAdminToken_Garbage(t *testing.T) {
	_, err := newTestService().ValidateAdminToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestReceipt_RoundTrip(t *testing.T) {
	svc := newTestService()

	receipt, err := svc.IssueReceipt("WELCOME5")
	require.NoError(t, err)
	require.NotEmpty(t, receipt)

	assert.NoError(t, svc.ValidateReceipt(receipt))
}

func TestReceipt_Expired(t *testing.T) {
	svc := NewService("test-secret", time.Hour, -time.Minute)

	receipt, err := svc.IssueReceipt("WELCOME5")
	require.NoError(t, err)

	err = svc.ValidateReceipt(receipt)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

// A receipt must not open the admin endpoints, and an admin token must not
// count as a claim receipt.
func TestAudiences_AreNotInterchangeable(t *testing.T) {
	svc := newTestService()

	receipt, err := svc.IssueReceipt("WELCOME5")
	require.NoError(t, err)
	_, err = svc.ValidateAdminToken(receipt)
	assert.ErrorIs(t, err, ErrInvalidToken)

	admin, err := svc.GenerateAdminToken("admin")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.ValidateReceipt(admin), ErrInvalidToken)
}

func TestReceipts_HaveUniqueIDs(t *testing.T) {
	svc := newTestService()

	first, err := svc.IssueReceipt("WELCOME5")
	require.NoError(t, err)
	second, err := svc.IssueReceipt("WELCOME5")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
