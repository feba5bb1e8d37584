package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	signed, err := svc.Issue("user-1", false)
	require.NoError(t, err)

	claims, err := svc.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.False(t, claims.IsAdmin)
}

func TestAdminClaimSurvivesRoundtrip(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	signed, err := svc.Issue("admin-1", true)
	require.NoError(t, err)

	claims, err := svc.Verify(signed)
	require.NoError(t, err)
	require.True(t, claims.IsAdmin)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := NewService("test-secret", -time.Minute)

	signed, err := svc.Issue("user-1", false)
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	require.Error(t, err)
}

func TestVerifyWrongSecret(t *testing.T) {
	signed, err := NewService("secret-a", time.Hour).Issue("user-1", false)
	require.NoError(t, err)

	_, err = NewService("secret-b", time.Hour).Verify(signed)
	require.Error(t, err)
}

func TestVerifyGarbage(t *testing.T) {
	_, err := NewService("test-secret", time.Hour).Verify("not-a-token")
	require.Error(t, err)
}
