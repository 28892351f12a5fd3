package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := CreateToken("ops@jollymart.example", "ops")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "ops@jollymart.example", claims.Subject)
	require.Equal(t, "ops", claims.Role)
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token")
	require.Error(t, err)
}
