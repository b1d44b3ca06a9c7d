package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
)

func TestGenerateAndParseToken(t *testing.T) {
	tm := auth.NewTokenManager("unit-test-secret", time.Hour)

	token, expiresAt, err := tm.GenerateToken("user-123", domain.RoleSeller)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.SubjectID)
	assert.Equal(t, domain.RoleSeller, claims.Role)
	assert.NotEmpty(t, claims.ID, "token ID backs the logout deny-list")
}

func TestParseToken_RejectsWrongSecret(t *testing.T) {
	issuer := auth.NewTokenManager("issuer-secret", time.Hour)
	verifier := auth.NewTokenManager("other-secret", time.Hour)

	token, _, err := issuer.GenerateToken("user-123", domain.RoleBuyer)
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_RejectsGarbage(t *testing.T) {
	tm := auth.NewTokenManager("unit-test-secret", time.Hour)

	_, err := tm.ParseToken("not-a-jwt")
	assert.Error(t, err)
}
