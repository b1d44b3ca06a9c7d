package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/service"
)

type authFixture struct {
	users   *fakeUserRepo
	secrets *fakeSecretRepo
	auth    *service.AuthService
}

func newAuthFixture() *authFixture {
	users := newFakeUserRepo()
	secrets := newFakeSecretRepo()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            bcrypt.MinCost,
			MinPasswordLength:     6,
			DevCredentialTTLHours: 48,
		},
	}
	return &authFixture{
		users:   users,
		secrets: secrets,
		auth: service.NewAuthService(cfg, service.AuthDependencies{
			UserRepo:   users,
			Secrets:    service.NewSecretIssuer(secrets),
			Dispatcher: &recordingDispatcher{},
		}),
	}
}

func (f *authFixture) register(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	user, _, _, err := f.auth.Register(context.Background(), "Test User", email, "hunter2", role)
	require.NoError(t, err)
	return user
}

func (f *authFixture) admin(t *testing.T) *domain.User {
	t.Helper()
	// Admin accounts are provisioned out of band, never via Register.
	user := &domain.User{
		Name:         "Admin",
		Email:        "admin@example.com",
		PasswordHash: "x",
		Role:         domain.RoleAdmin,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func TestRegister_CreatesBuyerAndSeller(t *testing.T) {
	f := newAuthFixture()

	buyer := f.register(t, "buyer@example.com", domain.RoleBuyer)
	assert.Equal(t, domain.RoleBuyer, buyer.Role)

	seller, token, exp, err := f.auth.Register(context.Background(), "Sal", "seller@example.com", "hunter2", domain.RoleSeller)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSeller, seller.Role)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))
}

func TestRegister_Validation(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := f.auth.Register(ctx, "X", "not-an-email", "hunter2", domain.RoleBuyer)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, _, _, err = f.auth.Register(ctx, "X", "short@example.com", "12345", domain.RoleBuyer)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, _, _, err = f.auth.Register(ctx, "X", "admin@example.com", "hunter2", domain.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "dup@example.com", domain.RoleBuyer)

	_, _, _, err := f.auth.Register(context.Background(), "X", "dup@example.com", "hunter2", domain.RoleBuyer)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", domainCode(t, err))
}

func TestLogin_Succeeds(t *testing.T) {
	f := newAuthFixture()
	registered := f.register(t, "login@example.com", domain.RoleBuyer)

	user, token, _, err := f.auth.Login(context.Background(), "login@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := f.auth.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.SubjectID)
	assert.Equal(t, domain.RoleBuyer, claims.Role)
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "login@example.com", domain.RoleBuyer)

	_, _, _, err := f.auth.Login(context.Background(), "login@example.com", "wrong-pass")
	require.Error(t, err)
	assert.Equal(t, "AUTHENTICATION_FAILED", domainCode(t, err))

	_, _, _, err = f.auth.Login(context.Background(), "nobody@example.com", "hunter2")
	require.Error(t, err)
	assert.Equal(t, "AUTHENTICATION_FAILED", domainCode(t, err))
}

func TestSwitchRole_BuyerSellerBothWays(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t, "switch@example.com", domain.RoleBuyer)

	switched, err := f.auth.SwitchRole(context.Background(), user.ID, domain.RoleSeller)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSeller, switched.Role)

	switched, err = f.auth.SwitchRole(context.Background(), user.ID, domain.RoleBuyer)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleBuyer, switched.Role)
}

func TestSwitchRole_RejectsFixedRoles(t *testing.T) {
	f := newAuthFixture()
	admin := f.admin(t)
	seller := f.register(t, "promoted@example.com", domain.RoleSeller)

	_, err := f.auth.PromoteToDeveloper(context.Background(), admin, seller.ID)
	require.NoError(t, err)

	_, err = f.auth.SwitchRole(context.Background(), seller.ID, domain.RoleBuyer)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	_, err = f.auth.SwitchRole(context.Background(), admin.ID, domain.RoleSeller)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))
}

func TestSwitchRole_RejectsNonSwitchableTarget(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t, "switch@example.com", domain.RoleBuyer)

	_, err := f.auth.SwitchRole(context.Background(), user.ID, domain.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestPromoteToDeveloper_IssuesOneTimeCredentials(t *testing.T) {
	f := newAuthFixture()
	admin := f.admin(t)
	seller := f.register(t, "dev@example.com", domain.RoleSeller)

	creds, err := f.auth.PromoteToDeveloper(context.Background(), admin, seller.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, creds.Username)
	assert.NotEmpty(t, creds.TemporaryPassword)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), creds.ExpiresAt, time.Minute)

	promoted, err := f.users.GetByID(context.Background(), seller.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDeveloper, promoted.Role)

	// Login is blocked until the temporary credentials are rotated.
	_, _, _, err = f.auth.Login(context.Background(), "dev@example.com", "hunter2")
	require.Error(t, err)
	assert.Equal(t, "AUTHENTICATION_FAILED", domainCode(t, err))

	err = f.auth.ActivateDeveloperCredential(context.Background(), creds.Username, creds.TemporaryPassword, "rotated-pass")
	require.NoError(t, err)

	user, _, _, err := f.auth.Login(context.Background(), "dev@example.com", "rotated-pass")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDeveloper, user.Role)
}

func TestActivateDeveloperCredential_RedeemsExactlyOnce(t *testing.T) {
	f := newAuthFixture()
	admin := f.admin(t)
	seller := f.register(t, "dev@example.com", domain.RoleSeller)

	creds, err := f.auth.PromoteToDeveloper(context.Background(), admin, seller.ID)
	require.NoError(t, err)

	err = f.auth.ActivateDeveloperCredential(context.Background(), creds.Username, creds.TemporaryPassword, "rotated-pass")
	require.NoError(t, err)

	err = f.auth.ActivateDeveloperCredential(context.Background(), creds.Username, creds.TemporaryPassword, "another-pass")
	require.Error(t, err)
	assert.Equal(t, "EXPIRED", domainCode(t, err))
}

func TestActivateDeveloperCredential_ExpiresUnused(t *testing.T) {
	f := newAuthFixture()
	admin := f.admin(t)
	seller := f.register(t, "dev@example.com", domain.RoleSeller)

	creds, err := f.auth.PromoteToDeveloper(context.Background(), admin, seller.ID)
	require.NoError(t, err)

	f.secrets.expire(creds.TemporaryPassword)

	err = f.auth.ActivateDeveloperCredential(context.Background(), creds.Username, creds.TemporaryPassword, "rotated-pass")
	require.Error(t, err)
	assert.Equal(t, "EXPIRED", domainCode(t, err))
}

func TestPromoteToDeveloper_Guards(t *testing.T) {
	f := newAuthFixture()
	admin := f.admin(t)
	buyer := f.register(t, "buyer@example.com", domain.RoleBuyer)
	seller := f.register(t, "seller@example.com", domain.RoleSeller)

	_, err := f.auth.PromoteToDeveloper(context.Background(), buyer, seller.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	_, err = f.auth.PromoteToDeveloper(context.Background(), admin, buyer.ID)
	require.Error(t, err)
	assert.Equal(t, "INVALID_STATE", domainCode(t, err))

	_, err = f.auth.PromoteToDeveloper(context.Background(), admin, "missing-id")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}
