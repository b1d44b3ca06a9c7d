package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// AuthService coordinates registration, login, role switching and
// developer promotion.
type AuthService struct {
	users       repository.UserRepository
	secrets     *SecretIssuer
	tokenMgr    *auth.TokenManager
	denylist    *auth.TokenDenylist
	dispatcher  events.Dispatcher
	bcryptCost  int
	minPassword int
	devCredTTL  time.Duration
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Secrets    *SecretIssuer
	Denylist   *auth.TokenDenylist
	Dispatcher events.Dispatcher
}

// DeveloperCredentials are the one-time login credentials issued on
// promotion. The temporary password must be rotated on first use and
// expires after the configured window if unused.
type DeveloperCredentials struct {
	Username          string
	TemporaryPassword string
	ExpiresAt         time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:       deps.UserRepo,
		secrets:     deps.Secrets,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		denylist:    deps.Denylist,
		dispatcher:  deps.Dispatcher,
		bcryptCost:  cfg.Auth.BcryptCost,
		minPassword: cfg.Auth.MinPasswordLength,
		devCredTTL:  cfg.Auth.DevCredentialTTL(),
	}
}

// Register creates a new account. Only buyer and seller roles can be
// chosen at registration.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, string, time.Time, error) {
	if !role.Switchable() {
		return nil, "", time.Time{}, apperrors.NewValidationError("role must be buyer or seller", map[string]any{"role": role})
	}
	if err := s.validateCredentials(email, password); err != nil {
		return nil, "", time.Time{}, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("name is required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates an account.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewAuthenticationFailed("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if user.MustRotatePassword {
		return nil, "", time.Time{}, apperrors.NewAuthenticationFailed("developer credentials must be activated first")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewAuthenticationFailed("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Logout revokes the presented token for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	return s.denylist.Revoke(ctx, tokenID, expiresAt)
}

// SwitchRole moves a user between buyer and seller. Developer and
// admin roles are administratively fixed.
func (s *AuthService) SwitchRole(ctx context.Context, userID string, newRole domain.Role) (*domain.User, error) {
	if !newRole.Switchable() {
		return nil, apperrors.NewValidationError("role must be buyer or seller", map[string]any{"role": newRole})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, err
	}
	if !user.Role.Switchable() {
		return nil, apperrors.NewForbidden("role is administratively assigned and cannot be switched")
	}
	if user.Role == newRole {
		return user, nil
	}
	user.Role = newRole
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// PromoteToDeveloper transitions a seller to developer and issues
// one-time login credentials through the secret primitive.
func (s *AuthService) PromoteToDeveloper(ctx context.Context, admin *domain.User, userID string) (*DeveloperCredentials, error) {
	if admin == nil || admin.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin role required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, err
	}
	if user.Role != domain.RoleSeller {
		return nil, apperrors.NewInvalidState("only sellers can be promoted to developer", map[string]any{"role": user.Role})
	}

	secret, err := s.secrets.Issue(ctx, domain.SecretPurposeDeveloperCredential, user.ID, s.devCredTTL)
	if err != nil {
		return nil, err
	}

	devUsername := generateDevUsername()
	user.Role = domain.RoleDeveloper
	user.DevUsername = &devUsername
	user.MustRotatePassword = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:  events.EventDeveloperPromoted,
		Actor: actorFor(admin),
		Payload: events.DeveloperPromotedPayload{
			UserID:      user.ID,
			PromotedBy:  admin.ID,
			DevUsername: devUsername,
			ExpiresAt:   *secret.ExpiresAt,
		},
	})
	return &DeveloperCredentials{
		Username:          devUsername,
		TemporaryPassword: secret.Token,
		ExpiresAt:         *secret.ExpiresAt,
	}, nil
}

// ActivateDeveloperCredential rotates the temporary password issued at
// promotion. The backing secret is redeemed exactly once; an expired or
// already-used credential cannot be re-issued.
func (s *AuthService) ActivateDeveloperCredential(ctx context.Context, devUsername, temporaryPassword, newPassword string) error {
	if len(newPassword) < s.minPassword {
		return apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", s.minPassword), nil)
	}

	user, err := s.users.GetByDevUsername(ctx, devUsername)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewAuthenticationFailed("invalid credentials")
		}
		return err
	}

	secret, err := s.secrets.Lookup(ctx, temporaryPassword)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewAuthenticationFailed("invalid credentials")
		}
		return err
	}
	if secret.Purpose != domain.SecretPurposeDeveloperCredential || secret.SubjectID != user.ID {
		return apperrors.NewAuthenticationFailed("invalid credentials")
	}

	if err := s.secrets.Redeem(ctx, secret.ID); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.MustRotatePassword = false
	return s.users.Update(ctx, user)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) validateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return apperrors.NewValidationError("invalid email address", map[string]any{"email": email})
	}
	if len(password) < s.minPassword {
		return apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", s.minPassword), nil)
	}
	return nil
}

func generateDevUsername() string {
	return "dev-" + strings.ToLower(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
