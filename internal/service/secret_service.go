package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// SecretIssuer is the shared one-time secret primitive. Download tokens
// and developer credentials both go through it: issue an opaque token,
// redeem it at most once, optionally expire it after a window.
type SecretIssuer struct {
	secrets repository.SecretRepository
}

// NewSecretIssuer builds the issuer.
func NewSecretIssuer(secrets repository.SecretRepository) *SecretIssuer {
	return &SecretIssuer{secrets: secrets}
}

// Issue creates a fresh secret. A non-positive ttl means the secret
// only dies by redemption.
func (s *SecretIssuer) Issue(ctx context.Context, purpose domain.SecretPurpose, subjectID string, ttl time.Duration) (*domain.OneTimeSecret, error) {
	secret := &domain.OneTimeSecret{
		Purpose:   purpose,
		SubjectID: subjectID,
		Token:     uuid.NewString(),
	}
	if ttl > 0 {
		expiresAt := time.Now().Add(ttl)
		secret.ExpiresAt = &expiresAt
	}
	if err := s.secrets.Create(ctx, secret); err != nil {
		return nil, err
	}
	return secret, nil
}

// Lookup fetches a secret by its token. Callers decide how a miss maps
// onto their error taxonomy.
func (s *SecretIssuer) Lookup(ctx context.Context, token string) (*domain.OneTimeSecret, error) {
	return s.secrets.GetByToken(ctx, token)
}

// Redeem consumes the secret. Exactly one concurrent caller wins; the
// rest get an expired error, as does anyone past the secret's window.
func (s *SecretIssuer) Redeem(ctx context.Context, id string) error {
	ok, err := s.secrets.Redeem(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewExpired("secret already redeemed or expired")
	}
	return nil
}
