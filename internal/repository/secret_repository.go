package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// SecretRepository manages one-time secret persistence.
type SecretRepository interface {
	Create(ctx context.Context, secret *domain.OneTimeSecret) error
	GetByID(ctx context.Context, id string) (*domain.OneTimeSecret, error)
	GetByToken(ctx context.Context, token string) (*domain.OneTimeSecret, error)
	// Redeem marks the secret used. The conditional update is the
	// at-most-once guarantee: under concurrent redemption exactly one
	// caller observes true.
	Redeem(ctx context.Context, id string) (bool, error)
}

type secretRepository struct {
	pool *pgxpool.Pool
}

// NewSecretRepository constructs repository.
func NewSecretRepository(pool *pgxpool.Pool) SecretRepository {
	return &secretRepository{pool: pool}
}

const secretColumns = `id, purpose, subject_id, token, expires_at, redeemed_at, created_at`

func (r *secretRepository) Create(ctx context.Context, secret *domain.OneTimeSecret) error {
	const query = `
        INSERT INTO one_time_secrets (purpose, subject_id, token, expires_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		secret.Purpose,
		secret.SubjectID,
		secret.Token,
		secret.ExpiresAt,
	).Scan(&secret.ID, &secret.CreatedAt)
}

func (r *secretRepository) GetByID(ctx context.Context, id string) (*domain.OneTimeSecret, error) {
	query := `SELECT ` + secretColumns + ` FROM one_time_secrets WHERE id=$1`
	return scanSecret(r.pool.QueryRow(ctx, query, id))
}

func (r *secretRepository) GetByToken(ctx context.Context, token string) (*domain.OneTimeSecret, error) {
	query := `SELECT ` + secretColumns + ` FROM one_time_secrets WHERE token=$1`
	return scanSecret(r.pool.QueryRow(ctx, query, token))
}

func (r *secretRepository) Redeem(ctx context.Context, id string) (bool, error) {
	const query = `
        UPDATE one_time_secrets SET redeemed_at=NOW()
        WHERE id=$1 AND redeemed_at IS NULL AND (expires_at IS NULL OR expires_at > NOW())`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func scanSecret(row pgx.Row) (*domain.OneTimeSecret, error) {
	var secret domain.OneTimeSecret
	if err := row.Scan(
		&secret.ID,
		&secret.Purpose,
		&secret.SubjectID,
		&secret.Token,
		&secret.ExpiresAt,
		&secret.RedeemedAt,
		&secret.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &secret, nil
}
