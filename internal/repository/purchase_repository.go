package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// PurchaseRepository encapsulates entitlement persistence.
type PurchaseRepository interface {
	// Create inserts the purchase. When the (buyer, listing) pair
	// already exists it reports false and leaves the input untouched,
	// so callers can fall back to the stored row.
	Create(ctx context.Context, purchase *domain.Purchase) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Purchase, error)
	GetByBuyerAndListing(ctx context.Context, buyerID, listingID string) (*domain.Purchase, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Purchase, error)
	CountByListing(ctx context.Context, listingID string) (int64, error)
	MarkDownloaded(ctx context.Context, id string) error
}

type purchaseRepository struct {
	pool *pgxpool.Pool
}

// NewPurchaseRepository instantiates repository.
func NewPurchaseRepository(pool *pgxpool.Pool) PurchaseRepository {
	return &purchaseRepository{pool: pool}
}

const purchaseColumns = `id, listing_id, buyer_id, secret_id, download_url, downloaded, created_at`

func (r *purchaseRepository) Create(ctx context.Context, purchase *domain.Purchase) (bool, error) {
	const query = `
        INSERT INTO purchases (listing_id, buyer_id, secret_id, download_url)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (buyer_id, listing_id) DO NOTHING
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		purchase.ListingID,
		purchase.BuyerID,
		purchase.SecretID,
		purchase.DownloadURL,
	).Scan(&purchase.ID, &purchase.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *purchaseRepository) GetByID(ctx context.Context, id string) (*domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id=$1`
	return scanPurchase(r.pool.QueryRow(ctx, query, id))
}

func (r *purchaseRepository) GetByBuyerAndListing(ctx context.Context, buyerID, listingID string) (*domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE buyer_id=$1 AND listing_id=$2`
	return scanPurchase(r.pool.QueryRow(ctx, query, buyerID, listingID))
}

func (r *purchaseRepository) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE buyer_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := []domain.Purchase{}
	for rows.Next() {
		purchase, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, *purchase)
	}
	return purchases, rows.Err()
}

func (r *purchaseRepository) CountByListing(ctx context.Context, listingID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM purchases WHERE listing_id=$1`
	var count int64
	if err := r.pool.QueryRow(ctx, query, listingID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *purchaseRepository) MarkDownloaded(ctx context.Context, id string) error {
	const query = `UPDATE purchases SET downloaded=TRUE WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanPurchase(row pgx.Row) (*domain.Purchase, error) {
	var purchase domain.Purchase
	if err := row.Scan(
		&purchase.ID,
		&purchase.ListingID,
		&purchase.BuyerID,
		&purchase.SecretID,
		&purchase.DownloadURL,
		&purchase.Downloaded,
		&purchase.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &purchase, nil
}
