package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// ListingFilter captures catalog query parameters.
type ListingFilter struct {
	Statuses []domain.ListingStatus
	SellerID *string
	Limit    int
	Offset   int
}

// ListingRepository encapsulates listing persistence.
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	ListWithFilter(ctx context.Context, filter ListingFilter) ([]domain.Listing, error)
	// UpdateReview moves a PENDING listing to a terminal status. The
	// guard on the current status makes concurrent double review lose
	// deterministically; it reports false when no pending row matched.
	UpdateReview(ctx context.Context, id string, status domain.ListingStatus, feedback *string) (bool, error)
}

type listingRepository struct {
	pool *pgxpool.Pool
}

// NewListingRepository instantiates repository.
func NewListingRepository(pool *pgxpool.Pool) ListingRepository {
	return &listingRepository{pool: pool}
}

const listingColumns = `id, seller_id, title, description, type, category, price, preview_url, screenshots, status, feedback, created_at, updated_at`

func (r *listingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	const query = `
        INSERT INTO listings (seller_id, title, description, type, category, price, preview_url, screenshots, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		listing.SellerID,
		listing.Title,
		listing.Description,
		listing.Type,
		listing.Category,
		listing.Price,
		listing.PreviewURL,
		listing.Screenshots,
		listing.Status,
	).Scan(&listing.ID, &listing.CreatedAt, &listing.UpdatedAt)
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanListing(row)
}

func (r *listingRepository) ListWithFilter(ctx context.Context, filter ListingFilter) ([]domain.Listing, error) {
	clauses := []string{}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			args = append(args, status)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SellerID != nil {
		args = append(args, *filter.SellerID)
		clauses = append(clauses, fmt.Sprintf("seller_id=$%d", len(args)))
	}

	query := `SELECT ` + listingColumns + ` FROM listings`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at ASC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []domain.Listing{}
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *listing)
	}
	return listings, rows.Err()
}

func (r *listingRepository) UpdateReview(ctx context.Context, id string, status domain.ListingStatus, feedback *string) (bool, error) {
	const query = `
        UPDATE listings SET status=$1, feedback=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`
	cmd, err := r.pool.Exec(ctx, query, status, feedback, id, domain.ListingStatusPending)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var listing domain.Listing
	if err := row.Scan(
		&listing.ID,
		&listing.SellerID,
		&listing.Title,
		&listing.Description,
		&listing.Type,
		&listing.Category,
		&listing.Price,
		&listing.PreviewURL,
		&listing.Screenshots,
		&listing.Status,
		&listing.Feedback,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &listing, nil
}
