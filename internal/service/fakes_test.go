package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/repository"
)

// In-memory repository fakes. Misses surface as pgx.ErrNoRows like the
// real pgx-backed implementations.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *user
	return &out, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByDevUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.DevUsername != nil && *user.DevUsername == username {
			out := *user
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeListingRepo struct {
	mu       sync.Mutex
	order    []string
	listings map[string]*domain.Listing
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: map[string]*domain.Listing{}}
}

func (r *fakeListingRepo) Create(_ context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing.ID = uuid.NewString()
	listing.CreatedAt = time.Now()
	listing.UpdatedAt = listing.CreatedAt
	stored := *listing
	r.listings[listing.ID] = &stored
	r.order = append(r.order, listing.ID)
	return nil
}

func (r *fakeListingRepo) GetByID(_ context.Context, id string) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *listing
	return &out, nil
}

func (r *fakeListingRepo) ListWithFilter(_ context.Context, filter repository.ListingFilter) ([]domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Listing{}
	for _, id := range r.order {
		listing := r.listings[id]
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, listing.Status) {
			continue
		}
		if filter.SellerID != nil && listing.SellerID != *filter.SellerID {
			continue
		}
		out = append(out, *listing)
	}
	return out, nil
}

func (r *fakeListingRepo) UpdateReview(_ context.Context, id string, status domain.ListingStatus, feedback *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok || listing.Status != domain.ListingStatusPending {
		return false, nil
	}
	listing.Status = status
	listing.Feedback = feedback
	listing.UpdatedAt = time.Now()
	return true, nil
}

func containsStatus(statuses []domain.ListingStatus, status domain.ListingStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type fakePurchaseRepo struct {
	mu        sync.Mutex
	order     []string
	purchases map[string]*domain.Purchase
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{purchases: map[string]*domain.Purchase{}}
}

func (r *fakePurchaseRepo) Create(_ context.Context, purchase *domain.Purchase) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.purchases {
		if existing.BuyerID == purchase.BuyerID && existing.ListingID == purchase.ListingID {
			return false, nil
		}
	}
	purchase.ID = uuid.NewString()
	purchase.CreatedAt = time.Now()
	stored := *purchase
	r.purchases[purchase.ID] = &stored
	r.order = append(r.order, purchase.ID)
	return true, nil
}

func (r *fakePurchaseRepo) GetByID(_ context.Context, id string) (*domain.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	purchase, ok := r.purchases[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *purchase
	return &out, nil
}

func (r *fakePurchaseRepo) GetByBuyerAndListing(_ context.Context, buyerID, listingID string) (*domain.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, purchase := range r.purchases {
		if purchase.BuyerID == buyerID && purchase.ListingID == listingID {
			out := *purchase
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakePurchaseRepo) ListByBuyer(_ context.Context, buyerID string) ([]domain.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Purchase{}
	for _, id := range r.order {
		if r.purchases[id].BuyerID == buyerID {
			out = append(out, *r.purchases[id])
		}
	}
	return out, nil
}

func (r *fakePurchaseRepo) CountByListing(_ context.Context, listingID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, purchase := range r.purchases {
		if purchase.ListingID == listingID {
			count++
		}
	}
	return count, nil
}

func (r *fakePurchaseRepo) MarkDownloaded(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	purchase, ok := r.purchases[id]
	if !ok {
		return pgx.ErrNoRows
	}
	purchase.Downloaded = true
	return nil
}

type fakeSecretRepo struct {
	mu      sync.Mutex
	secrets map[string]*domain.OneTimeSecret
}

func newFakeSecretRepo() *fakeSecretRepo {
	return &fakeSecretRepo{secrets: map[string]*domain.OneTimeSecret{}}
}

func (r *fakeSecretRepo) Create(_ context.Context, secret *domain.OneTimeSecret) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	secret.ID = uuid.NewString()
	secret.CreatedAt = time.Now()
	stored := *secret
	r.secrets[secret.ID] = &stored
	return nil
}

func (r *fakeSecretRepo) GetByID(_ context.Context, id string) (*domain.OneTimeSecret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	secret, ok := r.secrets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *secret
	return &out, nil
}

func (r *fakeSecretRepo) GetByToken(_ context.Context, token string) (*domain.OneTimeSecret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, secret := range r.secrets {
		if secret.Token == token {
			out := *secret
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeSecretRepo) Redeem(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	secret, ok := r.secrets[id]
	if !ok {
		return false, nil
	}
	if secret.RedeemedAt != nil || secret.Expired(time.Now()) {
		return false, nil
	}
	now := time.Now()
	secret.RedeemedAt = &now
	return true, nil
}

// expire backdates a secret's window, for expiry tests.
func (r *fakeSecretRepo) expire(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, secret := range r.secrets {
		if secret.Token == token {
			past := time.Now().Add(-time.Minute)
			secret.ExpiresAt = &past
		}
	}
}
