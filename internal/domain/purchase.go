package domain

import "time"

// Purchase records a buyer's entitlement to download a listing.
// At most one purchase exists per (buyer, listing) pair; the backing
// table enforces this with a unique constraint.
type Purchase struct {
	ID          string
	ListingID   string
	BuyerID     string
	SecretID    string
	DownloadURL string
	Downloaded  bool
	CreatedAt   time.Time
}
