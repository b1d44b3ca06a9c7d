package dto

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// PurchaseRequest payload for buying a listing.
type PurchaseRequest struct {
	ListingID string `json:"listing_id"`
}

// PurchaseResponse is the buyer's view of an entitlement. The download
// URL is only revealed through the redeem endpoint.
type PurchaseResponse struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listing_id"`
	BuyerID    string    `json:"buyer_id"`
	Downloaded bool      `json:"downloaded"`
	CreatedAt  time.Time `json:"created_at"`
}

// DownloadResponse carries the one-time download link.
type DownloadResponse struct {
	URL string `json:"url"`
}

// NewPurchaseResponse maps a domain purchase.
func NewPurchaseResponse(purchase *domain.Purchase) PurchaseResponse {
	return PurchaseResponse{
		ID:         purchase.ID,
		ListingID:  purchase.ListingID,
		BuyerID:    purchase.BuyerID,
		Downloaded: purchase.Downloaded,
		CreatedAt:  purchase.CreatedAt,
	}
}

// NewPurchaseListResponse maps a slice of purchases.
func NewPurchaseListResponse(purchases []domain.Purchase) []PurchaseResponse {
	out := make([]PurchaseResponse, 0, len(purchases))
	for i := range purchases {
		out = append(out, NewPurchaseResponse(&purchases[i]))
	}
	return out
}
