package dto

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/service"
)

// ListingSubmitRequest payload for seller uploads.
type ListingSubmitRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	PreviewURL  *string  `json:"preview_url,omitempty"`
	Screenshots []string `json:"screenshots"`
}

// ListingResponse is the public view of a listing.
type ListingResponse struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	PreviewURL  *string   `json:"preview_url,omitempty"`
	Screenshots []string  `json:"screenshots"`
	Status      string    `json:"status"`
	Feedback    *string   `json:"feedback,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListingDetailsResponse augments a listing with seller summary and
// aggregates.
type ListingDetailsResponse struct {
	ListingResponse
	SellerName    string `json:"seller_name"`
	PurchaseCount int64  `json:"purchase_count"`
}

// NewListingResponse maps a domain listing.
func NewListingResponse(listing *domain.Listing) ListingResponse {
	return ListingResponse{
		ID:          listing.ID,
		SellerID:    listing.SellerID,
		Title:       listing.Title,
		Description: listing.Description,
		Type:        string(listing.Type),
		Category:    listing.Category,
		Price:       listing.Price,
		PreviewURL:  listing.PreviewURL,
		Screenshots: listing.Screenshots,
		Status:      string(listing.Status),
		Feedback:    listing.Feedback,
		CreatedAt:   listing.CreatedAt,
	}
}

// NewListingListResponse maps a slice of listings.
func NewListingListResponse(listings []domain.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		out = append(out, NewListingResponse(&listings[i]))
	}
	return out
}

// NewListingDetailsResponse maps catalog details.
func NewListingDetailsResponse(details *service.ListingDetails) ListingDetailsResponse {
	return ListingDetailsResponse{
		ListingResponse: NewListingResponse(&details.Listing),
		SellerName:      details.SellerName,
		PurchaseCount:   details.PurchaseCount,
	}
}
