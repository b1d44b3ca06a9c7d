package events

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventListingSubmitted  EventType = "listing_submitted"
	EventListingReviewed   EventType = "listing_reviewed"
	EventPurchaseCompleted EventType = "purchase_completed"
	EventDownloadRedeemed  EventType = "download_redeemed"
	EventDeveloperPromoted EventType = "developer_promoted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ListingSubmittedPayload payload.
type ListingSubmittedPayload struct {
	ListingID string             `json:"listing_id"`
	SellerID  string             `json:"seller_id"`
	Type      domain.ListingType `json:"type"`
	Title     string             `json:"title"`
	Price     float64            `json:"price"`
}

// ListingReviewedPayload payload.
type ListingReviewedPayload struct {
	ListingID string               `json:"listing_id"`
	Decision  domain.ListingStatus `json:"decision"`
	Feedback  *string              `json:"feedback,omitempty"`
}

// PurchaseCompletedPayload payload.
type PurchaseCompletedPayload struct {
	PurchaseID string  `json:"purchase_id"`
	ListingID  string  `json:"listing_id"`
	BuyerID    string  `json:"buyer_id"`
	Price      float64 `json:"price"`
}

// DownloadRedeemedPayload payload.
type DownloadRedeemedPayload struct {
	PurchaseID string `json:"purchase_id"`
	ListingID  string `json:"listing_id"`
}

// DeveloperPromotedPayload payload.
type DeveloperPromotedPayload struct {
	UserID      string    `json:"user_id"`
	PromotedBy  string    `json:"promoted_by"`
	DevUsername string    `json:"dev_username"`
	ExpiresAt   time.Time `json:"expires_at"`
}
