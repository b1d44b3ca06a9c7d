package domain

import "time"

// ListingStatus enumerates review lifecycle states for listings.
type ListingStatus string

const (
	ListingStatusPending  ListingStatus = "PENDING"
	ListingStatusApproved ListingStatus = "APPROVED"
	ListingStatusRejected ListingStatus = "REJECTED"
)

// ListingType enumerates the kinds of digital goods sold on the marketplace.
type ListingType string

const (
	ListingTypeWebsite   ListingType = "WEBSITE"
	ListingTypePortfolio ListingType = "PORTFOLIO"
	ListingTypeCustom    ListingType = "CUSTOM"
	ListingTypePhd       ListingType = "PHD"
)

// ValidListingType reports whether t is a known listing type.
func ValidListingType(t ListingType) bool {
	switch t {
	case ListingTypeWebsite, ListingTypePortfolio, ListingTypeCustom, ListingTypePhd:
		return true
	}
	return false
}

// Listing is the aggregate for a digital good offered for sale.
type Listing struct {
	ID          string
	SellerID    string
	Title       string
	Description string
	Type        ListingType
	Category    string
	Price       float64
	PreviewURL  *string
	Screenshots []string
	Status      ListingStatus
	Feedback    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Terminal reports whether the listing has reached a final review state.
func (l *Listing) Terminal() bool {
	return l.Status == ListingStatusApproved || l.Status == ListingStatusRejected
}
