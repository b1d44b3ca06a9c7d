package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// CatalogService coordinates listing browsing and submission.
type CatalogService struct {
	listings   repository.ListingRepository
	users      repository.UserRepository
	purchases  repository.PurchaseRepository
	dispatcher events.Dispatcher
}

// CatalogDependencies bundles repositories for the catalog service.
type CatalogDependencies struct {
	ListingRepo  repository.ListingRepository
	UserRepo     repository.UserRepository
	PurchaseRepo repository.PurchaseRepository
	Dispatcher   events.Dispatcher
}

// ListingSubmitInput describes a seller upload.
type ListingSubmitInput struct {
	Title       string
	Description string
	Type        domain.ListingType
	Category    string
	Price       float64
	PreviewURL  *string
	Screenshots []string
}

// ListingDetails augments a listing with presentation aggregates.
type ListingDetails struct {
	Listing       domain.Listing
	SellerName    string
	PurchaseCount int64
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	return &CatalogService{
		listings:   deps.ListingRepo,
		users:      deps.UserRepo,
		purchases:  deps.PurchaseRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ListListings returns listings in insertion order. Without an explicit
// status filter only approved listings are visible.
func (s *CatalogService) ListListings(ctx context.Context, status *domain.ListingStatus, limit, offset int) ([]domain.Listing, error) {
	filter := repository.ListingFilter{Limit: limit, Offset: offset}
	if status != nil {
		filter.Statuses = []domain.ListingStatus{*status}
	} else {
		filter.Statuses = []domain.ListingStatus{domain.ListingStatusApproved}
	}
	return s.listings.ListWithFilter(ctx, filter)
}

// GetListing fetches a single listing.
func (s *CatalogService) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("listing", map[string]any{"id": id})
		}
		return nil, err
	}
	return listing, nil
}

// GetListingDetails fetches a listing with its seller summary and
// purchase count aggregate.
func (s *CatalogService) GetListingDetails(ctx context.Context, id string) (*ListingDetails, error) {
	listing, err := s.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	seller, err := s.users.GetByID(ctx, listing.SellerID)
	if err != nil {
		return nil, err
	}
	count, err := s.purchases.CountByListing(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	return &ListingDetails{
		Listing:       *listing,
		SellerName:    seller.Name,
		PurchaseCount: count,
	}, nil
}

// SubmitListing creates a pending listing for review.
func (s *CatalogService) SubmitListing(ctx context.Context, seller *domain.User, input ListingSubmitInput) (*domain.Listing, error) {
	if seller == nil || !seller.Role.CanSell() {
		return nil, apperrors.NewForbidden("seller role required to submit listings")
	}

	details := map[string]any{}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "required"
	}
	if strings.TrimSpace(input.Description) == "" {
		details["description"] = "required"
	}
	if input.Price <= 0 {
		details["price"] = "must be positive"
	}
	if len(input.Screenshots) == 0 {
		details["screenshots"] = "at least one required"
	}
	if !domain.ValidListingType(input.Type) {
		details["type"] = "unknown listing type"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid listing submission", details)
	}

	listing := &domain.Listing{
		SellerID:    seller.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Type:        input.Type,
		Category:    strings.TrimSpace(input.Category),
		Price:       input.Price,
		PreviewURL:  input.PreviewURL,
		Screenshots: input.Screenshots,
		Status:      domain.ListingStatusPending,
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:  events.EventListingSubmitted,
		Actor: actorFor(seller),
		Payload: events.ListingSubmittedPayload{
			ListingID: listing.ID,
			SellerID:  listing.SellerID,
			Type:      listing.Type,
			Title:     listing.Title,
			Price:     listing.Price,
		},
	})
	return listing, nil
}

// ListPending returns all pending listings for admin review.
func (s *CatalogService) ListPending(ctx context.Context) ([]domain.Listing, error) {
	return s.listings.ListWithFilter(ctx, repository.ListingFilter{
		Statuses: []domain.ListingStatus{domain.ListingStatusPending},
	})
}
