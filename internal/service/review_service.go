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

// ReviewService handles the admin review workflow. A listing moves
// PENDING -> APPROVED or PENDING -> REJECTED exactly once; both end
// states are terminal.
type ReviewService struct {
	listings   repository.ListingRepository
	dispatcher events.Dispatcher
}

// NewReviewService constructs the service.
func NewReviewService(listings repository.ListingRepository, dispatcher events.Dispatcher) *ReviewService {
	return &ReviewService{listings: listings, dispatcher: dispatcher}
}

// Approve transitions a pending listing to approved.
func (s *ReviewService) Approve(ctx context.Context, admin *domain.User, listingID string) (*domain.Listing, error) {
	return s.review(ctx, admin, listingID, domain.ListingStatusApproved, nil)
}

// Reject transitions a pending listing to rejected, storing reviewer
// feedback for the seller.
func (s *ReviewService) Reject(ctx context.Context, admin *domain.User, listingID, feedback string) (*domain.Listing, error) {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return nil, apperrors.NewValidationError("feedback is required to reject a listing", nil)
	}
	return s.review(ctx, admin, listingID, domain.ListingStatusRejected, &feedback)
}

func (s *ReviewService) review(ctx context.Context, admin *domain.User, listingID string, decision domain.ListingStatus, feedback *string) (*domain.Listing, error) {
	if admin == nil || admin.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin role required")
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("listing", map[string]any{"id": listingID})
		}
		return nil, err
	}
	if listing.Terminal() {
		return nil, apperrors.NewInvalidState("listing already reviewed", map[string]any{"status": listing.Status})
	}

	// The status guard in the UPDATE serializes concurrent reviews:
	// a racer that lost sees zero rows affected.
	ok, err := s.listings.UpdateReview(ctx, listingID, decision, feedback)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewInvalidState("listing already reviewed", nil)
	}

	listing.Status = decision
	listing.Feedback = feedback

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:  events.EventListingReviewed,
		Actor: actorFor(admin),
		Payload: events.ListingReviewedPayload{
			ListingID: listing.ID,
			Decision:  decision,
			Feedback:  feedback,
		},
	})
	return listing, nil
}
