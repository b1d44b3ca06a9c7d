package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// EntitlementService records purchases and guards the one-time
// download redemption.
type EntitlementService struct {
	purchases       repository.PurchaseRepository
	listings        repository.ListingRepository
	secrets         *SecretIssuer
	dispatcher      events.Dispatcher
	downloadBaseURL string
}

// EntitlementDependencies bundles requirements for the service.
type EntitlementDependencies struct {
	PurchaseRepo    repository.PurchaseRepository
	ListingRepo     repository.ListingRepository
	Secrets         *SecretIssuer
	Dispatcher      events.Dispatcher
	DownloadBaseURL string
}

// NewEntitlementService constructs the service.
func NewEntitlementService(deps EntitlementDependencies) *EntitlementService {
	return &EntitlementService{
		purchases:       deps.PurchaseRepo,
		listings:        deps.ListingRepo,
		secrets:         deps.Secrets,
		dispatcher:      deps.Dispatcher,
		downloadBaseURL: deps.DownloadBaseURL,
	}
}

// Purchase records an entitlement for the buyer. The operation is
// idempotent per (buyer, listing): repeated calls return the purchase
// created by the first one.
func (s *EntitlementService) Purchase(ctx context.Context, buyer *domain.User, listingID string) (*domain.Purchase, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("listing", map[string]any{"id": listingID})
		}
		return nil, err
	}
	if listing.Status != domain.ListingStatusApproved {
		return nil, apperrors.NewInvalidState("listing is not purchasable", map[string]any{"status": listing.Status})
	}

	existing, err := s.purchases.GetByBuyerAndListing(ctx, buyer.ID, listingID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	secret, err := s.secrets.Issue(ctx, domain.SecretPurposeDownload, buyer.ID, 0)
	if err != nil {
		return nil, err
	}

	purchase := &domain.Purchase{
		ListingID:   listingID,
		BuyerID:     buyer.ID,
		SecretID:    secret.ID,
		DownloadURL: fmt.Sprintf("%s/%s?token=%s", s.downloadBaseURL, listingID, secret.Token),
	}
	inserted, err := s.purchases.Create(ctx, purchase)
	if err != nil {
		return nil, err
	}
	if !inserted {
		// Lost an insert race; the unique constraint kept exactly one
		// purchase, so hand back the stored row.
		return s.purchases.GetByBuyerAndListing(ctx, buyer.ID, listingID)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:  events.EventPurchaseCompleted,
		Actor: actorFor(buyer),
		Payload: events.PurchaseCompletedPayload{
			PurchaseID: purchase.ID,
			ListingID:  listingID,
			BuyerID:    buyer.ID,
			Price:      listing.Price,
		},
	})
	return purchase, nil
}

// RedeemDownload consumes the purchase's one-time download secret and
// returns the download URL. Succeeds exactly once per purchase.
func (s *EntitlementService) RedeemDownload(ctx context.Context, requester *domain.User, purchaseID string) (string, error) {
	purchase, err := s.purchases.GetByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFound("purchase", map[string]any{"id": purchaseID})
		}
		return "", err
	}
	if purchase.BuyerID != requester.ID {
		return "", apperrors.NewForbidden("purchase belongs to another buyer")
	}
	if purchase.Downloaded {
		return "", apperrors.NewExpired("download already redeemed")
	}

	// The secret redemption is the at-most-once gate; the downloaded
	// flag only mirrors it for listing views.
	if err := s.secrets.Redeem(ctx, purchase.SecretID); err != nil {
		return "", err
	}
	if err := s.purchases.MarkDownloaded(ctx, purchase.ID); err != nil {
		return "", err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:  events.EventDownloadRedeemed,
		Actor: actorFor(requester),
		Payload: events.DownloadRedeemedPayload{
			PurchaseID: purchase.ID,
			ListingID:  purchase.ListingID,
		},
	})
	return purchase.DownloadURL, nil
}

// ListPurchasesForBuyer returns all purchases owned by the buyer.
func (s *EntitlementService) ListPurchasesForBuyer(ctx context.Context, buyerID string) ([]domain.Purchase, error) {
	return s.purchases.ListByBuyer(ctx, buyerID)
}
