package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/service"
)

type entitlementFixture struct {
	*catalogFixture
	secrets      *fakeSecretRepo
	entitlements *service.EntitlementService
}

func newEntitlementFixture() *entitlementFixture {
	f := newCatalogFixture()
	secrets := newFakeSecretRepo()
	return &entitlementFixture{
		catalogFixture: f,
		secrets:        secrets,
		entitlements: service.NewEntitlementService(service.EntitlementDependencies{
			PurchaseRepo:    f.purchases,
			ListingRepo:     f.listings,
			Secrets:         service.NewSecretIssuer(secrets),
			Dispatcher:      f.dispatch,
			DownloadBaseURL: "https://download.example.com",
		}),
	}
}

func TestPurchase_CreatesEntitlement(t *testing.T) {
	f := newEntitlementFixture()
	seller := f.addUser(t, domain.RoleSeller)
	buyer := f.addUser(t, domain.RoleBuyer)
	listing := f.addListing(t, seller.ID, domain.ListingStatusApproved)

	purchase, err := f.entitlements.Purchase(context.Background(), buyer, listing.ID)
	require.NoError(t, err)

	assert.False(t, purchase.Downloaded)
	assert.Equal(t, buyer.ID, purchase.BuyerID)
	assert.True(t, strings.HasPrefix(purchase.DownloadURL, "https://download.example.com/"+listing.ID))
	assert.Contains(t, purchase.DownloadURL, "token=")

	published := f.dispatch.byType(events.EventPurchaseCompleted)
	require.Len(t, published, 1)
	payload := published[0].Payload.(events.PurchaseCompletedPayload)
	assert.Equal(t, listing.Price, payload.Price)
}

func TestPurchase_IsIdempotentPerBuyerAndListing(t *testing.T) {
	f := newEntitlementFixture()
	seller := f.addUser(t, domain.RoleSeller)
	buyer := f.addUser(t, domain.RoleBuyer)
	listing := f.addListing(t, seller.ID, domain.ListingStatusApproved)

	first, err := f.entitlements.Purchase(context.Background(), buyer, listing.ID)
	require.NoError(t, err)
	second, err := f.entitlements.Purchase(context.Background(), buyer, listing.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	owned, err := f.entitlements.ListPurchasesForBuyer(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}

func TestPurchase_PendingListingNotPurchasable(t *testing.T) {
	f := newEntitlementFixture()
	seller := f.addUser(t, domain.RoleSeller)
	buyer := f.addUser(t, domain.RoleBuyer)
	listing := f.addListing(t, seller.ID, domain.ListingStatusPending)

	_, err := f.entitlements.Purchase(context.Background(), buyer, listing.ID)
	require.Error(t, err)
	assert.Equal(t, "INVALID_STATE", domainCode(t, err))
}

func TestPurchase_UnknownListing(t *testing.T) {
	f := newEntitlementFixture()
	buyer := f.addUser(t, domain.RoleBuyer)

	_, err := f.entitlements.Purchase(context.Background(), buyer, "missing-id")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestRedeemDownload_SucceedsExactlyOnce(t *testing.T) {
	f := newEntitlementFixture()
	seller := f.addUser(t, domain.RoleSeller)
	buyer := f.addUser(t, domain.RoleBuyer)
	listing := f.addListing(t, seller.ID, domain.ListingStatusApproved)

	purchase, err := f.entitlements.Purchase(context.Background(), buyer, listing.ID)
	require.NoError(t, err)

	url, err := f.entitlements.RedeemDownload(context.Background(), buyer, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, purchase.DownloadURL, url)

	stored, err := f.purchases.GetByID(context.Background(), purchase.ID)
	require.NoError(t, err)
	assert.True(t, stored.Downloaded)

	_, err = f.entitlements.RedeemDownload(context.Background(), buyer, purchase.ID)
	require.Error(t, err)
	assert.Equal(t, "EXPIRED", domainCode(t, err))
}

func TestRedeemDownload_OnlyBuyerMayRedeem(t *testing.T) {
	f := newEntitlementFixture()
	seller := f.addUser(t, domain.RoleSeller)
	buyer := f.addUser(t, domain.RoleBuyer)
	other := f.addUser(t, domain.RoleBuyer)
	listing := f.addListing(t, seller.ID, domain.ListingStatusApproved)

	purchase, err := f.entitlements.Purchase(context.Background(), buyer, listing.ID)
	require.NoError(t, err)

	_, err = f.entitlements.RedeemDownload(context.Background(), other, purchase.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	// The failed attempt must not burn the secret.
	url, err := f.entitlements.RedeemDownload(context.Background(), buyer, purchase.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, url)
}

func TestRedeemDownload_UnknownPurchase(t *testing.T) {
	f := newEntitlementFixture()
	buyer := f.addUser(t, domain.RoleBuyer)

	_, err := f.entitlements.RedeemDownload(context.Background(), buyer, "missing-id")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestListPurchasesForBuyer_ScopedToOwner(t *testing.T) {
	f := newEntitlementFixture()
	seller := f.addUser(t, domain.RoleSeller)
	buyer := f.addUser(t, domain.RoleBuyer)
	other := f.addUser(t, domain.RoleBuyer)
	first := f.addListing(t, seller.ID, domain.ListingStatusApproved)
	second := f.addListing(t, seller.ID, domain.ListingStatusApproved)

	_, err := f.entitlements.Purchase(context.Background(), buyer, first.ID)
	require.NoError(t, err)
	_, err = f.entitlements.Purchase(context.Background(), buyer, second.ID)
	require.NoError(t, err)
	_, err = f.entitlements.Purchase(context.Background(), other, first.ID)
	require.NoError(t, err)

	owned, err := f.entitlements.ListPurchasesForBuyer(context.Background(), buyer.ID)
	require.NoError(t, err)
	require.Len(t, owned, 2)
	for _, purchase := range owned {
		assert.Equal(t, buyer.ID, purchase.BuyerID)
	}
}
