package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/service"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %v", err)
	return domainErr.Code
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []events.Event{}
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

type catalogFixture struct {
	users     *fakeUserRepo
	listings  *fakeListingRepo
	purchases *fakePurchaseRepo
	dispatch  *recordingDispatcher
	catalog   *service.CatalogService
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		users:     newFakeUserRepo(),
		listings:  newFakeListingRepo(),
		purchases: newFakePurchaseRepo(),
		dispatch:  &recordingDispatcher{},
	}
	f.catalog = service.NewCatalogService(service.CatalogDependencies{
		ListingRepo:  f.listings,
		UserRepo:     f.users,
		PurchaseRepo: f.purchases,
		Dispatcher:   f.dispatch,
	})
	return f
}

func (f *catalogFixture) addUser(t *testing.T, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:         "Test User",
		Email:        "user-" + string(role) + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *catalogFixture) addListing(t *testing.T, sellerID string, status domain.ListingStatus) *domain.Listing {
	t.Helper()
	listing := &domain.Listing{
		SellerID:    sellerID,
		Title:       "Portfolio site",
		Description: "A polished portfolio template",
		Type:        domain.ListingTypePortfolio,
		Category:    "templates",
		Price:       49.99,
		Screenshots: []string{"shot1.png"},
		Status:      status,
	}
	require.NoError(t, f.listings.Create(context.Background(), listing))
	return listing
}

func validSubmitInput() service.ListingSubmitInput {
	return service.ListingSubmitInput{
		Title:       "Landing page kit",
		Description: "Responsive landing page with CMS hooks",
		Type:        domain.ListingTypeWebsite,
		Category:    "templates",
		Price:       29.0,
		Screenshots: []string{"hero.png", "pricing.png"},
	}
}
