package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/service"
)

// ListingsHandler exposes catalog endpoints.
type ListingsHandler struct {
	catalog *service.CatalogService
}

// NewListingsHandler constructs handler.
func NewListingsHandler(catalog *service.CatalogService) *ListingsHandler {
	return &ListingsHandler{catalog: catalog}
}

// List handles GET /listings.
func (h *ListingsHandler) List(c *fiber.Ctx) error {
	var status *domain.ListingStatus
	if raw := c.Query("status"); raw != "" {
		parsed := domain.ListingStatus(strings.ToUpper(raw))
		switch parsed {
		case domain.ListingStatusPending, domain.ListingStatusApproved, domain.ListingStatusRejected:
			status = &parsed
		default:
			return fiber.NewError(http.StatusBadRequest, "unknown status filter")
		}
	}

	listings, err := h.catalog.ListListings(c.Context(), status, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingListResponse(listings)})
}

// Get handles GET /listings/:id.
func (h *ListingsHandler) Get(c *fiber.Ctx) error {
	details, err := h.catalog.GetListingDetails(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingDetailsResponse(details)})
}

// Submit handles POST /listings.
func (h *ListingsHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.ListingSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	listing, err := h.catalog.SubmitListing(c.Context(), principal.User, service.ListingSubmitInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        domain.ListingType(strings.ToUpper(req.Type)),
		Category:    req.Category,
		Price:       req.Price,
		PreviewURL:  req.PreviewURL,
		Screenshots: req.Screenshots,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewListingResponse(listing),
		"message": "listing submitted and pending review",
	})
}
