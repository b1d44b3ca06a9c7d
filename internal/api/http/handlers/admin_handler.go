package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/service"
)

// AdminHandler exposes the review workflow and user administration.
type AdminHandler struct {
	catalog *service.CatalogService
	review  *service.ReviewService
	auth    *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(catalog *service.CatalogService, review *service.ReviewService, authService *service.AuthService) *AdminHandler {
	return &AdminHandler{catalog: catalog, review: review, auth: authService}
}

// ListPending handles GET /admin/listings/pending.
func (h *AdminHandler) ListPending(c *fiber.Ctx) error {
	listings, err := h.catalog.ListPending(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingListResponse(listings)})
}

// Approve handles POST /admin/listings/:id/approve.
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	listing, err := h.review.Approve(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingResponse(listing)})
}

// Reject handles POST /admin/listings/:id/reject.
func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.RejectListingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	listing, err := h.review.Reject(c.Context(), principal.User, c.Params("id"), req.Feedback)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingResponse(listing)})
}

// PromoteDeveloper handles POST /admin/users/:id/promote-developer.
func (h *AdminHandler) PromoteDeveloper(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	creds, err := h.auth.PromoteToDeveloper(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDeveloperCredentialsResponse(creds)})
}
