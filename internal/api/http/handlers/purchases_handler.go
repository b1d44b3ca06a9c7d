package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/service"
)

// PurchasesHandler exposes entitlement endpoints.
type PurchasesHandler struct {
	entitlements *service.EntitlementService
}

// NewPurchasesHandler constructs handler.
func NewPurchasesHandler(entitlements *service.EntitlementService) *PurchasesHandler {
	return &PurchasesHandler{entitlements: entitlements}
}

// Create handles POST /purchases.
func (h *PurchasesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.ListingID == "" {
		return fiber.NewError(http.StatusBadRequest, "listing_id required")
	}

	purchase, err := h.entitlements.Purchase(c.Context(), principal.User, req.ListingID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPurchaseResponse(purchase)})
}

// List handles GET /purchases.
func (h *PurchasesHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	purchases, err := h.entitlements.ListPurchasesForBuyer(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPurchaseListResponse(purchases)})
}

// Download handles POST /purchases/:id/download.
func (h *PurchasesHandler) Download(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	url, err := h.entitlements.RedeemDownload(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DownloadResponse{URL: url}})
}
