package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/middleware"
	"storefront/internal/services"
)

// WishlistHandler manages the caller's wishlist.
type WishlistHandler struct {
	service *services.WishlistService
}

func NewWishlistHandler(service *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{service: service}
}

func (h *WishlistHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	wishlistRoutes := router.Group("/wishlist", authRequired)
	wishlistRoutes.Get("/", h.HandleList)
	wishlistRoutes.Post("/:productId", h.HandleAdd)
	wishlistRoutes.Delete("/:productId", h.HandleRemove)
}

func (h *WishlistHandler) HandleList(c *fiber.Ctx) error {
	items, err := h.service.ListWishlist(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "OK", fiber.Map{"items": items})
}

// HandleAdd is idempotent: adding a listed product reports added=false.
func (h *WishlistHandler) HandleAdd(c *fiber.Ctx) error {
	item, added, err := h.service.AddToWishlist(c.UserContext(), middleware.UserID(c), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	message := "Added to wishlist"
	if !added {
		message = "Already in wishlist"
	}
	return respond(c, fiber.StatusOK, message, fiber.Map{"item": item, "added": added})
}

func (h *WishlistHandler) HandleRemove(c *fiber.Ctx) error {
	if err := h.service.RemoveFromWishlist(c.UserContext(), middleware.UserID(c), c.Params("productId")); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Removed from wishlist", nil)
}
