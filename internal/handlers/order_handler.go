package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
)

// OrderHandler handles HTTP requests for checkout and orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes. Every route needs a signed-in user.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Post("/checkout", authRequired, h.HandleCheckout)

	orderRoutes := router.Group("/orders", authRequired)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Get("/:id/tracking", h.HandleTrackOrder)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
}

// HandleCheckout places an order from the caller's cart. The body may be
// JSON or form-encoded.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing checkout request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	order, err := h.service.Checkout(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		log.Printf("Error during checkout: %v", err)
		return respondError(c, err)
	}

	next := "/api/v1/payments/khalti/initiate"
	if order.PaymentMethod == models.PaymentCashOnDelivery {
		next = "/api/v1/payments/cod/initiate"
	}
	return respond(c, fiber.StatusCreated, "Order placed successfully", fiber.Map{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount,
		"payment_url":  next,
	})
}

// HandleGetOrders retrieves the caller's orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "OK", fiber.Map{"orders": orders})
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "OK", fiber.Map{"order": order})
}

func (h *OrderHandler) HandleTrackOrder(c *fiber.Ctx) error {
	tracking, err := h.service.TrackOrder(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "OK", fiber.Map{"tracking": tracking})
}

func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.CancelOrder(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		log.Printf("Error cancelling order %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Order cancelled", fiber.Map{"order": order})
}
