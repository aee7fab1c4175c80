package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/middleware"
	"storefront/internal/services"
)

// PaymentHandler handles gateway and cash-on-delivery payments.
type PaymentHandler struct {
	service *services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers the payment routes. Every route needs a signed-in user.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	paymentRoutes := router.Group("/payments", authRequired)
	paymentRoutes.Post("/khalti/initiate", h.HandleInitiateKhalti)
	paymentRoutes.Post("/khalti/verify", h.HandleVerifyKhalti)
	paymentRoutes.Post("/cod/initiate", h.HandleInitiateCOD)
	paymentRoutes.Get("/:id", h.HandleGetPayment)
	paymentRoutes.Post("/:id/cancel", h.HandleCancelPayment)
}

type initiateRequest struct {
	OrderID string `json:"order_id" form:"order_id" validate:"required"`
}

func (h *PaymentHandler) HandleInitiateKhalti(c *fiber.Ctx) error {
	var req initiateRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	payment, payload, err := h.service.InitiateKhalti(c.UserContext(), middleware.UserID(c), req.OrderID)
	if err != nil {
		log.Printf("Error initiating gateway payment for order %s: %v", req.OrderID, err)
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Payment initiated", fiber.Map{
		"payment_id":      payment.ID,
		"gateway_payload": payload,
	})
}

// HandleVerifyKhalti confirms a gateway payment. Gateway failures come back
// as {success: false, error} with the gateway's own body.
func (h *PaymentHandler) HandleVerifyKhalti(c *fiber.Ctx) error {
	var req services.VerifyRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	payment, err := h.service.VerifyKhalti(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		log.Printf("Error verifying payment %s: %v", req.PaymentID, err)
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Payment verified", fiber.Map{
		"payment_id": payment.ID,
		"order_id":   payment.OrderID,
	})
}

func (h *PaymentHandler) HandleInitiateCOD(c *fiber.Ctx) error {
	var req initiateRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	payment, err := h.service.InitiateCOD(c.UserContext(), middleware.UserID(c), req.OrderID)
	if err != nil {
		log.Printf("Error confirming cash on delivery for order %s: %v", req.OrderID, err)
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Order confirmed for cash on delivery", fiber.Map{
		"payment_id":   payment.ID,
		"redirect_url": "/api/v1/orders/" + payment.OrderID,
	})
}

func (h *PaymentHandler) HandleGetPayment(c *fiber.Ctx) error {
	payment, err := h.service.GetPayment(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "OK", fiber.Map{"payment": payment})
}

func (h *PaymentHandler) HandleCancelPayment(c *fiber.Ctx) error {
	payment, err := h.service.CancelPayment(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		log.Printf("Error cancelling payment %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Payment cancelled", fiber.Map{"payment": payment})
}
