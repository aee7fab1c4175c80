package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperr"
	"storefront/internal/middleware"
	"storefront/internal/services"
)

// AddressHandler manages the caller's saved shipping addresses.
type AddressHandler struct {
	service *services.AddressService
}

func NewAddressHandler(service *services.AddressService) *AddressHandler {
	return &AddressHandler{service: service}
}

func (h *AddressHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	addressRoutes := router.Group("/addresses", authRequired)
	addressRoutes.Get("/", h.HandleList)
	addressRoutes.Post("/", h.HandleCreate)
	addressRoutes.Get("/:id", h.HandleGet)
	addressRoutes.Put("/:id", h.HandleUpdate)
	addressRoutes.Delete("/:id", h.HandleDelete)
	addressRoutes.Post("/:id/default", h.HandleSetDefault)
}

func (h *AddressHandler) HandleList(c *fiber.Ctx) error {
	addresses, err := h.service.ListAddresses(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "OK", fiber.Map{"addresses": addresses})
}

func (h *AddressHandler) HandleGet(c *fiber.Ctx) error {
	address, err := h.service.GetAddress(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "OK", fiber.Map{"address": address})
}

func (h *AddressHandler) HandleCreate(c *fiber.Ctx) error {
	var in services.AddressInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, apperr.Validation("Invalid request body"))
	}
	address, err := h.service.CreateAddress(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Address saved", fiber.Map{"address": address})
}

func (h *AddressHandler) HandleUpdate(c *fiber.Ctx) error {
	var in services.AddressInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, apperr.Validation("Invalid request body"))
	}
	address, err := h.service.UpdateAddress(c.UserContext(), middleware.UserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Address updated", fiber.Map{"address": address})
}

func (h *AddressHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.DeleteAddress(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Address deleted", nil)
}

func (h *AddressHandler) HandleSetDefault(c *fiber.Ctx) error {
	address, err := h.service.SetDefaultAddress(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Default address updated", fiber.Map{"address": address})
}
