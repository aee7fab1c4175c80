package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperr"
	"storefront/internal/services"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation: fiber.StatusBadRequest,
	apperr.KindNotFound:   fiber.StatusNotFound,
	apperr.KindConflict:   fiber.StatusConflict,
	apperr.KindPolicy:     fiber.StatusForbidden,
	apperr.KindUpstream:   fiber.StatusBadGateway,
	apperr.KindAuth:       fiber.StatusUnauthorized,
}

// respond writes a successful envelope. extra is merged into the body.
func respond(c *fiber.Ctx, status int, message string, extra fiber.Map) error {
	body := fiber.Map{
		"success": true,
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// respondError maps err onto the failure envelope. Unclassified errors are
// logged and reported without their text.
func respondError(c *fiber.Ctx, err error) error {
	e, ok := apperr.As(err)
	status, known := statusByKind[apperr.KindOf(err)]
	if !ok || !known {
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error",
		})
	}

	body := fiber.Map{
		"success": false,
		"message": e.Message,
	}
	if len(e.Fields) > 0 {
		body["errors"] = e.Fields
	}
	if e.Detail != "" {
		body["error"] = e.Detail
	}
	if e.Ref != "" {
		body["ref"] = e.Ref
	}
	return c.Status(status).JSON(body)
}

// parseBody binds a JSON or form body and validates it.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		log.Printf("Error parsing request body on %s: %v", c.Path(), err)
		return apperr.Validation("Invalid request body")
	}
	return services.ValidateStruct(out)
}
