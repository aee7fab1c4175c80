package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"storefront/internal/services"
)

const localSessionKey = "session_key"

const sessionTTL = 14 * 24 * time.Hour

// Session makes sure every request carries an anonymous session key. A
// request without the cookie gets a fresh uuid, set on the response.
func Session(cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Cookies(cookieName)
		if key == "" {
			key = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     cookieName,
				Value:    key,
				Path:     "/",
				Expires:  time.Now().Add(sessionTTL),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(localSessionKey, key)
		return c.Next()
	}
}

// SessionKey returns the request's session key if one is known. Outside the
// Session middleware it falls back to the raw cookie.
func SessionKey(c *fiber.Ctx, cookieName string) string {
	if key, ok := c.Locals(localSessionKey).(string); ok {
		return key
	}
	return c.Cookies(cookieName)
}

// Identity combines the authenticated user and the session key.
func Identity(c *fiber.Ctx, cookieName string) services.Identity {
	return services.Identity{
		UserID:     UserID(c),
		SessionKey: SessionKey(c, cookieName),
	}
}
