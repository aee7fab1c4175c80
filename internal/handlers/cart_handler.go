package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
)

// CartHandler serves the cart to signed-in users and anonymous sessions alike.
type CartHandler struct {
	service       *services.CartService
	sessionCookie string
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, sessionCookie string) *CartHandler {
	return &CartHandler{service: service, sessionCookie: sessionCookie}
}

// RegisterRoutes mounts the cart routes behind the given identity middleware.
func (h *CartHandler) RegisterRoutes(router fiber.Router, identity ...fiber.Handler) {
	cartRoutes := router.Group("/cart", identity...)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/add", h.HandleAddItem)
	cartRoutes.Post("/remove", h.HandleRemoveItem)
	cartRoutes.Post("/update", h.HandleUpdateItem)
}

// CartItemView is a cart line as shown to the shopper.
type CartItemView struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSlug string          `json:"product_slug"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
	IsAvailable bool            `json:"is_available"`
}

// CartView is the cart with its derived totals.
type CartView struct {
	ID          string          `json:"id"`
	Items       []CartItemView  `json:"items"`
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	IsEmpty     bool            `json:"is_empty"`
}

// NewCartView renders a cart whose items have their products loaded.
func NewCartView(cart *models.Cart) CartView {
	view := CartView{
		ID:          cart.ID,
		Items:       make([]CartItemView, 0, len(cart.Items)),
		TotalItems:  cart.TotalItems(),
		TotalAmount: cart.TotalAmount(),
		IsEmpty:     cart.IsEmpty(),
	}
	for i := range cart.Items {
		item := &cart.Items[i]
		view.Items = append(view.Items, CartItemView{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			ProductSlug: item.Product.Slug,
			UnitPrice:   item.Product.EffectivePrice(),
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal(),
			IsAvailable: item.IsAvailable(),
		})
	}
	return view
}

func itemTotal(cart *models.Cart, itemID string) decimal.Decimal {
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			return cart.Items[i].LineTotal()
		}
	}
	return decimal.Zero
}

// cartSummary is the part of every cart mutation reply that describes the cart.
func cartSummary(cart *models.Cart) fiber.Map {
	total := cart.TotalAmount()
	return fiber.Map{
		"cart_count": cart.TotalItems(),
		"cart_total": total,
		"subtotal":   total,
	}
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, _, err := h.service.GetOrCreateCart(c.UserContext(), middleware.Identity(c, h.sessionCookie))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "OK", fiber.Map{"cart": NewCartView(cart)})
}

type addItemRequest struct {
	ProductID string `json:"product_id" form:"product_id" validate:"required"`
	Quantity  *int   `json:"quantity" form:"quantity"`
}

// HandleAddItem adds a product to the cart. Quantity defaults to one.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := h.service.AddItem(c.UserContext(), middleware.Identity(c, h.sessionCookie), req.ProductID, quantity)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Product added to cart", cartSummary(cart))
}

type removeItemRequest struct {
	ItemID string `json:"item_id" form:"item_id" validate:"required"`
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	var req removeItemRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	cart, err := h.service.RemoveItem(c.UserContext(), middleware.Identity(c, h.sessionCookie), req.ItemID)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Item removed from cart", cartSummary(cart))
}

type updateItemRequest struct {
	ItemID   string `json:"item_id" form:"item_id" validate:"required"`
	Quantity *int   `json:"quantity" form:"quantity"`
}

// HandleUpdateItem overwrites a line's quantity. Quantity defaults to one;
// zero or less removes the line.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req updateItemRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := h.service.UpdateQuantity(c.UserContext(), middleware.Identity(c, h.sessionCookie), req.ItemID, quantity)
	if err != nil {
		return respondError(c, err)
	}
	summary := cartSummary(cart)
	summary["item_total"] = itemTotal(cart, req.ItemID)
	return respond(c, fiber.StatusOK, "Cart updated", summary)
}
