package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

// ProductHandler serves the catalog.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes mounts the catalog. It is read-only over HTTP.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
}

type productView struct {
	*models.Product
	EffectivePrice     decimal.Decimal `json:"effective_price"`
	DiscountPercentage int             `json:"discount_percentage"`
	InStock            bool            `json:"in_stock"`
}

func newProductView(p *models.Product) productView {
	return productView{
		Product:            p,
		EffectivePrice:     p.EffectivePrice(),
		DiscountPercentage: p.DiscountPercentage(),
		InStock:            p.InStock(),
	}
}

// HandleListProducts lists active products, filtered by ?category=, ?brand= and ?q=.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), repositories.ProductFilter{
		CategoryID: c.Query("category"),
		BrandID:    c.Query("brand"),
		Search:     c.Query("q"),
	})
	if err != nil {
		return respondError(c, err)
	}

	views := make([]productView, len(products))
	for i := range products {
		views[i] = newProductView(&products[i])
	}
	return respond(c, fiber.StatusOK, "OK", fiber.Map{"products": views})
}

func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "OK", fiber.Map{"product": newProductView(product)})
}
