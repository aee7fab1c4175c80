package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperr"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
)

// ReviewHandler serves product reviews and helpful votes.
type ReviewHandler struct {
	service *services.ReviewService
}

func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// RegisterRoutes mounts the public review listing and the authenticated writes.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Get("/products/:id/reviews", h.HandleList)
	router.Post("/products/:id/reviews", authRequired, h.HandleCreate)

	reviewRoutes := router.Group("/reviews", authRequired)
	reviewRoutes.Put("/:id", h.HandleUpdate)
	reviewRoutes.Delete("/:id", h.HandleDelete)
	reviewRoutes.Post("/:id/vote", h.HandleVote)
}

func (h *ReviewHandler) HandleList(c *fiber.Ctx) error {
	listing, err := h.service.ListReviews(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "OK", fiber.Map{
		"average_rating": listing.AverageRating,
		"count":          listing.Count,
		"reviews":        listing.Reviews,
	})
}

// HandleCreate adds a review. A second review of the same product fails with
// the existing review's id in ref, so the client can edit it instead.
func (h *ReviewHandler) HandleCreate(c *fiber.Ctx) error {
	var in services.ReviewInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, apperr.Validation("Invalid request body"))
	}
	review, err := h.service.CreateReview(c.UserContext(), middleware.UserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Review submitted", fiber.Map{"review": review})
}

func (h *ReviewHandler) HandleUpdate(c *fiber.Ctx) error {
	var in services.ReviewInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, apperr.Validation("Invalid request body"))
	}
	review, err := h.service.UpdateReview(c.UserContext(), middleware.UserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Review updated", fiber.Map{"review": review})
}

func (h *ReviewHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.DeleteReview(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Review deleted", nil)
}

type voteRequest struct {
	VoteType models.VoteType `json:"vote_type" form:"vote_type" validate:"required"`
}

func (h *ReviewHandler) HandleVote(c *fiber.Ctx) error {
	var req voteRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	result, err := h.service.Vote(c.UserContext(), middleware.UserID(c), c.Params("id"), req.VoteType)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Vote recorded", fiber.Map{
		"action":        result.Action,
		"helpful_count": result.HelpfulCount,
	})
}
