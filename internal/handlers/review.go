package handlers

import (
	"strconv"

	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/services/review"
	"storeadmin/internal/utils"
	"storeadmin/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type ReviewHandler struct {
	service review.Service
}

func NewReviewHandler(s review.Service) *ReviewHandler { return &ReviewHandler{service: s} }

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var in review.CreateInput
	if err := bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	r, err := h.service.Create(c.UserContext(), claims.UserID, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Review submitted", r)
}

func (h *ReviewHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var input struct {
		Status     string  `json:"status"`
		AdminReply *string `json:"adminReply"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	r, err := h.service.UpdateStatus(c.UserContext(), id, input.Status, input.AdminReply)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Review updated", r)
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Review deleted", nil)
}

func (h *ReviewHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	r, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Review retrieved", r)
}

// List is public and only shows approved reviews unless an admin asks for
// another status.
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	status := models.ReviewStatusApproved
	if claims, err := utils.GetUserClaims(c); err == nil && claims.IsAdmin() {
		status = c.Query("status")
	}
	rating, _ := strconv.Atoi(c.Query("rating"))

	p, window := page(c)
	list, total, err := h.service.List(c.UserContext(), repositories.ReviewFilter{
		Page:      window,
		Status:    status,
		ProductID: queryUint(c, "productId"),
		Rating:    rating,
		Search:    c.Query("search"),
	})
	if err != nil {
		return response.FromError(c, err)
	}
	p.SetTotal(total)
	return response.Paginated(c, "Reviews retrieved", list, p)
}

func (h *ReviewHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Review statistics retrieved", stats)
}
