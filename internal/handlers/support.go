package handlers

import (
	"storeadmin/internal/repositories"
	"storeadmin/internal/services/support"
	"storeadmin/internal/utils"
	"storeadmin/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type SupportHandler struct {
	service support.Service
}

func NewSupportHandler(s support.Service) *SupportHandler { return &SupportHandler{service: s} }

func (h *SupportHandler) Create(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var in support.CreateInput
	if err := bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	t, err := h.service.Create(c.UserContext(), claims.UserID, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Support ticket created", t)
}

func (h *SupportHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in support.UpdateInput
	if err := bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	t, err := h.service.Update(c.UserContext(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Support ticket updated", t)
}

// Rate records the customer's satisfaction with a resolved ticket.
func (h *SupportHandler) Rate(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var input struct {
		Rating int `json:"rating"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	t, err := h.service.Rate(c.UserContext(), claims.UserID, id, input.Rating)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Thanks for your feedback", t)
}

func (h *SupportHandler) Get(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	t, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if !claims.CanActFor(t.CustomerID) {
		return response.Forbidden(c)
	}
	return response.Success(c, "Support ticket retrieved", t)
}

// List shows every ticket to admins and only their own to customers.
func (h *SupportHandler) List(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	customerID := queryUint(c, "customerId")
	if !claims.IsAdmin() {
		customerID = &claims.UserID
	}
	p, window := page(c)
	list, total, err := h.service.List(c.UserContext(), repositories.TicketFilter{
		Page:       window,
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		CustomerID: customerID,
		Search:     c.Query("search"),
	})
	if err != nil {
		return response.FromError(c, err)
	}
	p.SetTotal(total)
	return response.Paginated(c, "Support tickets retrieved", list, p)
}

func (h *SupportHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Support statistics retrieved", stats)
}
