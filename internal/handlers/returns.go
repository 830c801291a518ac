package handlers

import (
	"storeadmin/internal/repositories"
	"storeadmin/internal/services/returns"
	"storeadmin/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type ReturnHandler struct {
	service returns.Service
}

func NewReturnHandler(s returns.Service) *ReturnHandler { return &ReturnHandler{service: s} }

func (h *ReturnHandler) Create(c *fiber.Ctx) error {
	var in returns.CreateInput
	if err := bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	r, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Return order created", r)
}

func (h *ReturnHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var u returns.StatusUpdate
	if err := bind(c, &u); err != nil {
		return response.FromError(c, err)
	}
	r, err := h.service.UpdateStatus(c.UserContext(), id, u)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Return status updated", r)
}

func (h *ReturnHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	r, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Return order retrieved", r)
}

func (h *ReturnHandler) List(c *fiber.Ctx) error {
	p, window := page(c)
	list, total, err := h.service.List(c.UserContext(), repositories.ReturnFilter{
		Page:       window,
		Status:     c.Query("status"),
		CustomerID: queryUint(c, "customerId"),
		Search:     c.Query("search"),
		Returned:   queryDateRange(c),
	})
	if err != nil {
		return response.FromError(c, err)
	}
	p.SetTotal(total)
	return response.Paginated(c, "Return orders retrieved", list, p)
}

func (h *ReturnHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Return statistics retrieved", stats)
}
