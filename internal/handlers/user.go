package handlers

import (
	"storeadmin/internal/repositories"
	"storeadmin/internal/services/user"
	"storeadmin/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler manages customer accounts for admins.
type UserHandler struct {
	service user.Service
}

func NewUserHandler(s user.Service) *UserHandler { return &UserHandler{service: s} }

func (h *UserHandler) ListCustomers(c *fiber.Ctx) error {
	p, window := page(c)
	list, total, err := h.service.ListCustomers(c.UserContext(), repositories.UserFilter{
		Page:   window,
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		return response.FromError(c, err)
	}
	p.SetTotal(total)
	return response.Paginated(c, "Customers retrieved", list, p)
}

func (h *UserHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	u, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Customer retrieved", u)
}

func (h *UserHandler) CreateCustomer(c *fiber.Ctx) error {
	var in user.CreateCustomerInput
	if err := bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	u, err := h.service.CreateCustomer(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Customer created", u)
}

func (h *UserHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var input struct {
		Status string `json:"status"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	u, err := h.service.UpdateStatus(c.UserContext(), id, input.Status)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Customer status updated", u)
}

func (h *UserHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Customer statistics retrieved", stats)
}
