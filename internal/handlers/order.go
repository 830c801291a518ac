package handlers

import (
	"storeadmin/internal/repositories"
	"storeadmin/internal/services/order"
	"storeadmin/internal/utils"
	"storeadmin/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	service order.Service
}

func NewOrderHandler(s order.Service) *OrderHandler { return &OrderHandler{service: s} }

// Create places an order. Customers always order for themselves; admins may
// name the customer in the body.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var in order.CreateInput
	if err := bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	if !claims.IsAdmin() || in.CustomerID == 0 {
		in.CustomerID = claims.UserID
	}
	o, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Order created", o)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	o, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if !claims.CanActFor(o.CustomerID) {
		return response.Forbidden(c)
	}
	return response.Success(c, "Order retrieved", o)
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	p, window := page(c)
	orders, total, err := h.service.List(c.UserContext(), repositories.OrderFilter{
		Page:       window,
		CustomerID: queryUint(c, "customerId"),
		Status:     c.Query("status"),
		Search:     c.Query("search"),
		Created:    queryDateRange(c),
	})
	if err != nil {
		return response.FromError(c, err)
	}
	p.SetTotal(total)
	return response.Paginated(c, "Orders retrieved", orders, p)
}

func (h *OrderHandler) ListByCustomer(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	customerID, err := paramID(c, "customerId")
	if err != nil {
		return response.FromError(c, err)
	}
	if !claims.CanActFor(customerID) {
		return response.Forbidden(c)
	}
	p, window := page(c)
	orders, total, err := h.service.ListByCustomer(c.UserContext(), customerID, window)
	if err != nil {
		return response.FromError(c, err)
	}
	p.SetTotal(total)
	return response.Paginated(c, "Orders retrieved", orders, p)
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
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
	o, err := h.service.UpdateStatus(c.UserContext(), id, input.Status)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Order status updated", o)
}

func (h *OrderHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Order statistics retrieved", stats)
}
