package handlers

import (
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/services/address"
	"storeadmin/internal/utils"
	"storeadmin/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AddressHandler struct {
	service address.Service
}

func NewAddressHandler(s address.Service) *AddressHandler { return &AddressHandler{service: s} }

// owned loads the address named by :id and checks the caller may act on it.
func (h *AddressHandler) owned(c *fiber.Ctx) (*models.CustomerAddress, error) {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return nil, err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	a, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if !claims.CanActFor(a.CustomerID) {
		// Reported as missing so ids of other customers are not probed.
		return nil, address.ErrAddressNotFound
	}
	return a, nil
}

func (h *AddressHandler) Create(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var input struct {
		address.Input
		CustomerID uint `json:"customerId"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	customerID := claims.UserID
	if claims.IsAdmin() && input.CustomerID != 0 {
		customerID = input.CustomerID
	}
	a, err := h.service.Create(c.UserContext(), customerID, input.Input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Address created", a)
}

func (h *AddressHandler) Update(c *fiber.Ctx) error {
	current, err := h.owned(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var in address.Input
	if err := bind(c, &in); err != nil {
		return response.FromError(c, err)
	}
	a, err := h.service.Update(c.UserContext(), current.ID, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Address updated", a)
}

// SetDefault promotes the address to default for its own type unless the
// body names one.
func (h *AddressHandler) SetDefault(c *fiber.Ctx) error {
	current, err := h.owned(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var input struct {
		AddressType string `json:"addressType"`
	}
	if len(c.Body()) > 0 {
		if err := bind(c, &input); err != nil {
			return response.FromError(c, err)
		}
	}
	if input.AddressType == "" {
		input.AddressType = current.AddressType
	}
	a, err := h.service.SetDefault(c.UserContext(), current.CustomerID, current.ID, input.AddressType)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Default address updated", a)
}

func (h *AddressHandler) Delete(c *fiber.Ctx) error {
	current, err := h.owned(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.service.Delete(c.UserContext(), current.ID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Address deleted", nil)
}

func (h *AddressHandler) Get(c *fiber.Ctx) error {
	a, err := h.owned(c)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Address retrieved", a)
}

func (h *AddressHandler) ListByCustomer(c *fiber.Ctx) error {
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
	list, err := h.service.ListByCustomer(c.UserContext(), customerID, c.Query("type"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Addresses retrieved", list)
}

func (h *AddressHandler) List(c *fiber.Ctx) error {
	p, window := page(c)
	list, total, err := h.service.List(c.UserContext(), repositories.AddressFilter{
		Page:        window,
		AddressType: c.Query("type"),
		Search:      c.Query("search"),
	})
	if err != nil {
		return response.FromError(c, err)
	}
	p.SetTotal(total)
	return response.Paginated(c, "Addresses retrieved", list, p)
}

func (h *AddressHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Address statistics retrieved", stats)
}
