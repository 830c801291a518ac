package handlers

import (
	"storeadmin/internal/models"
	"storeadmin/internal/services/cart"
	"storeadmin/internal/utils"
	"storeadmin/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// CartHandler serves the caller's own cart.
type CartHandler struct {
	service cart.Service
}

func NewCartHandler(s cart.Service) *CartHandler { return &CartHandler{service: s} }

func (h *CartHandler) Get(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	view, err := h.service.GetCart(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Cart retrieved", view)
}

func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var input struct {
		ProductID          uint                `json:"productId"`
		Quantity           int                 `json:"quantity"`
		SelectedAttributes models.AttributeSet `json:"selectedAttributes"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	view, err := h.service.AddItem(c.UserContext(), claims.UserID, input.ProductID, input.Quantity, input.SelectedAttributes)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Item added to cart", view)
}

func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	itemID, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	view, err := h.service.UpdateItem(c.UserContext(), claims.UserID, itemID, input.Quantity)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Cart updated", view)
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	itemID, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	view, err := h.service.RemoveItem(c.UserContext(), claims.UserID, itemID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Item removed from cart", view)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	view, err := h.service.Clear(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Cart cleared", view)
}

// Sync replaces the cart with the client's local copy.
func (h *CartHandler) Sync(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var input struct {
		Items []cart.SyncItem `json:"items"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}
	view, err := h.service.Sync(c.UserContext(), claims.UserID, input.Items)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Cart synced", view)
}
