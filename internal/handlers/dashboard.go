package handlers

import (
	"storeadmin/internal/services/dashboard"
	"storeadmin/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service dashboard.Service
}

func NewDashboardHandler(s dashboard.Service) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStats handles the request for the admin dashboard statistics.
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Dashboard statistics retrieved", stats)
}
