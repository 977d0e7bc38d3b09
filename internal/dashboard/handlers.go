package dashboard

import (
	"time"

	"cattletrack-backend/internal/middleware"
	"cattletrack-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for dashboard endpoints.
type Handlers struct {
	Service *Service
}

// Get GET /api/v1/dashboard.
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	stats, err := h.Service.GetStats(c.Context(), userID, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("dashboard stats failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Dashboard retrieved", stats, nil)
}

// Activity GET /api/v1/dashboard/activity.
func (h *Handlers) Activity(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	limit := c.QueryInt("limit", 10)
	items, err := h.Service.RecentActivity(c.Context(), userID, time.Now().UTC(), limit)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("dashboard activity failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Activity retrieved", fiber.Map{"activity": items}, fiber.Map{"count": len(items)})
}

// Alerts GET /api/v1/dashboard/alerts.
func (h *Handlers) Alerts(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	out, err := h.Service.GetAlerts(c.Context(), userID, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("dashboard alerts failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Alerts retrieved", out, fiber.Map{"count": len(out.Alerts)})
}
