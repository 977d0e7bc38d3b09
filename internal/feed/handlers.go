package feed

import (
	"errors"
	"time"

	"cattletrack-backend/internal/middleware"
	"cattletrack-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers holds dependencies for feed endpoints.
type Handlers struct {
	Service *Service
}

func mapServiceError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrInsufficientStock) {
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	}
	switch err {
	case ErrNameRequired, ErrNegativeQuantity, ErrZeroUsage, ErrInvalidDate:
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case ErrStockNotFound, ErrUsageNotFound, ErrCattleNotFound:
		return response.NotFound(c, err.Error())
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}

// Inventory GET /api/v1/feed/inventory.
func (h *Handlers) Inventory(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	items, err := h.Service.Inventory(c.Context(), userID, time.Now().UTC())
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Inventory retrieved", fiber.Map{"inventory": items}, fiber.Map{"count": len(items)})
}

// UpsertStock POST /api/v1/feed/stock.
func (h *Handlers) UpsertStock(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	var req StockInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrNameRequired.Error(), fiber.StatusBadRequest, nil)
	}
	stock, err := h.Service.UpsertStock(c.Context(), userID, req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Stock saved", fiber.Map{"stock": stock}, nil)
}

// AddUsage POST /api/v1/feed/usage.
func (h *Handlers) AddUsage(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	var req UsageInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrZeroUsage.Error(), fiber.StatusBadRequest, nil)
	}
	usage, err := h.Service.AddUsage(c.Context(), userID, req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.SuccessCreated(c, "Usage recorded", fiber.Map{"usage": usage}, nil)
}

// UpdateUsage PUT /api/v1/feed/usage/:id.
func (h *Handlers) UpdateUsage(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	usageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.NotFound(c, ErrUsageNotFound.Error())
	}
	var req UsageInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrZeroUsage.Error(), fiber.StatusBadRequest, nil)
	}
	usage, err := h.Service.UpdateUsage(c.Context(), userID, usageID, req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Usage updated", fiber.Map{"usage": usage}, nil)
}

// DeleteUsage DELETE /api/v1/feed/usage/:id.
func (h *Handlers) DeleteUsage(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	usageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.NotFound(c, ErrUsageNotFound.Error())
	}
	if err := h.Service.DeleteUsage(c.Context(), userID, usageID); err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Usage deleted", nil, nil)
}

// ListUsage GET /api/v1/feed/usage?page&limit.
func (h *Handlers) ListUsage(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	rows, total, err := h.Service.ListUsage(c.Context(), userID, page, limit)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Usage retrieved", fiber.Map{"usage": rows}, fiber.Map{
		"page": page, "limit": limit, "total": total,
	})
}

// Chart GET /api/v1/feed/chart.
func (h *Handlers) Chart(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	points, err := h.Service.Chart(c.Context(), userID, time.Now().UTC())
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Chart retrieved", fiber.Map{"history": points}, nil)
}

// Alerts GET /api/v1/feed/alerts.
func (h *Handlers) Alerts(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	alerts, err := h.Service.Alerts(c.Context(), userID, time.Now().UTC())
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Alerts retrieved", fiber.Map{"alerts": alerts}, fiber.Map{"count": len(alerts)})
}

// StockValue GET /api/v1/feed/stock-value.
func (h *Handlers) StockValue(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	out, err := h.Service.StockValueSplit(c.Context(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Stock value retrieved", out, nil)
}
