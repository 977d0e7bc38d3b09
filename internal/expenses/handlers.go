package expenses

import (
	"time"

	"cattletrack-backend/internal/middleware"
	"cattletrack-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers holds dependencies for expense endpoints.
type Handlers struct {
	Service *Service
}

func mapServiceError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrFieldsRequired, ErrInvalidAmount, ErrInvalidDate:
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}

// Add POST /api/v1/expenses.
func (h *Handlers) Add(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	var req AddInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrFieldsRequired.Error(), fiber.StatusBadRequest, nil)
	}
	out, err := h.Service.Add(c.Context(), userID, req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.SuccessCreated(c, "Expense added", fiber.Map{"expense": out}, nil)
}

// Metrics GET /api/v1/expenses/metrics.
func (h *Handlers) Metrics(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	out, err := h.Service.GetMetrics(c.Context(), userID, time.Now().UTC())
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Metrics retrieved", out, nil)
}

// Cashflow GET /api/v1/expenses/cashflow.
func (h *Handlers) Cashflow(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	out, err := h.Service.Cashflow(c.Context(), userID, time.Now().UTC())
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Cashflow retrieved", fiber.Map{"months": out}, nil)
}

// Transactions GET /api/v1/expenses/transactions.
func (h *Handlers) Transactions(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	out, err := h.Service.Transactions(c.Context(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Transactions retrieved", fiber.Map{"transactions": out}, fiber.Map{"count": len(out)})
}

// Breakdown GET /api/v1/expenses/breakdown.
func (h *Handlers) Breakdown(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	out, err := h.Service.GetBreakdown(c.Context(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Breakdown retrieved", out, nil)
}

// Report GET /api/v1/expenses/report: CSV download.
func (h *Handlers) Report(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	out, err := h.Service.BuildCSV(c.Context(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="expenses.csv"`)
	return c.Send(out)
}
