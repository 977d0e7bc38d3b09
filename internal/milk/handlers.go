package milk

import (
	"fmt"
	"time"

	"cattletrack-backend/internal/middleware"
	"cattletrack-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers holds dependencies for milk endpoints.
type Handlers struct {
	Service *Service
}

func mapServiceError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrCattleRequired, ErrNegativeLiters, ErrInvalidDate, ErrInvalidDateRange, ErrInvalidFormat:
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case ErrCattleNotFound, ErrRecordNotFound:
		return response.NotFound(c, err.Error())
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}

// Summary GET /api/v1/milk/summary.
func (h *Handlers) Summary(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	out, err := h.Service.Summary(c.Context(), userID, time.Now().UTC())
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Summary retrieved", out, nil)
}

// List GET /api/v1/milk?page&limit&search&start&end.
func (h *Handlers) List(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	q := ListQuery{
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 20),
		Search:    c.Query("search"),
		StartDate: c.Query("start"),
		EndDate:   c.Query("end"),
	}
	rows, total, err := h.Service.List(c.Context(), userID, q)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Milk records retrieved", fiber.Map{"records": rows}, fiber.Map{
		"page": q.Page, "limit": q.Limit, "total": total,
	})
}

// Add POST /api/v1/milk.
func (h *Handlers) Add(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	var req RecordInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrCattleRequired.Error(), fiber.StatusBadRequest, nil)
	}
	rec, err := h.Service.Add(c.Context(), userID, req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.SuccessCreated(c, "Milk record added", fiber.Map{"record": rec}, nil)
}

// Update PUT /api/v1/milk/:id.
func (h *Handlers) Update(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.NotFound(c, ErrRecordNotFound.Error())
	}
	var req RecordInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrCattleRequired.Error(), fiber.StatusBadRequest, nil)
	}
	rec, err := h.Service.Update(c.Context(), userID, recordID, req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Milk record updated", fiber.Map{"record": rec}, nil)
}

// Delete DELETE /api/v1/milk/:id.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.NotFound(c, ErrRecordNotFound.Error())
	}
	if err := h.Service.Delete(c.Context(), userID, recordID); err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Milk record deleted", nil, nil)
}

// Chart GET /api/v1/milk/chart?cattle_id&days|start&end.
func (h *Handlers) Chart(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	q := ChartQuery{
		CattleID:  c.Query("cattle_id"),
		Days:      c.QueryInt("days", 0),
		StartDate: c.Query("start"),
		EndDate:   c.Query("end"),
	}
	summary, err := h.Service.Chart(c.Context(), userID, q)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Chart retrieved", summary, nil)
}

// Report POST /api/v1/milk/report: CSV or PDF download.
func (h *Handlers) Report(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	var req ReportInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrInvalidFormat.Error(), fiber.StatusBadRequest, nil)
	}

	farmName := "My Farm"
	if m, ok := middleware.GetUser(c).(map[string]interface{}); ok {
		if name, _ := m["full_name"].(string); name != "" {
			farmName = name
		}
	}

	out, format, err := h.Service.BuildReport(c.Context(), userID, req, farmName)
	if err != nil {
		return mapServiceError(c, err)
	}

	if format == "csv" {
		c.Set(fiber.HeaderContentType, "text/csv")
	} else {
		c.Set(fiber.HeaderContentType, "application/pdf")
	}
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="milk-report-%s-%s.%s"`, req.StartDate, req.EndDate, format))
	return c.Send(out)
}
