package cattle

import (
	"fmt"
	"time"

	"cattletrack-backend/internal/middleware"
	"cattletrack-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers holds dependencies for cattle endpoints.
type Handlers struct {
	Service *Service
}

func parseCattleID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

func mapServiceError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrFieldsRequired, ErrInvalidAge, ErrInvalidGender, ErrInvalidHealthStatus,
		ErrInvalidViewType, ErrInvalidDateRange, ErrHealthIssueRequired:
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case ErrTagTaken:
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	case ErrCattleNotFound:
		return response.NotFound(c, err.Error())
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}

// Create POST /api/v1/cattle.
func (h *Handlers) Create(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	var req CreateInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrFieldsRequired.Error(), fiber.StatusBadRequest, nil)
	}
	out, err := h.Service.Create(c.Context(), userID, req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.SuccessCreated(c, "Cattle added", fiber.Map{"cattle": out}, nil)
}

// List GET /api/v1/cattle.
func (h *Handlers) List(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	items, err := h.Service.List(c.Context(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Cattle retrieved", fiber.Map{"cattle": items}, fiber.Map{"count": len(items)})
}

// Get GET /api/v1/cattle/:id.
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	cattleID, err := parseCattleID(c)
	if err != nil {
		return response.NotFound(c, ErrCattleNotFound.Error())
	}
	out, err := h.Service.Get(c.Context(), userID, cattleID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Cattle retrieved", out, nil)
}

// Update PUT /api/v1/cattle/:id.
func (h *Handlers) Update(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	cattleID, err := parseCattleID(c)
	if err != nil {
		return response.NotFound(c, ErrCattleNotFound.Error())
	}
	var req CreateInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrFieldsRequired.Error(), fiber.StatusBadRequest, nil)
	}
	out, err := h.Service.Update(c.Context(), userID, cattleID, req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Cattle updated", fiber.Map{"cattle": out}, nil)
}

// Delete DELETE /api/v1/cattle/:id.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	cattleID, err := parseCattleID(c)
	if err != nil {
		return response.NotFound(c, ErrCattleNotFound.Error())
	}
	if err := h.Service.Delete(c.Context(), userID, cattleID); err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Cattle removed", nil, nil)
}

// Filter POST /api/v1/cattle/:id/filter.
func (h *Handlers) Filter(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	cattleID, err := parseCattleID(c)
	if err != nil {
		return response.NotFound(c, ErrCattleNotFound.Error())
	}
	var req FilterInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrInvalidViewType.Error(), fiber.StatusBadRequest, nil)
	}
	summary, err := h.Service.Filter(c.Context(), userID, cattleID, req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Production retrieved", summary, nil)
}

// Summary GET /api/v1/cattle/:id/summary?days=N.
func (h *Handlers) Summary(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	cattleID, err := parseCattleID(c)
	if err != nil {
		return response.NotFound(c, ErrCattleNotFound.Error())
	}
	days := c.QueryInt("days", 0)
	if days < 0 {
		days = 0
	}
	out, err := h.Service.Summary(c.Context(), userID, cattleID, days)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Summary retrieved", out, nil)
}

// AddHealth POST /api/v1/cattle/:id/health.
func (h *Handlers) AddHealth(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	cattleID, err := parseCattleID(c)
	if err != nil {
		return response.NotFound(c, ErrCattleNotFound.Error())
	}
	var req HealthInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrHealthIssueRequired.Error(), fiber.StatusBadRequest, nil)
	}
	out, err := h.Service.AddHealthRecord(c.Context(), userID, cattleID, req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.SuccessCreated(c, "Health record added", fiber.Map{"health_record": out}, nil)
}

// ListHealth GET /api/v1/cattle/:id/health?page&limit.
func (h *Handlers) ListHealth(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	cattleID, err := parseCattleID(c)
	if err != nil {
		return response.NotFound(c, ErrCattleNotFound.Error())
	}
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	rows, total, err := h.Service.ListHealthRecords(c.Context(), userID, cattleID, page, limit)
	if err != nil {
		return mapServiceError(c, err)
	}
	return response.Success(c, "Health records retrieved", fiber.Map{"health_records": rows}, fiber.Map{
		"page": page, "limit": limit, "total": total,
	})
}

// Report GET /api/v1/cattle/:id/report?start&end: PDF download.
func (h *Handlers) Report(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	cattleID, err := parseCattleID(c)
	if err != nil {
		return response.NotFound(c, ErrCattleNotFound.Error())
	}
	start, err := time.Parse(dateLayout, c.Query("start"))
	if err != nil {
		return response.Error(c, ErrInvalidDateRange.Error(), fiber.StatusBadRequest, nil)
	}
	end, err := time.Parse(dateLayout, c.Query("end"))
	if err != nil {
		return response.Error(c, ErrInvalidDateRange.Error(), fiber.StatusBadRequest, nil)
	}

	farmName := "My Farm"
	if name := sessionFullName(c); name != "" {
		farmName = name
	}

	pdf, err := h.Service.BuildReport(c.Context(), userID, cattleID, start, end, farmName)
	if err != nil {
		return mapServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="cattle-report-%s.pdf"`, c.Params("id")))
	return c.Send(pdf)
}

func sessionFullName(c *fiber.Ctx) string {
	if m, ok := middleware.GetUser(c).(map[string]interface{}); ok {
		name, _ := m["full_name"].(string)
		return name
	}
	return ""
}
