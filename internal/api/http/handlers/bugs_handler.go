package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bug-tracker/internal/api/dto"
	"github.com/spec-kit/bug-tracker/internal/service"
	apperrors "github.com/spec-kit/bug-tracker/pkg/util"
)

// BugsHandler manages bug endpoints.
type BugsHandler struct {
	service *service.BugService
}

// NewBugsHandler constructs handler.
func NewBugsHandler(bugService *service.BugService) *BugsHandler {
	return &BugsHandler{service: bugService}
}

// CreateBug POST /bugs.
func (h *BugsHandler) CreateBug(c *fiber.Ctx) error {
	var req dto.CreateBugRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid JSON payload", nil)
	}

	bug, err := h.service.CreateBug(c.UserContext(), service.BugCreateInput{
		Title:       dto.Deref(req.Title),
		Description: dto.Deref(req.Description),
		ReportedBy:  dto.Deref(req.ReportedBy),
		Severity:    req.Severity,
		Priority:    dto.PriorityText(req.Priority),
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    bug,
		"message": "Bug created successfully",
	})
}

// ListBugs GET /bugs.
func (h *BugsHandler) ListBugs(c *fiber.Ctx) error {
	bugs, err := h.service.ListBugs(c.UserContext(), service.BugListFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		SortBy:   c.Query("sortBy"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(bugs),
		"data":    bugs,
	})
}

// GetBug GET /bugs/:id.
func (h *BugsHandler) GetBug(c *fiber.Ctx) error {
	bug, err := h.service.GetBug(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": bug})
}

// UpdateBug PUT /bugs/:id.
func (h *BugsHandler) UpdateBug(c *fiber.Ctx) error {
	var req dto.UpdateBugRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid JSON payload", nil)
	}

	bug, err := h.service.UpdateBug(c.UserContext(), c.Params("id"), service.BugUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		Priority:    dto.PriorityText(req.Priority),
		Status:      req.Status,
		ReportedBy:  req.ReportedBy,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    bug,
		"message": "Bug updated successfully",
	})
}

// DeleteBug DELETE /bugs/:id.
func (h *BugsHandler) DeleteBug(c *fiber.Ctx) error {
	if err := h.service.DeleteBug(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Bug deleted successfully"})
}
