package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/telesales/callops-service/internal/api/dto"
	"github.com/telesales/callops-service/internal/auth"
	"github.com/telesales/callops-service/internal/domain"
	"github.com/telesales/callops-service/internal/repository"
	"github.com/telesales/callops-service/internal/service"
	apperrors "github.com/telesales/callops-service/pkg/util"
)

// TasksAdminHandler serves the management task maintenance endpoints.
type TasksAdminHandler struct {
	service *service.QueueService
}

// NewTasksAdminHandler constructs handler.
func NewTasksAdminHandler(queueService *service.QueueService) *TasksAdminHandler {
	return &TasksAdminHandler{service: queueService}
}

// List GET /tasks. Supports operator_id, client_id, type and status filters.
func (h *TasksAdminHandler) List(c *fiber.Ctx) error {
	filter := repository.TaskFilter{}
	if v := c.Query("operator_id"); v != "" {
		filter.AssignedTo = &v
	}
	if v := c.Query("client_id"); v != "" {
		filter.ClientID = &v
	}
	if v := c.Query("type"); v != "" {
		callType := domain.CallType(v)
		filter.Type = &callType
	}
	if v := c.Query("status"); v != "" {
		for _, s := range strings.Split(v, ",") {
			filter.Statuses = append(filter.Statuses, domain.TaskStatus(strings.TrimSpace(s)))
		}
	}

	tasks, err := h.service.ListTasks(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, dto.NewTaskResponse(&tasks[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Recover POST /tasks/:id/recover.
func (h *TasksAdminHandler) Recover(c *fiber.Ctx) error {
	if err := h.service.RecoverTask(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Delete DELETE /tasks/:id.
func (h *TasksAdminHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.DeleteTask(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ClearQueue DELETE /tasks/operator/:operatorId.
func (h *TasksAdminHandler) ClearQueue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.ClearOperatorQueue(c.Context(), c.Params("operatorId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// RemoveDuplicates POST /tasks/deduplicate.
func (h *TasksAdminHandler) RemoveDuplicates(c *fiber.Ctx) error {
	removed, err := h.service.RemoveDuplicates(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"removed": removed}})
}
