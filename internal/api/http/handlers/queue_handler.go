package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/telesales/callops-service/internal/api/dto"
	"github.com/telesales/callops-service/internal/auth"
	"github.com/telesales/callops-service/internal/domain"
	"github.com/telesales/callops-service/internal/service"
	apperrors "github.com/telesales/callops-service/pkg/util"
)

// QueueHandler serves the operator-facing task queue endpoints.
type QueueHandler struct {
	service *service.QueueService
}

// NewQueueHandler constructs handler.
func NewQueueHandler(queueService *service.QueueService) *QueueHandler {
	return &QueueHandler{service: queueService}
}

// Import POST /queue/import. Operators import into their own queue; a
// manager may target another operator through operator_id.
func (h *QueueHandler) Import(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ImportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CallType == "" || len(req.Rows) == 0 {
		return apperrors.NewValidationError("call_type and rows required", nil)
	}

	operatorID := principal.User.ID
	if req.OperatorID != "" && req.OperatorID != operatorID {
		if !principal.Role().CanManage() {
			return apperrors.NewForbidden("cannot import into another operator's queue")
		}
		operatorID = req.OperatorID
	}

	rows := make([]service.ImportRow, 0, len(req.Rows))
	for _, r := range req.Rows {
		rows = append(rows, service.ImportRow{
			Name:      r.Name,
			Phone:     r.Phone,
			Address:   r.Address,
			Equipment: r.Equipment,
		})
	}
	created, err := h.service.ImportBatch(c.Context(), rows, operatorID, req.CallType)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ImportResponse{Created: created}})
}

// Next GET /queue/next.
func (h *QueueHandler) Next(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	task, client, recent, err := h.service.NextTask(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	resp := dto.NextTaskResponse{RecentCall: recent}
	if task != nil {
		taskResp := dto.NewTaskResponse(task)
		resp.Task = &taskResp
	}
	if client != nil {
		clientResp := dto.NewClientResponse(client)
		resp.Client = &clientResp
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Start POST /queue/tasks/:id/start.
func (h *QueueHandler) Start(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.StartCall(c.Context(), principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Complete POST /queue/tasks/:id/complete.
func (h *QueueHandler) Complete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CompleteTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	report := service.CallReport{
		Responses:     req.Responses,
		Summary:       req.Summary,
		Duration:      req.Duration,
		ReportTime:    req.ReportTime,
		NeedsProtocol: req.NeedsProtocol,
	}
	if req.StartTime != nil {
		report.StartTime = *req.StartTime
	}
	if req.Protocol != nil {
		report.Protocol = service.ProtocolDraft{
			Title:        req.Protocol.Title,
			DepartmentID: req.Protocol.DepartmentID,
			Priority:     req.Protocol.Priority,
		}
	}

	call, err := h.service.CompleteTask(c.Context(), principal.User, c.Params("id"), report)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCallResponse(call)})
}

// Skip POST /queue/tasks/:id/skip.
func (h *QueueHandler) Skip(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SkipTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.SkipTask(c.Context(), principal.User, c.Params("id"), req.Reason); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// SkipReasons GET /queue/skip-reasons.
func (h *QueueHandler) SkipReasons(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": domain.SkipReasons})
}
