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

// ProtocolsHandler serves protocol lifecycle endpoints.
type ProtocolsHandler struct {
	service *service.ProtocolService
}

// NewProtocolsHandler constructs handler.
func NewProtocolsHandler(protocolService *service.ProtocolService) *ProtocolsHandler {
	return &ProtocolsHandler{service: protocolService}
}

// Create POST /protocols.
func (h *ProtocolsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateProtocolRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	protocol, err := h.service.Create(c.Context(), principal.User, service.ProtocolCreateInput{
		ClientID:     req.ClientID,
		OwnerID:      req.OwnerID,
		DepartmentID: req.DepartmentID,
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		Origin:       domain.OriginManual,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewProtocolResponse(protocol)})
}

// List GET /protocols. Supports status and department filters.
func (h *ProtocolsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	filter := repository.ProtocolFilter{}
	if v := c.Query("department_id"); v != "" {
		filter.DepartmentID = &v
	}
	if v := c.Query("status"); v != "" {
		for _, s := range strings.Split(v, ",") {
			filter.Statuses = append(filter.Statuses, domain.ProtocolStatus(strings.TrimSpace(s)))
		}
	}

	protocols, err := h.service.List(c.Context(), principal.User, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": protocolItems(protocols)})
}

// Urgent GET /protocols/urgent.
func (h *ProtocolsHandler) Urgent(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	protocols, err := h.service.ListUrgent(c.Context(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": protocolItems(protocols)})
}

// Get GET /protocols/:id.
func (h *ProtocolsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	protocol, err := h.service.Get(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProtocolResponse(protocol)})
}

// History GET /protocols/:id/history.
func (h *ProtocolsHandler) History(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	entries, err := h.service.History(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ProtocolEventResponse, 0, len(entries))
	for _, ev := range entries {
		items = append(items, dto.NewProtocolEventResponse(ev))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ChangeStatus POST /protocols/:id/status.
func (h *ProtocolsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	protocol, err := h.service.ChangeStatus(c.Context(), principal.User, c.Params("id"), req.Status, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProtocolResponse(protocol)})
}

// SubmitResolution POST /protocols/:id/resolution.
func (h *ProtocolsHandler) SubmitResolution(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SubmitResolutionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	protocol, err := h.service.SubmitResolution(c.Context(), principal.User, c.Params("id"), req.Answers, req.Summary)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProtocolResponse(protocol)})
}

// Approve POST /protocols/:id/approve.
func (h *ProtocolsHandler) Approve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	protocol, err := h.service.Approve(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProtocolResponse(protocol)})
}

// Reject POST /protocols/:id/reject.
func (h *ProtocolsHandler) Reject(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.RejectResolutionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	protocol, err := h.service.Reject(c.Context(), principal.User, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProtocolResponse(protocol)})
}

// Reassign POST /protocols/:id/reassign.
func (h *ProtocolsHandler) Reassign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ReassignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	protocol, err := h.service.Reassign(c.Context(), principal.User, c.Params("id"), req.OwnerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProtocolResponse(protocol)})
}

// AddNote POST /protocols/:id/notes.
func (h *ProtocolsHandler) AddNote(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AddNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.AddNote(c.Context(), principal.User, c.Params("id"), req.Note); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Departments GET /protocols/departments.
func (h *ProtocolsHandler) Departments(c *fiber.Ctx) error {
	items := make([]dto.DepartmentResponse, 0, len(domain.Departments))
	for _, d := range domain.Departments {
		items = append(items, dto.DepartmentResponse{ID: d.ID, Name: d.Name})
	}
	return c.JSON(fiber.Map{"data": items})
}

func protocolItems(protocols []domain.Protocol) []dto.ProtocolResponse {
	items := make([]dto.ProtocolResponse, 0, len(protocols))
	for i := range protocols {
		items = append(items, dto.NewProtocolResponse(&protocols[i]))
	}
	return items
}
