package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/telesales/callops-service/internal/api/dto"
	"github.com/telesales/callops-service/internal/domain"
	"github.com/telesales/callops-service/internal/repository"
	apperrors "github.com/telesales/callops-service/pkg/util"
)

// ClientsHandler serves client directory endpoints.
type ClientsHandler struct {
	clients repository.ClientRepository
	calls   repository.CallRepository
}

// NewClientsHandler constructs handler.
func NewClientsHandler(clients repository.ClientRepository, calls repository.CallRepository) *ClientsHandler {
	return &ClientsHandler{clients: clients, calls: calls}
}

// List GET /clients.
func (h *ClientsHandler) List(c *fiber.Ctx) error {
	clients, err := h.clients.List(c.Context())
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		items = append(items, dto.NewClientResponse(&clients[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Save POST /clients: manual upsert keyed on the normalized phone,
// merging equipment items with any existing record.
func (h *ClientsHandler) Save(c *fiber.Ctx) error {
	var req dto.UpsertClientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("name is required", nil)
	}
	if domain.NormalizePhone(req.Phone) == "" {
		return apperrors.NewValidationError("phone is required", nil)
	}

	client := &domain.Client{
		Name:         strings.TrimSpace(req.Name),
		Phone:        req.Phone,
		Address:      strings.TrimSpace(req.Address),
		Items:        req.Items,
		Acceptance:   req.Acceptance,
		Satisfaction: req.Satisfaction,
	}
	if err := h.clients.Upsert(c.Context(), client); err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewClientResponse(client)})
}

// Get GET /clients/:id.
func (h *ClientsHandler) Get(c *fiber.Ctx) error {
	client, err := h.clients.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("client", map[string]any{"client_id": c.Params("id")})
		}
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewClientResponse(client)})
}

// Calls GET /calls: full call history, newest first as stored.
func (h *ClientsHandler) Calls(c *fiber.Ctx) error {
	calls, err := h.calls.List(c.Context())
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.CallResponse, 0, len(calls))
	for i := range calls {
		items = append(items, dto.NewCallResponse(&calls[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
