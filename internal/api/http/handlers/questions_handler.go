package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/telesales/callops-service/internal/api/dto"
	"github.com/telesales/callops-service/internal/domain"
	"github.com/telesales/callops-service/internal/repository"
	apperrors "github.com/telesales/callops-service/pkg/util"
)

// QuestionsHandler serves questionnaire configuration endpoints.
type QuestionsHandler struct {
	questions repository.QuestionRepository
}

// NewQuestionsHandler constructs handler.
func NewQuestionsHandler(questions repository.QuestionRepository) *QuestionsHandler {
	return &QuestionsHandler{questions: questions}
}

// List GET /questions. An optional call_type query narrows to questions
// applicable to that campaign.
func (h *QuestionsHandler) List(c *fiber.Ctx) error {
	questions, err := h.questions.List(c.Context())
	if err != nil {
		return apperrors.MapError(err)
	}

	callType := c.Query("call_type")
	items := make([]dto.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		if callType != "" && !q.AppliesTo(domain.CallType(callType)) {
			continue
		}
		items = append(items, dto.NewQuestionResponse(q))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Save PUT /questions/:id.
func (h *QuestionsHandler) Save(c *fiber.Ctx) error {
	var req dto.QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ID == "" {
		req.ID = c.Params("id")
	}
	if strings.TrimSpace(req.ID) == "" || strings.TrimSpace(req.Text) == "" {
		return apperrors.NewValidationError("id and text required", nil)
	}

	question := &domain.Question{
		ID:      req.ID,
		Text:    req.Text,
		Options: req.Options,
		Type:    req.Type,
		Order:   req.Order,
		StageID: req.StageID,
	}
	if question.Type == "" {
		question.Type = domain.CallTypeAll
	}
	if err := h.questions.Save(c.Context(), question); err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": dto.NewQuestionResponse(*question)})
}

// Delete DELETE /questions/:id.
func (h *QuestionsHandler) Delete(c *fiber.Ctx) error {
	if err := h.questions.Delete(c.Context(), c.Params("id")); err != nil {
		return apperrors.MapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}
