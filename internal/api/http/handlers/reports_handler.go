package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/telesales/callops-service/internal/persistence"
	"github.com/telesales/callops-service/internal/reporting"
	"github.com/telesales/callops-service/internal/worker"
	apperrors "github.com/telesales/callops-service/pkg/util"
)

// ReportsHandler serves the aggregation endpoints.
type ReportsHandler struct {
	reports *reporting.Service
	cache   *persistence.Redis
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *reporting.Service, cache *persistence.Redis) *ReportsHandler {
	return &ReportsHandler{reports: reports, cache: cache}
}

// Dashboard GET /reports/dashboard. Served from the Redis snapshot the
// background worker maintains; falls back to computing inline on a miss.
func (h *ReportsHandler) Dashboard(c *fiber.Ctx) error {
	snapshot, err := worker.CachedSnapshot(c.Context(), h.cache, h.reports)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": snapshot})
}

// Satisfaction GET /reports/satisfaction.
func (h *ReportsHandler) Satisfaction(c *fiber.Ctx) error {
	report, err := h.reports.Satisfaction(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// Detailed GET /reports/detailed.
func (h *ReportsHandler) Detailed(c *fiber.Ctx) error {
	stats, err := h.reports.Detailed(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// Ranking GET /reports/ranking?from=&to=. Defaults to the last 30 days.
func (h *ReportsHandler) Ranking(c *fiber.Ctx) error {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return apperrors.NewValidationError("invalid from timestamp", map[string]any{"from": v})
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return apperrors.NewValidationError("invalid to timestamp", map[string]any{"to": v})
		}
		to = parsed
	}
	if to.Before(from) {
		return apperrors.NewValidationError("to precedes from", nil)
	}

	scores, timeline, err := h.reports.Ranking(c.Context(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ranking":  scores,
		"timeline": timeline,
	}})
}
