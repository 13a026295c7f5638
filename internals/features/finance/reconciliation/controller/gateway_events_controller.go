package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	model "gabkutschola_backend/internals/features/finance/reconciliation/model"
	helper "gabkutschola_backend/internals/helpers"
)

// Read-only audit trail of confirmation deliveries, ambiguous matches
// included.
type GatewayEventController struct {
	DB *gorm.DB
}

func NewGatewayEventController(db *gorm.DB) *GatewayEventController {
	return &GatewayEventController{DB: db}
}

// GET /api/a/gateway-events?outcome=&reference=&ambiguous=
func (h *GatewayEventController) ListEvents(c *fiber.Ctx) error {
	db := h.DB.WithContext(c.UserContext()).Model(&model.GatewayEventModel{})

	if out := strings.ToLower(strings.TrimSpace(c.Query("outcome"))); out != "" {
		switch model.GatewayEventOutcome(out) {
		case model.GatewayEventOutcomeMatched, model.GatewayEventOutcomeDuplicate,
			model.GatewayEventOutcomeIgnored, model.GatewayEventOutcomeUnmatched,
			model.GatewayEventOutcomeFailed:
			db = db.Where("gateway_event_outcome = ?", out)
		default:
			return helper.Error(c, fiber.StatusBadRequest, "invalid outcome")
		}
	}
	if ref := strings.TrimSpace(c.Query("reference")); ref != "" {
		db = db.Where("gateway_event_reference = ?", ref)
	}
	if amb := strings.TrimSpace(c.Query("ambiguous")); amb != "" {
		db = db.Where("gateway_event_ambiguous = ?", amb == "true" || amb == "1")
	}

	p := helper.ParsePagination(c)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.GatewayEventModel
	if err := db.Order("gateway_event_received_at DESC").
		Limit(p.PerPage).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.PagedResponse(c, p, total, rows)
}

// GET /api/a/gateway-events/:id
func (h *GatewayEventController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid id")
	}

	var m model.GatewayEventModel
	if err := h.DB.WithContext(c.UserContext()).
		First(&m, "gateway_event_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "event not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "ok", m)
}
