package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "gabkutschola_backend/internals/features/finance/reconciliation/dto"
	model "gabkutschola_backend/internals/features/finance/reconciliation/model"
	helper "gabkutschola_backend/internals/helpers"
)

type UnmatchedConfirmationController struct {
	DB *gorm.DB
}

func NewUnmatchedConfirmationController(db *gorm.DB) *UnmatchedConfirmationController {
	return &UnmatchedConfirmationController{DB: db}
}

/* =======================================================================
   List
   GET /api/a/anomalies?review_status=&reference=
======================================================================= */

func (h *UnmatchedConfirmationController) ListAnomalies(c *fiber.Ctx) error {
	db := h.DB.WithContext(c.UserContext()).Model(&model.UnmatchedConfirmationModel{})

	if rs := strings.ToLower(strings.TrimSpace(c.Query("review_status"))); rs != "" {
		switch model.ReviewStatus(rs) {
		case model.ReviewStatusOpen, model.ReviewStatusResolved, model.ReviewStatusDismissed:
			db = db.Where("unmatched_confirmation_review_status = ?", rs)
		default:
			return helper.Error(c, fiber.StatusBadRequest, "invalid review_status")
		}
	}
	if ref := strings.TrimSpace(c.Query("reference")); ref != "" {
		db = db.Where("unmatched_confirmation_reference = ?", ref)
	}

	p := helper.ParsePagination(c)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.UnmatchedConfirmationModel
	if err := db.Order("unmatched_confirmation_received_at DESC").
		Limit(p.PerPage).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.PagedResponse(c, p, total, rows)
}

/* =======================================================================
   Review
   PATCH /api/a/anomalies/:id

   Resolving an anomaly never creates a ledger entry. When the money is
   real, staff create the missing intention and the gateway (or an
   operator) re-submits the confirmation through the normal pipeline.
======================================================================= */

func (h *UnmatchedConfirmationController) ReviewAnomaly(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid id")
	}

	var req dto.ReviewUnmatchedConfirmationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	status, err := req.Status()
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, err.Error())
	}

	var m model.UnmatchedConfirmationModel
	if err := h.DB.WithContext(c.UserContext()).
		First(&m, "unmatched_confirmation_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "anomaly not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	updates := map[string]interface{}{
		"unmatched_confirmation_review_status": status,
	}
	if req.ResolutionNote != nil {
		updates["unmatched_confirmation_resolution_note"] = *req.ResolutionNote
	}
	if status == model.ReviewStatusResolved || status == model.ReviewStatusDismissed {
		now := time.Now().UTC()
		updates["unmatched_confirmation_resolved_at"] = now
	} else {
		updates["unmatched_confirmation_resolved_at"] = nil
	}

	if err := h.DB.WithContext(c.UserContext()).
		Model(&m).Updates(updates).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	if err := h.DB.First(&m, "unmatched_confirmation_id = ?", id).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "anomaly updated", m)
}
