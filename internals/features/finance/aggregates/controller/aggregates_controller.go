package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	model "gabkutschola_backend/internals/features/finance/aggregates/model"
	service "gabkutschola_backend/internals/features/finance/aggregates/service"
	helper "gabkutschola_backend/internals/helpers"
)

type AggregatesController struct {
	DB         *gorm.DB
	Recomputer *service.Recomputer
}

func NewAggregatesController(db *gorm.DB, rec *service.Recomputer) *AggregatesController {
	return &AggregatesController{DB: db, Recomputer: rec}
}

/* =======================================================================
   Derived reads
======================================================================= */

// GET /api/a/students/:id/account
func (h *AggregatesController) GetStudentAccount(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid student id")
	}

	var acc model.StudentAccountModel
	if err := h.DB.WithContext(c.UserContext()).
		First(&acc, "student_account_student_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "no account for this student yet")
		}
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "ok", acc)
}

// GET /api/a/classes/:id/revenue
func (h *AggregatesController) GetClassRevenue(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid class id")
	}

	var rev model.ClassRevenueModel
	if err := h.DB.WithContext(c.UserContext()).
		First(&rev, "class_revenue_class_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "no revenue row for this class yet")
		}
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "ok", rev)
}

// POST /api/a/aggregates/recompute (full rebuild, safe to run any time)
func (h *AggregatesController) RecomputeAll(c *fiber.Ctx) error {
	touched, err := h.Recomputer.RecomputeAll(c.UserContext())
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "aggregates recomputed", fiber.Map{"rows": touched})
}

/* =======================================================================
   Fee schedule (planning input)
======================================================================= */

type upsertFeeScheduleRequest struct {
	ClassID       uuid.UUID `json:"class_id" validate:"required"`
	Period        string    `json:"period" validate:"required"`
	Amount        int64     `json:"amount" validate:"gte=0"`
	EnrolledCount int64     `json:"enrolled_count" validate:"gte=0"`
}

// PUT /api/a/fee-schedules
func (h *AggregatesController) UpsertFeeSchedule(c *fiber.Ctx) error {
	var req upsertFeeScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	row := &model.FeeScheduleModel{
		FeeScheduleClassID:       req.ClassID,
		FeeSchedulePeriod:        strings.TrimSpace(req.Period),
		FeeScheduleAmount:        req.Amount,
		FeeScheduleEnrolledCount: req.EnrolledCount,
	}
	if err := h.DB.WithContext(c.UserContext()).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "fee_schedule_class_id"},
			{Name: "fee_schedule_period"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"fee_schedule_amount",
			"fee_schedule_enrolled_count",
			"fee_schedule_updated_at",
		}),
	}).Create(row).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	// The plan changed, so the derived rows for this class are stale.
	if _, err := h.Recomputer.RecomputeClass(c.UserContext(), req.ClassID); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.Success(c, "fee schedule saved", row)
}

// GET /api/a/fee-schedules?class_id=
func (h *AggregatesController) ListFeeSchedules(c *fiber.Ctx) error {
	db := h.DB.WithContext(c.UserContext()).Model(&model.FeeScheduleModel{})

	if cid := strings.TrimSpace(c.Query("class_id")); cid != "" {
		id, err := uuid.Parse(cid)
		if err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "invalid class_id")
		}
		db = db.Where("fee_schedule_class_id = ?", id)
	}

	var rows []model.FeeScheduleModel
	if err := db.Order("fee_schedule_period ASC").Find(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "ok", rows)
}
