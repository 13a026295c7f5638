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
	service "gabkutschola_backend/internals/features/finance/reconciliation/service"
	helper "gabkutschola_backend/internals/helpers"
)

type LedgerController struct {
	DB     *gorm.DB
	Ledger *service.LedgerService
}

func NewLedgerController(db *gorm.DB, ledger *service.LedgerService) *LedgerController {
	return &LedgerController{DB: db, Ledger: ledger}
}

/* =======================================================================
   List (filter + pagination)
   GET /api/a/ledger?reference=&student_id=&class_id=&status=&start=&end=
======================================================================= */

func (h *LedgerController) ListEntries(c *fiber.Ctx) error {
	db := h.DB.WithContext(c.UserContext()).Model(&model.LedgerEntryModel{})

	if ref := strings.TrimSpace(c.Query("reference")); ref != "" {
		db = db.Where("ledger_entry_reference = ?", ref)
	}
	if sid := strings.TrimSpace(c.Query("student_id")); sid != "" {
		id, err := uuid.Parse(sid)
		if err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "invalid student_id")
		}
		db = db.Where("ledger_entry_student_id = ?", id)
	}
	if cid := strings.TrimSpace(c.Query("class_id")); cid != "" {
		id, err := uuid.Parse(cid)
		if err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "invalid class_id")
		}
		db = db.Where("ledger_entry_class_id = ?", id)
	}
	if st := strings.ToLower(strings.TrimSpace(c.Query("status"))); st != "" {
		switch model.LedgerEntryStatus(st) {
		case model.LedgerEntryStatusValidated, model.LedgerEntryStatusCancelled:
			db = db.Where("ledger_entry_status = ?", st)
		default:
			return helper.Error(c, fiber.StatusBadRequest, "invalid status")
		}
	}
	if start := strings.TrimSpace(c.Query("start")); start != "" {
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "invalid start (use RFC3339)")
		}
		db = db.Where("ledger_entry_created_at >= ?", t)
	}
	if end := strings.TrimSpace(c.Query("end")); end != "" {
		t, err := time.Parse(time.RFC3339, end)
		if err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "invalid end (use RFC3339)")
		}
		db = db.Where("ledger_entry_created_at < ?", t)
	}

	p := helper.ParsePagination(c)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.LedgerEntryModel
	if err := db.Order("ledger_entry_created_at DESC").
		Limit(p.PerPage).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.PagedResponse(c, p, total, dto.FromLedgerEntryModels(rows))
}

/* =======================================================================
   Detail (by id or by receipt number)
   GET /api/a/ledger/:id
======================================================================= */

func (h *LedgerController) GetByID(c *fiber.Ctx) error {
	param := strings.TrimSpace(c.Params("id"))

	var m model.LedgerEntryModel
	var err error
	if id, perr := uuid.Parse(param); perr == nil {
		err = h.DB.WithContext(c.UserContext()).First(&m, "ledger_entry_id = ?", id).Error
	} else {
		err = h.DB.WithContext(c.UserContext()).First(&m, "ledger_entry_receipt_number = ?", param).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "ledger entry not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.Success(c, "ok", dto.FromLedgerEntryModel(&m))
}

/* =======================================================================
   Cancel (the only legal mutation)
   POST /api/a/ledger/:id/cancel  {"reason": "..."}
======================================================================= */

func (h *LedgerController) CancelEntry(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid id")
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return helper.Error(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}

	entry, err := h.Ledger.Cancel(c.UserContext(), id, body.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEntryNotFound):
			return helper.Error(c, fiber.StatusNotFound, "ledger entry not found")
		case errors.Is(err, service.ErrEntryNotCancellable):
			return helper.Error(c, fiber.StatusConflict, "ledger entry is not validated")
		default:
			return helper.Error(c, fiber.StatusInternalServerError, err.Error())
		}
	}

	return helper.Success(c, "ledger entry cancelled", dto.FromLedgerEntryModel(entry))
}
