package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "gabkutschola_backend/internals/features/finance/intentions/dto"
	model "gabkutschola_backend/internals/features/finance/intentions/model"
	service "gabkutschola_backend/internals/features/finance/intentions/service"
	helper "gabkutschola_backend/internals/helpers"
)

type PaymentIntentionController struct {
	DB *gorm.DB
}

func NewPaymentIntentionController(db *gorm.DB) *PaymentIntentionController {
	return &PaymentIntentionController{DB: db}
}

/* =======================================================================
   Create
   POST /api/a/intentions
======================================================================= */

func (h *PaymentIntentionController) CreateIntention(c *fiber.Ctx) error {
	var req dto.CreatePaymentIntentionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	if err := req.Validate(); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, err.Error())
	}

	m, err := req.ToModel()
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.DB.WithContext(c.UserContext()).Create(m).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	// Checkout bootstrap is best-effort: a missing token never cancels the
	// intention, the payer can still pay through any gateway channel.
	if m.PaymentIntentionProvider != nil &&
		*m.PaymentIntentionProvider == string(model.CheckoutProviderMidtrans) &&
		service.CheckoutEnabled() {
		token, url, cerr := service.GenerateCheckoutToken(m)
		if cerr != nil {
			log.Printf("[WARN] checkout token for intention %s failed: %v", m.PaymentIntentionID, cerr)
		} else {
			m.PaymentIntentionCheckoutToken = &token
			m.PaymentIntentionCheckoutURL = &url
			if uerr := h.DB.WithContext(c.UserContext()).
				Model(&model.PaymentIntentionModel{}).
				Where("payment_intention_id = ?", m.PaymentIntentionID).
				Updates(map[string]interface{}{
					"payment_intention_checkout_token": token,
					"payment_intention_checkout_url":   url,
				}).Error; uerr != nil {
				log.Printf("[WARN] persist checkout token for %s failed: %v", m.PaymentIntentionID, uerr)
			}
		}
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated, "intention created", dto.FromModel(m))
}

/* =======================================================================
   List (filter + pagination)
   GET /api/a/intentions?reference=&status=&student_id=&page=&per_page=
======================================================================= */

func (h *PaymentIntentionController) ListIntentions(c *fiber.Ctx) error {
	db := h.DB.WithContext(c.UserContext()).Model(&model.PaymentIntentionModel{})

	if ref := strings.TrimSpace(c.Query("reference")); ref != "" {
		db = db.Where("payment_intention_reference = ?", ref)
	}
	if st := strings.ToLower(strings.TrimSpace(c.Query("status"))); st != "" {
		switch model.IntentionStatus(st) {
		case model.IntentionStatusPending, model.IntentionStatusConfirmed, model.IntentionStatusCancelled:
			db = db.Where("payment_intention_status = ?", st)
		default:
			return helper.Error(c, fiber.StatusBadRequest, "invalid status")
		}
	}
	if sid := strings.TrimSpace(c.Query("student_id")); sid != "" {
		id, err := uuid.Parse(sid)
		if err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "invalid student_id")
		}
		db = db.Where("payment_intention_student_id = ?", id)
	}

	p := helper.ParsePagination(c)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	var rows []model.PaymentIntentionModel
	if err := db.Order("payment_intention_created_at DESC").
		Limit(p.PerPage).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.PagedResponse(c, p, total, dto.FromModels(rows))
}

/* =======================================================================
   Detail
   GET /api/a/intentions/:id
======================================================================= */

func (h *PaymentIntentionController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid id")
	}

	var m model.PaymentIntentionModel
	if err := h.DB.WithContext(c.UserContext()).
		First(&m, "payment_intention_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "intention not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.Success(c, "ok", dto.FromModel(&m))
}

/* =======================================================================
   Cancel (guarded, pending only)
   POST /api/a/intentions/:id/cancel
======================================================================= */

func (h *PaymentIntentionController) CancelIntention(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid id")
	}

	now := time.Now().UTC()
	res := h.DB.WithContext(c.UserContext()).
		Model(&model.PaymentIntentionModel{}).
		Where("payment_intention_id = ? AND payment_intention_status = ?", id, model.IntentionStatusPending).
		Updates(map[string]interface{}{
			"payment_intention_status":       model.IntentionStatusCancelled,
			"payment_intention_cancelled_at": now,
		})
	if res.Error != nil {
		return helper.Error(c, fiber.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		// Either unknown or already terminal; tell the caller which.
		var m model.PaymentIntentionModel
		if ferr := h.DB.First(&m, "payment_intention_id = ?", id).Error; ferr != nil {
			return helper.Error(c, fiber.StatusNotFound, "intention not found")
		}
		return helper.Error(c, fiber.StatusConflict, "intention is not pending")
	}

	var m model.PaymentIntentionModel
	if err := h.DB.First(&m, "payment_intention_id = ?", id).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "intention cancelled", dto.FromModel(&m))
}
