package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	dto "gabkutschola_backend/internals/features/finance/reconciliation/dto"
	service "gabkutschola_backend/internals/features/finance/reconciliation/service"
	helper "gabkutschola_backend/internals/helpers"
)

type GatewayWebhookController struct {
	Matcher *service.Matcher
}

func NewGatewayWebhookController(m *service.Matcher) *GatewayWebhookController {
	return &GatewayWebhookController{Matcher: m}
}

/* =======================================================================
   POST /api/gateway/confirmations

   Response contract with the gateway: every terminally handled delivery
   (matched, duplicate, ignored, unmatched) gets a 2xx so its retry
   policy stays quiet. Only authentication failures (401) and malformed
   payloads (400) are rejections; 500 means "nothing written, retry".
======================================================================= */

func (h *GatewayWebhookController) HandleConfirmation(c *fiber.Ctx) error {
	var req dto.GatewayConfirmationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}

	// Fail closed before anything else; an unauthenticated caller leaves
	// no trace, not even an audit row.
	if err := h.Matcher.Authenticate(req.MerchantID, req.SharedSecret); err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "authentication failed")
	}

	if err := helper.ValidateStruct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	ev, err := req.ToEvent()
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, err.Error())
	}

	// Keep the body as delivered for the audit log.
	raw := make([]byte, len(c.Body()))
	copy(raw, c.Body())
	ev.Raw = datatypes.JSON(raw)

	res, err := h.Matcher.Process(c.UserContext(), ev)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "reconciliation failed, retry later")
	}

	out := fiber.Map{
		"outcome":   res.Outcome,
		"ambiguous": res.Ambiguous,
	}
	if res.Entry != nil {
		out["receipt_number"] = res.Entry.LedgerEntryReceiptNumber
	}
	return helper.Success(c, "confirmation "+string(res.Outcome), out)
}
