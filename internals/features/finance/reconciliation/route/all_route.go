package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	controller "gabkutschola_backend/internals/features/finance/reconciliation/controller"
	service "gabkutschola_backend/internals/features/finance/reconciliation/service"
)

// WebhookRoutes mounts the public gateway callback. Authentication is
// in-band (merchant credentials in the payload), not JWT.
func WebhookRoutes(r fiber.Router, matcher *service.Matcher) {
	h := controller.NewGatewayWebhookController(matcher)
	r.Post("/confirmations", h.HandleConfirmation)
}

// StaffRoutes mounts the ledger, anomaly and audit endpoints (JWT group).
func StaffRoutes(r fiber.Router, db *gorm.DB, ledger *service.LedgerService) {
	lh := controller.NewLedgerController(db, ledger)
	gr := r.Group("/ledger")
	gr.Get("/", lh.ListEntries)
	gr.Get("/:id", lh.GetByID)
	gr.Post("/:id/cancel", lh.CancelEntry)

	uh := controller.NewUnmatchedConfirmationController(db)
	ar := r.Group("/anomalies")
	ar.Get("/", uh.ListAnomalies)
	ar.Patch("/:id", uh.ReviewAnomaly)

	eh := controller.NewGatewayEventController(db)
	er := r.Group("/gateway-events")
	er.Get("/", eh.ListEvents)
	er.Get("/:id", eh.GetByID)
}
