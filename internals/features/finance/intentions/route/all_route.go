package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	controller "gabkutschola_backend/internals/features/finance/intentions/controller"
)

// IntentionRoutes mounts the staff-facing intention endpoints.
func IntentionRoutes(r fiber.Router, db *gorm.DB) {
	h := controller.NewPaymentIntentionController(db)

	gr := r.Group("/intentions")
	gr.Post("/", h.CreateIntention)
	gr.Get("/", h.ListIntentions)
	gr.Get("/:id", h.GetByID)
	gr.Post("/:id/cancel", h.CancelIntention)
}
