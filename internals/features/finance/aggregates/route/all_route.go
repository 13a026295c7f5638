package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	controller "gabkutschola_backend/internals/features/finance/aggregates/controller"
	service "gabkutschola_backend/internals/features/finance/aggregates/service"
)

// AggregateRoutes mounts the derived-balance reads and the fee schedule
// planning endpoints (staff group).
func AggregateRoutes(r fiber.Router, db *gorm.DB, rec *service.Recomputer) {
	h := controller.NewAggregatesController(db, rec)

	r.Get("/students/:id/account", h.GetStudentAccount)
	r.Get("/classes/:id/revenue", h.GetClassRevenue)
	r.Post("/aggregates/recompute", h.RecomputeAll)

	r.Put("/fee-schedules", h.UpsertFeeSchedule)
	r.Get("/fee-schedules", h.ListFeeSchedules)
}
