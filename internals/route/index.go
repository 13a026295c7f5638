package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"gabkutschola_backend/internals/configs"
	authMiddleware "gabkutschola_backend/internals/middlewares/auth"

	aggregatesRoute "gabkutschola_backend/internals/features/finance/aggregates/route"
	aggregatesService "gabkutschola_backend/internals/features/finance/aggregates/service"
	intentionsRoute "gabkutschola_backend/internals/features/finance/intentions/route"
	reconciliationRoute "gabkutschola_backend/internals/features/finance/reconciliation/route"
	reconciliationService "gabkutschola_backend/internals/features/finance/reconciliation/service"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	recomputer := aggregatesService.NewRecomputer(db)

	matcher := &reconciliationService.Matcher{
		DB: db,
		Credentials: reconciliationService.GatewayCredentials{
			MerchantID:       configs.GatewayMerchantID,
			SharedSecret:     configs.GatewaySharedSecret,
			SharedSecretHash: configs.GatewaySharedSecretHash,
		},
		Recomputer: recomputer,
		Notifier:   reconciliationService.LogNotifier{},
		Alerter:    reconciliationService.LogNotifier{},
	}
	ledger := reconciliationService.NewLedgerService(db, recomputer)

	// ===================== PUBLIC (gateway callback) =====================
	log.Println("[INFO] Setting up gateway webhook routes...")
	gateway := app.Group("/api/gateway")
	reconciliationRoute.WebhookRoutes(gateway, matcher)

	// ===================== STAFF (JWT) =====================
	log.Println("[INFO] Setting up staff routes...")
	staff := app.Group("/api/a",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:              configs.JWTSecret,
			AllowCookieFallback: true,
		}),
	)
	intentionsRoute.IntentionRoutes(staff, db)
	reconciliationRoute.StaffRoutes(staff, db, ledger)
	aggregatesRoute.AggregateRoutes(staff, db, recomputer)
}
