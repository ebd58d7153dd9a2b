package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dentalcloud-api/internal/application/audit"
	"github.com/jhoicas/dentalcloud-api/internal/application/auth"
	"github.com/jhoicas/dentalcloud-api/internal/application/dto"
	"github.com/jhoicas/dentalcloud-api/internal/application/fiscal"
	"github.com/jhoicas/dentalcloud-api/internal/application/signing"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	CertificateUC *signing.CertificateUseCase
	SignatureUC   *signing.SignatureUseCase
	FECUC         *fiscal.FECUseCase
	ReportUC      *fiscal.ReportUseCase
	PeriodUC      *fiscal.PeriodUseCase
	AuditJournal  *audit.Journal
	JWTSecret     string
}

// Health godoc
// @Summary  Liveness
// @Tags     health
// @Produce  json
// @Success  200  {object}  dto.HealthResponse
// @Router   /health [get]
func Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{Status: "ok"})
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", Health)

	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleAccountant, entity.RoleDentist)
	accounting := RequireRole(entity.RoleAdmin, entity.RoleAccountant)

	// Certificados: la emisión es solo para admin
	certs := protected.Group("/certificates")
	certHandler := NewCertificateHandler(deps.CertificateUC)
	certs.Post("/", RequireRole(entity.RoleAdmin), certHandler.Issue)
	certs.Get("/me", anyRole, certHandler.Me)

	// Firmas
	sigs := protected.Group("/signatures", anyRole)
	sigHandler := NewSignatureHandler(deps.SignatureUC)
	sigs.Post("/", sigHandler.Sign)
	sigs.Post("/verify", sigHandler.Verify)

	// Exportaciones fiscales
	fiscalHandler := NewFiscalHandler(deps.FECUC, deps.ReportUC)
	fiscalGroup := protected.Group("/fiscal", accounting)
	fiscalGroup.Get("/fec", fiscalHandler.FEC)
	fiscalGroup.Get("/reports/period", fiscalHandler.PeriodReport)
	fiscalGroup.Get("/reports/vat/:year", fiscalHandler.AnnualVAT)

	// Periodos: abrir y sellar es solo para admin
	periodHandler := NewPeriodHandler(deps.PeriodUC)
	fiscalGroup.Get("/periods", periodHandler.List)
	fiscalGroup.Post("/periods", RequireRole(entity.RoleAdmin), periodHandler.Create)
	fiscalGroup.Post("/periods/:id/seal", RequireRole(entity.RoleAdmin), periodHandler.Seal)
	fiscalGroup.Get("/periods/:id/verify", periodHandler.VerifySeal)

	// Auditoría
	auditHandler := NewAuditHandler(deps.AuditJournal)
	auditGroup := protected.Group("/audit", accounting)
	auditGroup.Get("/", auditHandler.Entries)
	auditGroup.Get("/verify", auditHandler.Verify)

	protected.Get("/credit-notes/:id/pdf", anyRole, fiscalHandler.CreditNotePDF)
}
