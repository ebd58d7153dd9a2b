package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/dentalcloud-api/docs"
	"github.com/jhoicas/dentalcloud-api/internal/application/audit"
	"github.com/jhoicas/dentalcloud-api/internal/application/auth"
	"github.com/jhoicas/dentalcloud-api/internal/application/dto"
	"github.com/jhoicas/dentalcloud-api/internal/application/fiscal"
	"github.com/jhoicas/dentalcloud-api/internal/application/signing"
	"github.com/jhoicas/dentalcloud-api/internal/infrastructure/export"
	"github.com/jhoicas/dentalcloud-api/internal/infrastructure/keyvault"
	infrapdf "github.com/jhoicas/dentalcloud-api/internal/infrastructure/pdf"
	"github.com/jhoicas/dentalcloud-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/dentalcloud-api/internal/interfaces/http"
	"github.com/jhoicas/dentalcloud-api/pkg/config"
	"github.com/jhoicas/dentalcloud-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("hash_source", cfg.Signing.HashSource).
		Str("resign_policy", cfg.Signing.ResignPolicy).
		Msg("iniciando aplicación")

	masterKey, err := cfg.Signing.MasterKeyBytes()
	if err != nil {
		log.Fatal().Err(err).Msg("llave maestra de firma")
	}
	vault, err := keyvault.New(masterKey)
	if err != nil {
		log.Fatal().Err(err).Msg("keyvault")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	labRepo := postgres.NewLaboratoryRepository(pool)
	patientRepo := postgres.NewPatientRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	certRepo := postgres.NewCertificateRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	creditNoteRepo := postgres.NewCreditNoteRepository(pool)
	docRepo := postgres.NewSignableDocumentRepository(pool)
	periodRepo := postgres.NewFiscalPeriodRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	journal := audit.NewJournal(postgres.NewAuditLogRepository(pool), log.Component("audit"))

	// Hash: funciones SQL de la base o implementación Go del contrato v1
	var hasher signing.HashCalculator
	switch cfg.Signing.HashSource {
	case config.HashSourceNative:
		hasher = signing.NewNativeHashCalculator(invoiceRepo, creditNoteRepo, labRepo)
	default:
		hasher = postgres.NewHashCalculator(pool)
	}

	certUC := signing.NewCertificateUseCase(labRepo, certRepo, txRunner, vault, journal, signing.Config{
		KeyBits:       cfg.Signing.KeyBits,
		ValidityYears: cfg.Signing.ValidityYears,
		IssuerOrg:     cfg.Signing.IssuerOrg,
		Country:       cfg.Signing.Country,
	}, log.Component("certificates"))
	signatureUC := signing.NewSignatureUseCase(
		docRepo, certRepo, hasher, vault, txRunner, journal, cfg.Signing.ResignPolicy, log.Component("signing"),
	)
	periodUC := fiscal.NewPeriodUseCase(
		labRepo, periodRepo, invoiceRepo, creditNoteRepo, hasher, txRunner, journal, log.Component("periods"),
	)

	fecUC := fiscal.NewFECUseCase(labRepo, invoiceRepo, paymentRepo, creditNoteRepo, map[string]fiscal.FECEncoder{
		dto.FECFormatXML:  export.NewXMLEncoder(),
		dto.FECFormatXLSX: export.NewXLSXEncoder(),
	}, log.Component("fec"))
	reportUC := fiscal.NewReportUseCase(
		labRepo, patientRepo, invoiceRepo, paymentRepo, creditNoteRepo, certRepo,
		infrapdf.NewRenderer(cfg.Fiscal.AppName), log.Component("reports"),
	)

	authUC := auth.NewAuthUseCase(userRepo, labRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30, // emisión RSA 4096 y PDFs grandes
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "DentalCloud Fiscal API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		CertificateUC: certUC,
		SignatureUC:   signatureUC,
		FECUC:         fecUC,
		ReportUC:      reportUC,
		PeriodUC:      periodUC,
		AuditJournal:  journal,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
