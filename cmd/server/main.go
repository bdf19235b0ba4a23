package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"campusevents/config"
	_ "campusevents/docs"
	"campusevents/internal/adapters/auth"
	"campusevents/internal/adapters/email"
	"campusevents/internal/adapters/qrcode"
	delivery "campusevents/internal/delivery/http"
	"campusevents/internal/delivery/http/controllers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/repository/postgres"
	"campusevents/internal/services"
	"campusevents/migrations"
)

const contextTimeout = 5 * time.Second

// @title CampusEvents API
// @version 1.0
// @description Event registration, waitlist, check-in, and certificate API.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("goose dialect: %v", err)
	}
	if err := goose.Up(db, "."); err != nil {
		log.Fatalf("goose up: %v", err)
	}
	logger.Info("migrations applied")

	store := postgres.NewStore(db)
	eventRepo := postgres.NewEventRepository(store)
	venueRepo := postgres.NewVenueRepository(store)
	regRepo := postgres.NewRegistrationRepository(store)
	waitlistRepo := postgres.NewWaitlistRepository(store)
	certRepo := postgres.NewCertificateRepository(store)
	userRepo := postgres.NewUserRepository(store)

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	qr := qrcode.NewURLRenderer(cfg.QRBaseURL, cfg.QRSize)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailProvider,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	})
	if err != nil {
		log.Fatalf("init mailer: %v", err)
	}
	renderer := email.NewTemplateRenderer()

	registry := services.NewEventRegistry(eventRepo)
	ledger := services.NewRegistrationLedger(regRepo)
	waitlist := services.NewWaitlistQueue(waitlistRepo)
	tokens := services.NewCheckinTokenService(regRepo)
	certs := services.NewCertificateIssuer(certRepo, regRepo)
	audit := services.NewSlogAuditSink(logger)
	notifier := services.NewNotificationService(userRepo, eventRepo, renderer, mailer)
	orchestrator := services.NewRegistrationOrchestrator(
		store, registry, ledger, waitlist, tokens, certs, qr, audit, notifier, logger, contextTimeout,
	)
	eventService := services.NewEventService(eventRepo, venueRepo, regRepo, waitlistRepo, certRepo, contextTimeout)
	authService := services.NewAuthService(userRepo, hasher, issuer, cfg.JWTExpiry, contextTimeout)

	authController := controllers.NewAuthController(logger, authService)
	eventController := controllers.NewEventController(logger, eventService)
	registrationController := controllers.NewRegistrationController(
		logger, orchestrator, ledger, waitlist, eventService, qr,
	)
	checkinController := controllers.NewCheckinController(logger, orchestrator)
	certificateController := controllers.NewCertificateController(logger, orchestrator, certs)

	mux := delivery.NewRouter(
		logger, verifier,
		authController, eventController, registrationController,
		checkinController, certificateController,
	)

	var handler http.Handler = mux
	if cfg.CORSAllowedOrigins != "" {
		handler = middleware.CORS(strings.Split(cfg.CORSAllowedOrigins, ","), handler)
	}
	handler = middleware.LoggingMiddleware(logger, handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr, "env", cfg.Environment)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Fatalf("server: %v", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "err", fmt.Sprintf("%v", err))
		return
	}
	logger.Info("server stopped")
}
