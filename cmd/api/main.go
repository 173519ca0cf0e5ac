package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/johnquangdev/interview-scheduler/internal/adapter/handler"
	"github.com/johnquangdev/interview-scheduler/internal/app"
	httpmw "github.com/johnquangdev/interview-scheduler/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/interview-scheduler/pkg/config"
	"github.com/johnquangdev/interview-scheduler/pkg/jwt"
	pkgvalidator "github.com/johnquangdev/interview-scheduler/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("initializing dependencies")
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HTTPErrorHandler = handler.ErrorHandler(logger)
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("http.request",
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	callHandler := handler.NewCall(application.Pipeline, application.Provider, logger.Named("http"))
	recordHandler := handler.NewRecord(application.Store, logger.Named("http"))

	var webhookHandler *handler.WebhookHandler
	if cfg.CallProvider.WebhookSecret != "" {
		webhookHandler = handler.NewWebhookHandler(application.Pipeline, cfg.CallProvider.WebhookSecret, logger.Named("webhook"))
	} else {
		logger.Warn("CALL_PROVIDER_WEBHOOK_SECRET not set; webhook route disabled")
	}

	router := handler.NewRouter(cfg, callHandler, recordHandler, webhookHandler, httpmw.EchoAuth(jwtManager), application.Registry)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
		)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	if webhookHandler != nil {
		done := make(chan struct{})
		go func() {
			webhookHandler.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			logger.Warn("background webhook runs still in flight at shutdown")
		}
	}

	logger.Info("server stopped gracefully")
}
