package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/johnquangdev/interview-scheduler/pkg/config"
	pkgvalidator "github.com/johnquangdev/interview-scheduler/pkg/validator"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	callHandler    *Call
	recordHandler  *Record
	webhookHandler *WebhookHandler
	auth           echo.MiddlewareFunc
	gatherer       prometheus.Gatherer
}

// NewRouter creates a new router with all handlers.
// webhookHandler may be nil when no webhook secret is configured.
func NewRouter(cfg *config.Config, callHandler *Call, recordHandler *Record, webhookHandler *WebhookHandler, auth echo.MiddlewareFunc, gatherer prometheus.Gatherer) *Router {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Router{
		cfg:            cfg,
		callHandler:    callHandler,
		recordHandler:  recordHandler,
		webhookHandler: webhookHandler,
		auth:           auth,
		gatherer:       gatherer,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	if e.Validator == nil {
		e.Validator = pkgvalidator.New()
	}

	e.GET("/health", rt.healthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{})))

	// API v1 group
	v1 := e.Group("/v1")

	if rt.webhookHandler != nil {
		v1.POST("/webhooks/calls", rt.webhookHandler.HandleCallWebhook)
	}

	protected := v1.Group("")
	if rt.auth != nil {
		protected.Use(rt.auth)
	}
	rt.setupCallRoutes(protected)
	rt.setupRecordRoutes(protected)
}

// setupCallRoutes configures call placement and completion routes
func (rt *Router) setupCallRoutes(g *echo.Group) {
	calls := g.Group("/calls")
	calls.POST("", rt.callHandler.PlaceCall)
	calls.GET("", rt.callHandler.ListCalls)
	calls.POST("/complete", rt.callHandler.CompleteBatch)
	calls.POST("/:id/complete", rt.callHandler.CompleteCall)
}

// setupRecordRoutes configures read-only store routes
func (rt *Router) setupRecordRoutes(g *echo.Group) {
	g.GET("/meetings", rt.recordHandler.ListMeetings)
	g.GET("/transcripts", rt.recordHandler.ListTranscripts)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	environment := "production"
	if rt.cfg != nil {
		environment = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": environment,
	})
}
