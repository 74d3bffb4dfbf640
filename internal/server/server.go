// Package server exposes the HTTP surface: the payment webhook
// endpoint, the marketplace API, and operational endpoints.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	agentdomain "github.com/nyumbahq/nyumba/internal/agent/domain"
	"github.com/nyumbahq/nyumba/internal/config"
	coopdomain "github.com/nyumbahq/nyumba/internal/cooperative/domain"
	listingdomain "github.com/nyumbahq/nyumba/internal/listing/domain"
	"github.com/nyumbahq/nyumba/internal/observability"
	"github.com/nyumbahq/nyumba/internal/observability/logger"
	"github.com/nyumbahq/nyumba/internal/observability/metrics"
	"github.com/nyumbahq/nyumba/internal/observability/tracing"
	paymentdomain "github.com/nyumbahq/nyumba/internal/payment/domain"
	"github.com/nyumbahq/nyumba/internal/ratelimit"
	subdomain "github.com/nyumbahq/nyumba/internal/subscription/domain"
)

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(register),
)

type ServerParams struct {
	fx.In

	Config        config.Config
	Observability observability.Config
	Webhooks      paymentdomain.IWebhookService
	Agents        agentdomain.IAgentService
	Listings      listingdomain.IListingService
	Subscriptions subdomain.ISubscriptionService
	Cooperatives  coopdomain.ICooperativeService
	Limiter       ratelimit.Limiter
	Metrics       *metrics.Metrics `optional:"true"`
	Log           *zap.Logger
}

type Server struct {
	cfg           config.Config
	engine        *gin.Engine
	http          *http.Server
	webhooks      paymentdomain.IWebhookService
	agents        agentdomain.IAgentService
	listings      listingdomain.IListingService
	subscriptions subdomain.ISubscriptionService
	cooperatives  coopdomain.ICooperativeService
	limiter       ratelimit.Limiter
	metrics       *metrics.Metrics
	log           *zap.Logger
}

func NewServer(p ServerParams) *Server {
	if !p.Observability.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(tracing.GinMiddleware())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		Debug: p.Observability.Debug(),
	}))

	s := &Server{
		cfg:           p.Config,
		engine:        engine,
		webhooks:      p.Webhooks,
		agents:        p.Agents,
		listings:      p.Listings,
		subscriptions: p.Subscriptions,
		cooperatives:  p.Cooperatives,
		limiter:       p.Limiter,
		metrics:       p.Metrics,
		log:           p.Log.Named("server"),
	}
	s.registerRoutes()

	s.http = &http.Server{
		Addr:    p.Config.HTTPAddr,
		Handler: engine,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.engine.POST("/webhooks/payments/:provider", s.handlePaymentWebhook)

	v1 := s.engine.Group("/v1")
	{
		v1.POST("/agents", s.handleCreateAgent)
		v1.GET("/agents/:id", s.handleGetAgent)
		v1.GET("/agents/:id/subscription", s.handleGetAgentSubscription)

		v1.POST("/listings", s.handleCreateListing)
		v1.GET("/listings", s.handleListListings)
		v1.GET("/listings/:slug", s.handleGetListing)
		v1.DELETE("/listings/:id", s.handleArchiveListing)

		v1.POST("/cooperatives", s.handleCreateCooperative)
		v1.GET("/cooperatives", s.handleListCooperatives)
		v1.GET("/cooperatives/:id", s.handleGetCooperative)
		v1.GET("/cooperatives/:id/contributions", s.handleListContributions)
		v1.POST("/cooperatives/:id/contributions", s.handleInitiateContribution)
		v1.POST("/cooperatives/:id/complete", s.handleCompleteCooperative)
		v1.POST("/cooperatives/:id/dissolve", s.handleDissolveCooperative)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": s.cfg.AppName,
		"version": s.cfg.AppVersion,
	})
}

func (s *Server) Start(ctx context.Context) error {
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server stopped", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func register(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return s.Start(ctx) },
		OnStop:  func(ctx context.Context) error { return s.Stop(ctx) },
	})
}
