package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/givegoa/givegoa-api/internal/handler"
	"github.com/givegoa/givegoa-api/internal/middleware"
	"github.com/givegoa/givegoa-api/internal/models"
	"github.com/givegoa/givegoa-api/internal/service"
	"github.com/givegoa/givegoa-api/pkg/config"
	"github.com/givegoa/givegoa-api/pkg/logger"
	corsmiddleware "github.com/givegoa/givegoa-api/pkg/middleware/cors"
	reqidmiddleware "github.com/givegoa/givegoa-api/pkg/middleware/requestid"
)

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Auth       *handler.AuthHandler
	Requests   *handler.RequestHandler
	Resources  *handler.ResourceHandler
	Allocation *handler.AllocationHandler
	Audit      *handler.AuditHandler
	Dashboard  *handler.DashboardHandler
	Weights    *handler.WeightsHandler
	Metrics    *handler.MetricsHandler
}

// New builds the gin engine with the global middleware chain and every route.
func New(cfg *config.Config, logr *zap.Logger, auth tokenValidator, metrics *service.MetricsService, h Handlers) *gin.Engine {
	if logr == nil {
		logr = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", h.Auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(auth))
	secured.GET("/auth/me", h.Auth.Me)

	requests := secured.Group("/requests")
	requests.GET("", middleware.RequireAction(service.ActionViewRequests), h.Requests.List)
	requests.POST("", middleware.RequireAction(service.ActionSubmitRequest), h.Requests.Submit)
	requests.GET("/:id", middleware.RequireAction(service.ActionViewRequests), h.Requests.Get)
	requests.POST("/:id/score", middleware.RequireAction(service.ActionScoreRequest), h.Requests.Score)
	requests.POST("/:id/approve", middleware.RequireAction(service.ActionApproveRequest), h.Requests.Approve)
	requests.POST("/:id/reject", middleware.RequireAction(service.ActionRejectRequest), h.Requests.Reject)
	requests.POST("/:id/advance", middleware.RequireAction(service.ActionAdvanceRequest), h.Requests.Advance)

	resources := secured.Group("/resources")
	resources.GET("", middleware.RequireAction(service.ActionViewResources), h.Resources.List)
	resources.POST("", middleware.RequireAction(service.ActionCreateResource), h.Resources.Create)
	resources.POST("/:id/restock", middleware.RequireAction(service.ActionRestockResource), h.Resources.Restock)

	allocations := secured.Group("/allocations")
	allocations.POST("/suggest", middleware.RequireAction(service.ActionRunOptimizer), h.Allocation.Suggest)
	allocations.POST("/apply", middleware.RequireAction(service.ActionApplyAllocation), h.Allocation.Apply)

	audit := secured.Group("/audit-logs", middleware.RequireAction(service.ActionViewAudit))
	audit.GET("", h.Audit.List)
	audit.GET("/export", h.Audit.Export)

	secured.GET("/dashboard", middleware.RequireAction(service.ActionViewDashboard), h.Dashboard.Summary)

	secured.GET("/weights", middleware.RequireAction(service.ActionViewWeights), h.Weights.Get)
	secured.PUT("/weights", middleware.RequireAction(service.ActionUpdateWeights), h.Weights.Update)

	return r
}
