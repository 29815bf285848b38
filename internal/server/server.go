package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/franqia/console/internal/config"
	"github.com/franqia/console/internal/franchisor"
	franchisordomain "github.com/franqia/console/internal/franchisor/domain"
	"github.com/franqia/console/internal/lifecycle"
	lifecycledomain "github.com/franqia/console/internal/lifecycle/domain"
	"github.com/franqia/console/internal/observability"
	obsmiddleware "github.com/franqia/console/internal/observability/logger"
	obstracing "github.com/franqia/console/internal/observability/tracing"
	"github.com/franqia/console/internal/reporting"
	reportingdomain "github.com/franqia/console/internal/reporting/domain"
	"github.com/franqia/console/internal/school"
	schooldomain "github.com/franqia/console/internal/school/domain"
	"github.com/franqia/console/internal/subscription"
	subscriptiondomain "github.com/franqia/console/internal/subscription/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	franchisor.Module,
	school.Module,
	subscription.Module,
	lifecycle.Module,
	reporting.Module,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ActorContext())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: s.Engine(),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	franchisorSvc   franchisordomain.Service
	schoolSvc       schooldomain.Service
	subscriptionSvc subscriptiondomain.Service
	lifecycleSvc    lifecycledomain.Service
	reportingSvc    reportingdomain.Service
	reportCfg       *config.ReportConfigHolder
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	FranchisorSvc   franchisordomain.Service
	SchoolSvc       schooldomain.Service
	SubscriptionSvc subscriptiondomain.Service
	LifecycleSvc    lifecycledomain.Service
	ReportingSvc    reportingdomain.Service
	ReportCfg       *config.ReportConfigHolder
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		franchisorSvc:   p.FranchisorSvc,
		schoolSvc:       p.SchoolSvc,
		subscriptionSvc: p.SubscriptionSvc,
		lifecycleSvc:    p.LifecycleSvc,
		reportingSvc:    p.ReportingSvc,
		reportCfg:       p.ReportCfg,
	}

	svc.registerReportRoutes()
	svc.registerEntityRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerReportRoutes() {
	reports := s.engine.Group("/api/reports")

	reports.GET("/summary", s.GetSummary)
	reports.GET("/by-franchisor", s.GetByFranchisor)
	reports.GET("/by-school", s.GetBySchool)
	reports.GET("/buckets", s.GetBuckets)
	reports.GET("/top-franchisors", s.GetTopFranchisors)
	reports.GET("/top-schools", s.GetTopSchools)
	reports.GET("/schools-by-status", s.GetSchoolsByStatus)
}

func (s *Server) registerEntityRoutes() {
	api := s.engine.Group("/api")

	// -------- Franchisors --------
	api.GET("/franchisors", s.ListFranchisors)
	api.POST("/franchisors", s.AdminActorRequired(), s.CreateFranchisor)
	api.GET("/franchisors/:id", s.GetFranchisorByID)
	api.GET("/franchisors/:id/status", s.entityStatus(lifecycledomain.KindFranchisor))
	api.GET("/franchisors/:id/history", s.entityHistory(lifecycledomain.KindFranchisor))
	api.POST("/franchisors/:id/transitions", s.AdminActorRequired(), s.entityTransition(lifecycledomain.KindFranchisor))

	// -------- Schools --------
	api.GET("/schools", s.ListSchools)
	api.POST("/schools", s.AdminActorRequired(), s.CreateSchool)
	api.GET("/schools/:id", s.GetSchoolByID)
	api.PUT("/schools/:id/snapshots", s.AdminActorRequired(), s.UpsertSchoolSnapshot)
	api.GET("/schools/:id/status", s.entityStatus(lifecycledomain.KindSchool))
	api.GET("/schools/:id/history", s.entityHistory(lifecycledomain.KindSchool))
	api.POST("/schools/:id/transitions", s.AdminActorRequired(), s.entityTransition(lifecycledomain.KindSchool))

	// -------- Subscriptions --------
	api.GET("/subscriptions", s.ListSubscriptions)
	api.POST("/subscriptions", s.AdminActorRequired(), s.CreateSubscription)
	api.GET("/subscriptions/:id", s.GetSubscriptionByID)
	api.GET("/subscriptions/:id/status", s.entityStatus(lifecycledomain.KindSubscription))
	api.GET("/subscriptions/:id/history", s.entityHistory(lifecycledomain.KindSubscription))
	api.POST("/subscriptions/:id/transitions", s.AdminActorRequired(), s.entityTransition(lifecycledomain.KindSubscription))
}
