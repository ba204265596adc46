package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/remedyhub/entitlement/docs"
	"github.com/remedyhub/entitlement/internal/app/api/handlers"
	mw "github.com/remedyhub/entitlement/internal/app/api/middleware"
	"github.com/remedyhub/entitlement/internal/app/service/entitlement"
	"github.com/remedyhub/entitlement/internal/app/service/identity"
	"github.com/remedyhub/entitlement/internal/app/service/session"
	"github.com/remedyhub/entitlement/internal/app/service/statistics"
	subsvc "github.com/remedyhub/entitlement/internal/app/service/subscription"
	"github.com/remedyhub/entitlement/internal/app/service/trial"
	cfgpkg "github.com/remedyhub/entitlement/pkg/config"
	metrics "github.com/remedyhub/entitlement/pkg/metrics"
)

func newEngine(cfg *cfgpkg.Config) *gin.Engine {
	if cfg.Env == cfgpkg.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeParams struct {
	fx.In

	Engine       *gin.Engine
	Config       *cfgpkg.Config
	Logger       *zap.SugaredLogger
	DB           *gorm.DB
	Verifier     identity.Verifier
	Entitlements *entitlement.Service
	Trials       *trial.Service
	Bridge       *session.Bridge
	Events       *subsvc.EventHandler
	Subscription *subsvc.Service
	Stats        *statistics.Service
}

func registerRoutes(p routeParams) {
	r, cfg, log := p.Engine, p.Config, p.Logger

	// Prometheus metrics
	if cfg.MetricsAddr != "" {
		prom := metrics.NewPrometheus(metrics.NewPrometheusOptions{Logger: log})
		prom.SetListenAddress(cfg.MetricsAddr)
		prom.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	limiter := mw.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	var pinger handlers.Pinger
	if sqlDB, err := p.DB.DB(); err == nil {
		pinger = sqlDB
	}
	handlers.RegisterHealthRoutes(pub, pinger)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())

	// Signed-in user APIs
	me := apiV1.Group("/me")
	me.Use(mw.Authenticate(p.Verifier, log))

	handlers.RegisterFeatureRoutes(apiV1, me, p.Entitlements, log)
	handlers.RegisterTrialRoutes(me, p.Trials, cfg.Trial.CountdownInterval, limiter, log)
	handlers.RegisterSessionRoutes(apiV1.Group("/session"), p.Bridge, p.Verifier, limiter, log)

	// Admin APIs
	admin := apiV1.Group("/admin")
	admin.Use(mw.AdminAuth(cfg.Auth.AdminToken))
	if cfg.Auth.AdminToken == "" {
		log.Warnw("auth.admin_token is empty, admin API disabled")
	}
	handlers.RegisterAdminRoutes(admin, p.Events, p.Subscription, p.Stats, log)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	// request contexts derive from baseCtx so long-lived streams end on stop
	baseCtx, cancelBase := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			cancelBase()
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
