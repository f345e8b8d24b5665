package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/subsync/internal/config"
	"github.com/smallbiznis/subsync/internal/customer"
	customerdomain "github.com/smallbiznis/subsync/internal/customer/domain"
	"github.com/smallbiznis/subsync/internal/observability"
	obsmiddleware "github.com/smallbiznis/subsync/internal/observability/logger"
	obstracing "github.com/smallbiznis/subsync/internal/observability/tracing"
	"github.com/smallbiznis/subsync/internal/price"
	"github.com/smallbiznis/subsync/internal/product"
	"github.com/smallbiznis/subsync/internal/stripe"
	"github.com/smallbiznis/subsync/internal/subscription"
	syncpkg "github.com/smallbiznis/subsync/internal/sync"
	syncdomain "github.com/smallbiznis/subsync/internal/sync/domain"
	"github.com/smallbiznis/subsync/internal/user"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	stripe.Module,
	product.Module,
	price.Module,
	customer.Module,
	user.Module,
	subscription.Module,
	syncpkg.Module,
	fx.Invoke(NewServer),
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

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
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
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	genID       *snowflake.Node
	dispatcher  syncdomain.Dispatcher
	customerSvc customerdomain.Service
	stripe      *stripe.Client
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	Dispatcher  syncdomain.Dispatcher
	CustomerSvc customerdomain.Service
	Stripe      *stripe.Client
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		dispatcher:  p.Dispatcher,
		customerSvc: p.CustomerSvc,
		stripe:      p.Stripe,
	}
	svc.RegisterRoutes()
	return svc
}

func (s *Server) RegisterRoutes() {
	s.engine.POST("/hooks/:provider", s.HandleProviderWebhook)

	api := s.engine.Group("/api")
	api.POST("/checkout-sessions", s.CreateCheckoutSession)
}
