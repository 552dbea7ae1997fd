package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	authdomain "github.com/smallbiznis/rentaldesk/internal/auth/domain"
	"github.com/smallbiznis/rentaldesk/internal/config"
	contactdomain "github.com/smallbiznis/rentaldesk/internal/contact/domain"
	customerdomain "github.com/smallbiznis/rentaldesk/internal/customer/domain"
	"github.com/smallbiznis/rentaldesk/internal/observability"
	obsmiddleware "github.com/smallbiznis/rentaldesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/rentaldesk/internal/observability/metrics"
	obstracing "github.com/smallbiznis/rentaldesk/internal/observability/tracing"
	quotedomain "github.com/smallbiznis/rentaldesk/internal/quote/domain"
	"github.com/smallbiznis/rentaldesk/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, cfg config.Config, metrics *obsmetrics.Metrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(metrics.GinMiddleware())
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

func registerGin(obsCfg observability.Config, cfg config.Config, metrics *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(obsCfg, cfg, metrics)
}

func run(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	addr := cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
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
	quoteSvc    quotedomain.Service
	customerSvc customerdomain.Service
	contactSvc  contactdomain.Service
	authsvc     authdomain.Service
	limiter     *ratelimit.SubmissionLimiter
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	QuoteSvc    quotedomain.Service
	CustomerSvc customerdomain.Service
	ContactSvc  contactdomain.Service
	Authsvc     authdomain.Service
	Limiter     *ratelimit.SubmissionLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		quoteSvc:    p.QuoteSvc,
		customerSvc: p.CustomerSvc,
		contactSvc:  p.ContactSvc,
		authsvc:     p.Authsvc,
		limiter:     p.Limiter,
	}

	svc.registerAuthRoutes()
	svc.registerPublicRoutes()
	svc.registerAdminRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.GET("/me", s.AdminRequired(), s.Me)
}

func (s *Server) registerPublicRoutes() {
	api := s.engine.Group("/api")

	api.POST("/quotes", s.SubmissionRateLimit(ratelimit.ScopeQuote), s.SubmitQuote)
	api.POST("/contact", s.SubmissionRateLimit(ratelimit.ScopeContact), s.SubmitContact)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.Use(s.AdminRequired())

	admin.GET("/quotes", s.ListQuotes)
	admin.GET("/quotes/:id", s.GetQuoteByID)
	admin.PATCH("/quotes/:id", s.UpdateQuote)
	admin.PATCH("/quotes/:id/status", s.UpdateQuoteStatus)
	admin.PATCH("/quotes/:id/payment-status", s.UpdateQuotePaymentStatus)
	admin.DELETE("/quotes/:id", s.DeleteQuote)
	admin.GET("/quotes/:id/pdf", s.DownloadQuotePDF)

	admin.GET("/customers", s.ListCustomers)
	admin.POST("/customers", s.CreateCustomer)
	admin.GET("/customers/:id", s.GetCustomerByID)
	admin.PATCH("/customers/:id", s.UpdateCustomer)
	admin.DELETE("/customers/:id", s.DeleteCustomer)

	admin.GET("/contacts", s.ListContacts)
	admin.GET("/contacts/:id", s.GetContactByID)
	admin.PATCH("/contacts/:id/status", s.UpdateContactStatus)
	admin.DELETE("/contacts/:id", s.DeleteContact)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
