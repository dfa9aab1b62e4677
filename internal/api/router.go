// Package api exposes the finance services over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finance-tracker-backend/internal/auth"
	"finance-tracker-backend/internal/dashboard"
	"finance-tracker-backend/internal/ledger"
	"finance-tracker-backend/internal/logging"
	"finance-tracker-backend/internal/store"
	"finance-tracker-backend/internal/validate"
)

func init() {
	// Money is written as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Options configures the router.
type Options struct {
	CORSOrigins  []string
	SessionTTL   time.Duration
	SecureCookie bool
	Logger       *slog.Logger
}

// Server holds the services behind the handlers.
type Server struct {
	store     store.Store
	auth      *auth.Service
	ledger    *ledger.Service
	dashboard *dashboard.Service
	opts      Options
	logger    *slog.Logger
}

func NewServer(st store.Store, authSvc *auth.Service, ledgerSvc *ledger.Service, dashboardSvc *dashboard.Service, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:     st,
		auth:      authSvc,
		ledger:    ledgerSvc,
		dashboard: dashboardSvc,
		opts:      opts,
		logger:    logger,
	}
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() *gin.Engine {
	validate.Register()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.Middleware(s.logger))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(s.opts.CORSOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.opts.CORSOrigins
	}
	r.Use(cors.New(corsConfig))

	r.GET("/health", s.healthCheck)

	public := r.Group("/api/auth")
	public.POST("/register", s.register)
	public.POST("/login", s.login)
	public.POST("/logout", s.logout)
	public.POST("/forgot-password", s.forgotPassword)
	public.POST("/reset-password", s.resetPassword)

	api := r.Group("/api", s.requireUser)
	api.GET("/auth/me", s.me)

	api.GET("/accounts", s.listAccounts)
	api.POST("/accounts", s.createAccount)
	api.GET("/accounts/:id", s.getAccount)
	api.PUT("/accounts/:id", s.updateAccount)
	api.DELETE("/accounts/:id", s.deleteAccount)

	api.GET("/categories", s.listCategories)
	api.POST("/categories", s.createCategory)

	api.GET("/transactions", s.listTransactions)
	api.POST("/transactions", s.createTransaction)
	api.GET("/transactions/:id", s.getTransaction)
	api.PUT("/transactions/:id", s.updateTransaction)
	api.DELETE("/transactions/:id", s.deleteTransaction)

	api.GET("/dashboard", s.getDashboard)

	return r
}

// healthCheck reports whether the store answers.
func (s *Server) healthCheck(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "finance-tracker",
	})
}
