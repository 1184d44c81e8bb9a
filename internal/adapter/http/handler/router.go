package handler

import (
	"core-banking-ledger/internal/adapter/http/middleware"
	redisStore "core-banking-ledger/internal/adapter/storage/redis"
	"core-banking-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AccountSvc     ports.AccountService
	AuthSvc        ports.AuthService
	LedgerSvc      ports.LedgerService
	HistorySvc     ports.HistoryService
	GatewaySvc     ports.GatewayService // nil = gateway funding disabled
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	accountHandler := NewAccountHandler(deps.AccountSvc)
	authHandler := NewAuthHandler(deps.AuthSvc)

	v1.POST("/accounts", rl("accounts_open"), accountHandler.Open)
	v1.POST("/auth/login", rl("auth_login"), authHandler.Login)

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	txHandler := NewTransactionHandler(deps.LedgerSvc, deps.HistorySvc, deps.AccountSvc)

	v1.GET("/auth/me", jwtAuth, authHandler.Me)
	v1.GET("/accounts/me", jwtAuth, accountHandler.GetMine)

	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.POST("/deposit", rl("mutations"), txHandler.Deposit)
		transactions.POST("/withdraw", rl("mutations"), txHandler.Withdraw)
		transactions.POST("/transfer", rl("mutations"), txHandler.Transfer)
		transactions.GET("", rl("history"), txHandler.History)
	}

	// --- Gateway funding ---
	if deps.GatewaySvc != nil {
		paymentHandler := NewPaymentHandler(deps.GatewaySvc, deps.AccountSvc)
		payments := v1.Group("/payments")
		{
			payments.POST("/order", jwtAuth, rl("gateway"), paymentHandler.CreateOrder)
			// Provider callback authenticates via signature, not JWT.
			payments.POST("/verify", rl("gateway"), paymentHandler.Verify)
		}
	}

	return r
}
