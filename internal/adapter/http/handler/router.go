package handler

import (
	"payment-reconciliation-engine/config"
	"payment-reconciliation-engine/internal/adapter/http/middleware"
	redisStore "payment-reconciliation-engine/internal/adapter/storage/redis"
	"payment-reconciliation-engine/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	CheckoutSvc    ports.CheckoutService
	Reconciler     ports.Reconciler
	Poller         StatusPoller
	Store          ports.TransactionStore
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Frontend       config.FrontendConfig
	GatewaySecret  string // empty = webhook signature verification disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
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

	paymentHandler := NewPaymentHandler(
		deps.CheckoutSvc, deps.Reconciler, deps.Poller, deps.Store,
		deps.Frontend, deps.Logger,
	)

	v1 := r.Group("/api/v1")
	payments := v1.Group("/payments")
	{
		payments.POST("/checkout", rl("checkout"), paymentHandler.InitiateCheckout)
		payments.POST("/webhook",
			rl("webhook"),
			middleware.GatewaySignature(deps.GatewaySecret, deps.Logger),
			paymentHandler.HandleWebhook,
		)
		payments.GET("/return", rl("redirect"), paymentHandler.HandleRedirect)
		payments.GET("/:id", rl("status"), paymentHandler.GetTransaction)
		payments.POST("/:id/poll", rl("status"), paymentHandler.PollTransaction)
	}

	return r
}
