package router

import (
	"net/http"
	"strings"

	"github.com/kharido-next/internal/cache"
	"github.com/kharido-next/internal/config"
	publichandlers "github.com/kharido-next/internal/http/handlers/public"
	"github.com/kharido-next/internal/logger"
	"github.com/kharido-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// rateRule 由配置构建限流规则，键前缀统一挂在 Redis 命名空间下
func rateRule(redisPrefix, name, messageKey string, cfg config.RateLimitConfig) RateLimitRule {
	return RateLimitRule{
		Prefix:        redisPrefix + ":rate:" + name,
		WindowSeconds: cfg.WindowSeconds,
		MaxRequests:   cfg.MaxAttempts,
		BlockSeconds:  cfg.BlockSeconds,
		MessageKey:    messageKey,
	}
}

// SetupRouter 装配全部中间件与路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "kh"
	}
	redisClient := cache.Client()
	loginRule := rateRule(redisPrefix, "login", "error.login_too_many", cfg.Security.LoginRateLimit)
	placeOrderRule := rateRule(redisPrefix, "place_order", "error.place_order_too_many", cfg.Security.PlaceOrderRateLimit)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		LoggerMiddleware(log),
		CORSMiddleware(cfg.CORS),
	)

	publicHandler := publichandlers.New(c)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		user := api.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)

			checkout := user.Group("/checkout")
			{
				checkout.GET("/balance", publicHandler.GetCheckoutBalance)
				checkout.GET("/session", publicHandler.GetCheckoutSession)
				checkout.POST("/quote", publicHandler.QuoteCheckout)
				checkout.POST("/place", RateLimitMiddleware(redisClient, placeOrderRule, KeyByUserID), publicHandler.PlaceOrder)
				checkout.POST("/payment/confirm", publicHandler.ConfirmCheckoutPayment)
				checkout.POST("/payment/cancel", publicHandler.CancelCheckoutPayment)
			}

			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
			user.GET("/wallet", publicHandler.GetMyWallet)
			user.GET("/wallet/transactions", publicHandler.GetMyWalletTransactions)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
