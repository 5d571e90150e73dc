package router

import (
	"fmt"
	"strings"

	"github.com/giftvault/internal/cache"
	"github.com/giftvault/internal/config"
	"github.com/giftvault/internal/constants"
	adminhandlers "github.com/giftvault/internal/http/handlers/admin"
	publichandlers "github.com/giftvault/internal/http/handlers/public"
	handlershared "github.com/giftvault/internal/http/handlers/shared"
	"github.com/giftvault/internal/logger"
	"github.com/giftvault/internal/openapi"
	"github.com/giftvault/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()
	handlershared.RegisterValidatorTagNames()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "登录尝试过于频繁",
	}
	resetCodeRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:reset_code", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "验证码请求过于频繁",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	requireAuth := JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo)
	optionalAuth := OptionalAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo)
	requireMerchant := RequireRole(constants.RoleMerchant, constants.RoleAdmin)
	enforcePolicy := RBACMiddleware(c.AuthzService)
	requireVerifiedMerchant := RequireVerifiedMerchant(c.MerchantService)

	api := r.Group("/api")
	{
		api.GET("/docs/openapi.json", openapi.Handler())
		api.GET("/captcha/image", publicHandler.GetImageCaptcha)

		// 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
			auth.POST("/refresh", publicHandler.Refresh)
			auth.POST("/google", RateLimitMiddleware(redisClient, loginRule, KeyByIP), publicHandler.GoogleLogin)
			auth.POST("/send-reset-code", RateLimitMiddleware(redisClient, resetCodeRule, KeyByIPAndJSONField("email")), publicHandler.SendResetCode)
			auth.POST("/reset-password", publicHandler.ResetPassword)

			auth.POST("/logout", requireAuth, publicHandler.Logout)
			auth.POST("/change-password", requireAuth, publicHandler.ChangePassword)
			auth.GET("/me", requireAuth, publicHandler.Me)
		}

		// 商户
		merchants := api.Group("/merchants")
		{
			merchants.GET("/me", requireAuth, requireMerchant, enforcePolicy, publicHandler.GetMyMerchantProfile)
			merchants.PUT("/me", requireAuth, requireMerchant, enforcePolicy, publicHandler.UpdateMerchantProfile)
			merchants.POST("/me/submit", requireAuth, requireMerchant, enforcePolicy, publicHandler.SubmitMerchantProfile)
			merchants.GET("/me/redemptions", requireAuth, requireMerchant, enforcePolicy, requireVerifiedMerchant, publicHandler.ListMerchantRedemptions)
			merchants.GET("/:id", publicHandler.GetMerchantProfile)
		}

		// 礼品卡模板
		giftCards := api.Group("/gift-cards")
		{
			giftCards.GET("", publicHandler.ListGiftCards)
			giftCards.GET("/mine", requireAuth, requireMerchant, enforcePolicy, publicHandler.ListMyGiftCards)
			giftCards.GET("/:id", optionalAuth, publicHandler.GetGiftCard)
			giftCards.POST("", requireAuth, requireMerchant, enforcePolicy, requireVerifiedMerchant, publicHandler.CreateGiftCard)
			giftCards.PUT("/:id", requireAuth, requireMerchant, enforcePolicy, requireVerifiedMerchant, publicHandler.UpdateGiftCard)
			giftCards.DELETE("/:id", requireAuth, requireMerchant, enforcePolicy, requireVerifiedMerchant, publicHandler.DeleteGiftCard)
		}

		// 购卡与核销
		purchases := api.Group("/purchases")
		{
			purchases.POST("", optionalAuth, publicHandler.CreatePurchase)
			purchases.GET("", requireAuth, publicHandler.ListMyPurchases)
			purchases.GET("/by-code/:code", requireAuth, publicHandler.GetPurchaseByQRCode)
			purchases.POST("/redeem", requireAuth, requireMerchant, enforcePolicy, requireVerifiedMerchant, publicHandler.Redeem)
			purchases.GET("/:id", requireAuth, publicHandler.GetPurchase)
			purchases.POST("/:id/cancel", requireAuth, requireMerchant, enforcePolicy, publicHandler.CancelPurchase)
			purchases.GET("/:id/redemptions", requireAuth, publicHandler.ListPurchaseRedemptions)
		}

		// 通知
		notifications := api.Group("/notifications", requireAuth)
		{
			notifications.GET("", publicHandler.ListNotifications)
			notifications.GET("/unread-count", publicHandler.CountUnreadNotifications)
			notifications.POST("/read-all", publicHandler.MarkAllNotificationsRead)
			notifications.POST("/:id/read", publicHandler.MarkNotificationRead)
			notifications.GET("/preferences", publicHandler.ListNotificationPreferences)
			notifications.PUT("/preferences", publicHandler.UpdateNotificationPreference)
		}

		// 活动日志
		api.GET("/activity-logs", requireAuth, publicHandler.ListMyActivityLogs)

		// 管理端
		admin := api.Group("/admin", requireAuth, enforcePolicy)
		{
			admin.GET("/merchants", adminHandler.ListMerchants)
			admin.GET("/merchants/:id", adminHandler.GetMerchant)
			admin.POST("/merchants/:id/verify", adminHandler.VerifyMerchant)
			admin.POST("/merchants/:id/reject", adminHandler.RejectMerchant)
			admin.DELETE("/merchants/:id", adminHandler.DeleteMerchant)

			admin.GET("/users", adminHandler.ListUsers)
			admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)

			admin.GET("/activity-logs", adminHandler.ListActivityLogs)
		}
	}

	// 健康检查
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
