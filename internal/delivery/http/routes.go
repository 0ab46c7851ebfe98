package http

import (
	"github.com/gin-gonic/gin"
	"github.com/nutriscan/backend/config"
	"github.com/nutriscan/backend/internal/domain"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, tokens domain.TokenIssuer, logger *zap.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	// Forwarded client addresses are only honored from configured proxies
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Warn("invalid trusted proxies, trusting none", zap.Strings("trusted_proxies", cfg.Server.TrustedProxies), zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}
	if cfg.Server.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = cfg.Server.MaxUploadBytes
	}

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", handler.Register)
			auth.POST("/login", handler.Login)
			auth.POST("/reset-password", handler.ResetPassword)
		}

		secured := v1.Group("")
		secured.Use(AuthMiddleware(tokens))
		{
			secured.POST("/auth/change-password", handler.ChangePassword)

			profile := secured.Group("/profile")
			{
				profile.GET("", handler.GetProfile)
				profile.PUT("/personal", handler.SavePersonalInfo)
				profile.PUT("/health", handler.SaveHealthInfo)
				profile.GET("/next-step", handler.NextStep)
			}
			secured.GET("/dietary-restrictions", handler.DietaryRestrictions)

			secured.POST("/scans", handler.Scan)
			secured.GET("/products/:barcode", handler.GetProduct)

			analyses := secured.Group("/analyses")
			{
				analyses.POST("", handler.Analyze)
				analyses.POST("/label", handler.AnalyzeLabel)
			}

			history := secured.Group("/history")
			{
				history.GET("", handler.ListHistory)
				history.GET("/by-rating", handler.HistoryByRating)
				history.GET("/:barcode", handler.GetHistoryEntry)
				history.DELETE("/:barcode", handler.DeleteHistoryEntry)
			}
		}
	}

	return router
}
