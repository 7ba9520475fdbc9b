package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fitquest/internal/config"
	"github.com/fitquest/internal/handler"
	"github.com/fitquest/internal/logging"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig, api *handler.API, logger *zap.Logger) *gin.Engine {
	switch cfg.GinMode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.GinMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(logging.RequestID(), logging.AccessLog(logger), logging.Recovery(logger))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	r.GET("/healthz", api.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 写入量大或不可逆的接口单独限流
	limited := newIPRateLimiter(cfg.RateLimitPerMinute).middleware()

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/records", api.ListRecords)
		apiGroup.POST("/records", api.CreateRecord)
		apiGroup.DELETE("/records/:date", api.DeleteRecord)

		apiGroup.GET("/stats", api.GetStats)
		apiGroup.GET("/overview", api.GetOverview)

		apiGroup.GET("/rewards", api.GetRewards)
		apiGroup.GET("/rewards/monthly", api.GetMonthlyReward)
		apiGroup.POST("/rewards/exchange", limited, api.ExchangeRewards)

		apiGroup.GET("/redemption", api.GetRedemption)
		apiGroup.POST("/redemption", limited, api.Redeem)

		apiGroup.GET("/achievements", api.ListAchievements)
		apiGroup.GET("/reports/:month", api.GetMonthlyReport)

		apiGroup.GET("/export", api.ExportState)
		apiGroup.POST("/import", limited, api.ImportState)
		apiGroup.POST("/settlement", limited, api.SettleMonth)

		health := apiGroup.Group("/health")
		health.GET("/roles", api.ListHealthRoles)
		health.POST("/roles", api.CreateHealthRole)
		health.GET("/roles/:id/records", api.ListRoleHealthRecords)
		health.POST("/roles/:id/records", api.CreateHealthRecord)
		health.GET("/records", api.ListAllHealthRecords)
		health.PUT("/records/:id", api.UpdateHealthRecord)
		health.DELETE("/records/:id", api.DeleteHealthRecord)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Accept-Language", logging.RequestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", logging.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
