package api

import (
	"github.com/gin-gonic/gin"

	"nutriplan/internal/logger"
)

// RouterConfig holds the handlers to mount. Nil handlers are skipped.
type RouterConfig struct {
	Log            *logger.Logger
	AllowedOrigins []string
	Auth           *AuthMiddleware

	Plans         *PlanHandler
	Notifications *NotificationHandler
	Admin         *AdminHandler
	Health        *HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(cfg.Log))
	r.Use(CORS(cfg.AllowedOrigins))

	if cfg.Health != nil {
		r.GET("/healthcheck", cfg.Health.HealthCheck)
	}

	protected := r.Group("/api")
	if cfg.Auth != nil {
		protected.Use(cfg.Auth.RequireAuth())
	}
	{
		if cfg.Plans != nil {
			protected.POST("/generate/meals", cfg.Plans.Generate)
			protected.POST("/multi-day-generator/mealplan", cfg.Plans.GenerateMultiDay)
			protected.POST("/swap-meal", cfg.Plans.Swap)
			protected.GET("/fetch-mealplans", cfg.Plans.FetchActive)
			protected.GET("/shopping-list", cfg.Plans.ShoppingList)
		}

		if cfg.Notifications != nil {
			protected.GET("/notifications", cfg.Notifications.List)
			protected.PATCH("/notifications/read-all", cfg.Notifications.MarkAllRead)
			protected.PATCH("/notifications/:id/read", cfg.Notifications.MarkRead)
		}

		if cfg.Admin != nil {
			admin := protected.Group("/admin")
			if cfg.Auth != nil {
				admin.Use(cfg.Auth.RequireRole(RoleAdmin))
			}
			admin.GET("/usage", cfg.Admin.Usage)
		}
	}

	return r
}
