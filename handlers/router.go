package handlers

import (
	"net/http"

	"app-registry-cms/metrics"
	"app-registry-cms/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	MobileApps *MobileAppHandler
	Galleries  *GalleryHandler
	Tags       *TagHandler
	Agencies   *AgencyHandler
	Admin      *AdminHandler
}

type RouterConfig struct {
	JWTSecret   string
	Users       middleware.UserLookup
	RateLimiter *middleware.RateLimiter
	Log         logrus.FieldLogger
	Metrics     metrics.Recorder
	Gatherer    prometheus.Gatherer
}

func SetupRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Log, cfg.Metrics))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(cfg.Gatherer)))
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.NoCache(), middleware.AuthMiddleware(cfg.JWTSecret, cfg.Users))
	if cfg.RateLimiter != nil {
		v1.Use(cfg.RateLimiter.Middleware())
	}
	{
		v1.GET("/profile", h.Admin.GetProfile)
		v1.GET("/notifications", h.Admin.GetNotifications)
		v1.POST("/notifications/:id/read", h.Admin.MarkNotificationRead)

		apps := v1.Group("/mobile_apps")
		{
			apps.POST("", h.MobileApps.CreateMobileApp)
			apps.GET("", h.MobileApps.GetMobileApps)
			apps.GET("/search", h.MobileApps.Search)
			apps.GET("/platform_counts", h.MobileApps.PlatformCounts)
			apps.GET("/export", h.MobileApps.ExportDetailed)
			apps.GET("/export/summary", h.MobileApps.ExportSummary)
			apps.GET("/:id", h.MobileApps.GetMobileApp)
			apps.PUT("/:id", h.MobileApps.UpdateMobileApp)
			apps.DELETE("/:id", h.MobileApps.DeleteMobileApp)
			apps.GET("/:id/activities", h.MobileApps.GetActivities)
			apps.POST("/:id/request_publish", h.MobileApps.RequestPublish)
			apps.POST("/:id/request_archive", h.MobileApps.RequestArchive)
			apps.POST("/:id/publish", middleware.RequireAdmin(), h.MobileApps.Publish)
			apps.POST("/:id/archive", middleware.RequireAdmin(), h.MobileApps.Archive)
		}

		galleries := v1.Group("/galleries")
		{
			galleries.POST("", h.Galleries.CreateGallery)
			galleries.GET("", h.Galleries.GetGalleries)
			galleries.GET("/search", h.Galleries.Search)
			galleries.GET("/:id", h.Galleries.GetGallery)
			galleries.PUT("/:id", h.Galleries.UpdateGallery)
			galleries.DELETE("/:id", h.Galleries.DeleteGallery)
			galleries.GET("/:id/activities", h.Galleries.GetActivities)
			galleries.POST("/:id/request_publish", h.Galleries.RequestPublish)
			galleries.POST("/:id/request_archive", h.Galleries.RequestArchive)
			galleries.POST("/:id/publish", middleware.RequireAdmin(), h.Galleries.Publish)
			galleries.POST("/:id/archive", middleware.RequireAdmin(), h.Galleries.Archive)
		}

		tags := v1.Group("/tags")
		{
			tags.POST("", middleware.RequireAdmin(), h.Tags.CreateTag)
			tags.GET("", h.Tags.GetTags)
			tags.GET("/:id", h.Tags.GetTag)
		}

		agencies := v1.Group("/agencies")
		{
			agencies.POST("", middleware.RequireAdmin(), h.Agencies.CreateAgency)
			agencies.GET("", h.Agencies.GetAgencies)
			agencies.GET("/:id", h.Agencies.GetAgency)
		}

		admin := v1.Group("/admin", middleware.RequireAdmin())
		{
			admin.GET("/users", h.Admin.GetUsers)
			admin.POST("/users", h.Admin.CreateUser)
			admin.PUT("/users/:id/role", h.Admin.UpdateUserRole)
			admin.POST("/users/:id/impersonate", h.Admin.Impersonate)
			admin.GET("/activities", h.Admin.GetActivities)
			admin.POST("/search/:kind/reindex", h.Admin.Reindex)
			admin.POST("/counters/refresh", h.Admin.RefreshCounters)
		}
	}

	return router
}
