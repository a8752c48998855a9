// Package router assembles services, handlers and middleware into the HTTP
// API.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"bizdir/internal/cache"
	"bizdir/internal/clock"
	_ "bizdir/internal/docs"
	"bizdir/internal/handlers"
	"bizdir/internal/metrics"
	"bizdir/internal/middleware"
	"bizdir/internal/models"
	"bizdir/internal/services"
)

// Deps are the collaborators the API is built from.
type Deps struct {
	DB            *gorm.DB
	Cache         *cache.Versioned
	Clock         clock.Clock
	MetricsAPIKey string
}

// New builds the gin engine with every route registered.
func New(deps Deps) *gin.Engine {
	db := deps.DB

	// Services
	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db, auditService)
	businessService := services.NewBusinessService(db, deps.Cache)
	moderationService := services.NewModerationService(db, auditService, deps.Cache)
	searchService := services.NewSearchService(db)
	reviewService := services.NewReviewService(db)
	favoriteService := services.NewFavoriteService(db)
	promotionService := services.NewPromotionService(db, deps.Cache, deps.Clock)
	newsletterService := services.NewNewsletterService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	businessHandler := handlers.NewBusinessHandler(businessService, moderationService)
	searchHandler := handlers.NewSearchHandler(searchService)
	adminHandler := handlers.NewAdminHandler(businessService, moderationService, userService, auditService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteService)
	promotionHandler := handlers.NewPromotionHandler(promotionService)
	newsletterHandler := handlers.NewNewsletterHandler(newsletterService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(metrics.Middleware())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", middleware.MetricsAuthMiddleware(deps.MetricsAPIKey), gin.WrapH(promhttp.Handler()))
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	v1.GET("/businesses", businessHandler.ListBusinesses)
	v1.GET("/businesses/search", middleware.OptionalAuth(), searchHandler.Search)
	v1.GET("/businesses/recommendations", middleware.OptionalAuth(), searchHandler.Recommendations)
	v1.GET("/businesses/:id", businessHandler.GetBusiness)
	v1.GET("/businesses/:id/reviews", reviewHandler.ListReviews)
	v1.GET("/cities", businessHandler.ListCities)
	v1.GET("/promotions", promotionHandler.ListActive)
	v1.POST("/newsletter/subscribe", newsletterHandler.Subscribe)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/me/businesses", businessHandler.GetMyBusinesses)

	protected.POST("/businesses", businessHandler.CreateBusiness)
	protected.PUT("/businesses/:id", businessHandler.UpdateBusiness)
	protected.DELETE("/businesses/:id", businessHandler.DeleteBusiness)
	protected.POST("/businesses/:id/reviews", reviewHandler.CreateReview)
	protected.POST("/businesses/:id/promotions", promotionHandler.CreatePromotion)

	protected.DELETE("/reviews/:id", reviewHandler.DeleteReview)
	protected.DELETE("/promotions/:id", promotionHandler.DeletePromotion)

	protected.GET("/favorites", favoriteHandler.ListFavorites)
	protected.POST("/favorites/:id", favoriteHandler.ToggleFavorite)

	// Admin routes
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(models.UserRoleAdmin))
	admin.GET("/businesses", adminHandler.ListBusinesses)
	admin.POST("/businesses/:id/approve", adminHandler.ApproveBusiness)
	admin.POST("/businesses/:id/reject", adminHandler.RejectBusiness)
	admin.POST("/businesses/:id/suspend", adminHandler.SuspendBusiness)
	admin.DELETE("/businesses/:id", adminHandler.DeleteBusiness)
	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id/role", adminHandler.UpdateUserRole)
	admin.GET("/audit-logs", adminHandler.ListAuditLogs)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
