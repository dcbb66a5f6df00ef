package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/webclarity/clarity-backend/internal/handlers"
	"github.com/webclarity/clarity-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler       *handlers.AuthHandler
	AuthMiddleware    *middleware.AuthMiddleware
	ProfileHandler    *handlers.ProfileHandler
	PresetHandler     *handlers.PresetHandler
	AnalysisHandler   *handlers.AnalysisHandler
	SuggestionHandler *handlers.SuggestionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("clarity-backend"))

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	api.POST("/register", cfg.AuthHandler.Register)
	api.POST("/login", cfg.AuthHandler.Login)

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Accessibility profile and presets
	protected.GET("/accessibility/settings/current", cfg.ProfileHandler.GetCurrent)
	protected.POST("/accessibility/settings/bulk_update", cfg.ProfileHandler.BulkUpdate)
	protected.GET("/accessibility/presets", cfg.PresetHandler.List)
	protected.POST("/accessibility/presets/:id/apply", cfg.PresetHandler.Apply)

	// Analysis
	protected.POST("/accessibility/analysis/analyze", cfg.AnalysisHandler.Analyze)

	// Suggestions
	protected.POST("/ai/suggestions/generate", cfg.SuggestionHandler.Generate)
	protected.GET("/ai/suggestions/user", cfg.SuggestionHandler.ListMine)
	protected.POST("/ai/suggestions/:id/apply", cfg.SuggestionHandler.Apply)
	protected.POST("/ai/suggestions/:id/dismiss", cfg.SuggestionHandler.Dismiss)
	protected.POST("/ai/suggestions/:id/feedback", cfg.SuggestionHandler.Feedback)

	return router
}
