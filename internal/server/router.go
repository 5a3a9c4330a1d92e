package server

import (
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/cors"
  "github.com/medloop/medloop-backend/internal/handlers"
  "github.com/medloop/medloop-backend/internal/middleware"
)

type RouterConfig struct {
  AuthHandler       *handlers.AuthHandler
  AuthMiddleware    *middleware.AuthMiddleware
  UserHandler       *handlers.UserHandler
  ObjectiveHandler  *handlers.ObjectiveHandler
  ValidationHandler *handlers.ValidationHandler
  MasteryHandler    *handlers.MasteryHandler
  MissionHandler    *handlers.MissionHandler
  AnalyticsHandler  *handlers.AnalyticsHandler
  InsightHandler    *handlers.InsightHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5174",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)
  router.POST("/register", cfg.AuthHandler.Register)
  router.POST("/login", cfg.AuthHandler.Login)
  router.POST("/refresh", cfg.AuthMiddleware.WithRefreshToken(), cfg.AuthHandler.Refresh)

// ===============
// || Protected ||
// ===============
  protected := router.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // Auth
  protected.POST("/logout", cfg.AuthHandler.Logout)
  // User
  protected.GET("/user", cfg.UserHandler.GetMe)
  // Objectives & challenges
  protected.GET("/objectives", cfg.ObjectiveHandler.List)
  protected.GET("/objectives/:id", cfg.ObjectiveHandler.Get)
  protected.GET("/objectives/:id/prompts", cfg.ObjectiveHandler.GetPrompts)
  protected.GET("/objectives/:id/scenarios", cfg.ObjectiveHandler.GetScenarios)
  // Validation responses
  protected.POST("/validation/responses", cfg.ValidationHandler.SubmitValidation)
  protected.POST("/validation/scenario-responses", cfg.ValidationHandler.SubmitScenario)
  // Mastery
  protected.POST("/objectives/:id/mastery/evaluate", cfg.MasteryHandler.Evaluate)
  protected.GET("/objectives/:id/mastery", cfg.MasteryHandler.GetStatus)
  // Missions
  protected.POST("/missions/generate", cfg.MissionHandler.GenerateDaily)
  protected.GET("/missions", cfg.MissionHandler.GetQueue)
  protected.POST("/missions/:id/complete", cfg.MissionHandler.Complete)
  // Analytics
  protected.GET("/analytics/dashboard", cfg.AnalyticsHandler.GetDashboard)
  protected.GET("/analytics/benchmark", cfg.AnalyticsHandler.GetBenchmark)
  // Insight proxy
  protected.POST("/insight/score", cfg.InsightHandler.ScoreFreeText)

  return router
}
