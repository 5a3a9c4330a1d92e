package main

import (
  "fmt"
  "os"
  "time"
  "github.com/medloop/medloop-backend/internal/logger"
  "github.com/medloop/medloop-backend/internal/utils"
  "github.com/medloop/medloop-backend/internal/db"
  "github.com/medloop/medloop-backend/internal/clients/insight"
  redisclient "github.com/medloop/medloop-backend/internal/clients/redis"
  "github.com/medloop/medloop-backend/internal/repos"
  "github.com/medloop/medloop-backend/internal/services"
  "github.com/medloop/medloop-backend/internal/handlers"
  "github.com/medloop/medloop-backend/internal/middleware"
  "github.com/medloop/medloop-backend/internal/server"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
  thresholdsPath := utils.GetEnv("MASTERY_THRESHOLDS_FILE", "", log)

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Scoring thresholds
  thresholds, err := services.LoadMasteryThresholds(thresholdsPath)
  if err != nil {
    log.Warn("Could not load mastery thresholds, using defaults", "error", err)
    thresholds = services.DefaultMasteryThresholds()
  }

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  objectiveRepo := repos.NewLearningObjectiveRepo(thePG, log)
  validationResponseRepo := repos.NewValidationResponseRepo(thePG, log)
  scenarioResponseRepo := repos.NewScenarioResponseRepo(thePG, log)
  masteryVerificationRepo := repos.NewMasteryVerificationRepo(thePG, log)
  reviewStateRepo := repos.NewObjectiveReviewStateRepo(thePG, log)
  missionRepo := repos.NewMissionRepo(thePG, log)
  userEventRepo := repos.NewUserEventRepo(thePG, log)

  // Clients
  cache, err := redisclient.NewCache(log)
  if err != nil {
    log.Warn("Could not init Redis cache, analytics caching disabled", "error", err)
    cache = nil
  }
  insightClient, err := insight.NewClient(log)
  if err != nil {
    log.Warn("Could not init insight client, free-text scoring disabled", "error", err)
    insightClient = nil
  }

  // Services
  log.Info("Setting up Services from main...")
  authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
  userService := services.NewUserService(thePG, log, userRepo)
  objectiveService := services.NewObjectiveService(thePG, log, objectiveRepo)
  masteryService := services.NewMasteryService(thePG, log, objectiveRepo, validationResponseRepo, scenarioResponseRepo, masteryVerificationRepo, thresholds)
  validationService := services.NewValidationService(thePG, log, validationResponseRepo, scenarioResponseRepo, userEventRepo, masteryService)
  missionService := services.NewMissionService(thePG, log, missionRepo, reviewStateRepo, objectiveRepo, thresholds)
  analyticsService := services.NewAnalyticsService(thePG, log, cache, validationResponseRepo, scenarioResponseRepo, masteryVerificationRepo, userEventRepo)

  // Handlers
  log.Info("Setting up handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  userHandler := handlers.NewUserHandler(userService)
  objectiveHandler := handlers.NewObjectiveHandler(objectiveService)
  validationHandler := handlers.NewValidationHandler(validationService, analyticsService)
  masteryHandler := handlers.NewMasteryHandler(masteryService)
  missionHandler := handlers.NewMissionHandler(missionService)
  analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
  insightHandler := handlers.NewInsightHandler(insightClient)

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    AuthHandler:       authHandler,
    AuthMiddleware:    authMiddleware,
    UserHandler:       userHandler,
    ObjectiveHandler:  objectiveHandler,
    ValidationHandler: validationHandler,
    MasteryHandler:    masteryHandler,
    MissionHandler:    missionHandler,
    AnalyticsHandler:  analyticsHandler,
    InsightHandler:    insightHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Error("Server failed", "error", err)
  }
}
