package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/webclarity/clarity-backend/internal/db"
	"github.com/webclarity/clarity-backend/internal/handlers"
	"github.com/webclarity/clarity-backend/internal/logger"
	"github.com/webclarity/clarity-backend/internal/middleware"
	"github.com/webclarity/clarity-backend/internal/observability"
	"github.com/webclarity/clarity-backend/internal/repos"
	"github.com/webclarity/clarity-backend/internal/seed"
	"github.com/webclarity/clarity-backend/internal/server"
	"github.com/webclarity/clarity-backend/internal/services"
	"github.com/webclarity/clarity-backend/internal/utils"
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

	// Tracing
	shutdownTracing, err := observability.SetupTracing(log)
	if err != nil {
		log.Warn("Tracing init failed", "error", err)
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(ctx)
		}()
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	profileRepo := repos.NewProfileRepo(thePG, log)
	presetRepo := repos.NewPresetRepo(thePG, log)
	analysisRepo := repos.NewAnalysisRepo(thePG, log)
	suggestionRepo := repos.NewSuggestionRepo(thePG, log)
	usageEventRepo := repos.NewUsageEventRepo(thePG, log)

	// Seed system presets
	if err := seed.EnsurePresets(context.Background(), presetRepo, log); err != nil {
		log.Error("Preset seeding failed", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up services from main...")
	usageService := services.NewUsageService(log, usageEventRepo)
	defer usageService.Close()
	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
	profileService := services.NewProfileService(thePG, log, profileRepo)
	presetService := services.NewPresetService(thePG, log, presetRepo, profileService, usageService)
	textGenerator, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Warn("Could not init OpenAI client, suggestions stay rule-based", "error", err)
	}
	suggestionService := services.NewSuggestionService(thePG, log, suggestionRepo, profileService, usageService, textGenerator)
	pageFetcher := services.NewPageFetcher(log, nil)
	analysisService := services.NewAnalysisService(thePG, log, pageFetcher, analysisRepo, suggestionService, usageService)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(profileService)
	presetHandler := handlers.NewPresetHandler(presetService)
	analysisHandler := handlers.NewAnalysisHandler(analysisService)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:       authHandler,
		AuthMiddleware:    authMiddleware,
		ProfileHandler:    profileHandler,
		PresetHandler:     presetHandler,
		AnalysisHandler:   analysisHandler,
		SuggestionHandler: suggestionHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
