// @title Bs360 Backend API
// @version 1.0
// @description EBI 360 wellbeing platform API - Companies run wellbeing surveys, employees check in, and admins track results across the six Bs360 domains
// @termsOfService http://swagger.io/terms/

// @contact.name Bs360 Support
// @contact.email soporte@ebi360.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter your bearer token in the format: Bearer {token}

// Package main is the entry point for the Bs360 Backend API server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ebi360/bs360_backend/internal/auth"
	"github.com/ebi360/bs360_backend/internal/config"
	"github.com/ebi360/bs360_backend/internal/database"
	"github.com/ebi360/bs360_backend/internal/handlers"
	"github.com/ebi360/bs360_backend/internal/middleware"
	"github.com/ebi360/bs360_backend/internal/repository"
	"github.com/ebi360/bs360_backend/internal/services"

	// Swagger docs
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ebi360/bs360_backend/docs"
)

// Build-time variables (set via ldflags)
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database connection
	ctx := context.Background()
	dbCfg := database.Config{
		URI:                    cfg.DatabaseURI,
		Database:               cfg.DatabaseName,
		MaxPoolSize:            100,
		MinPoolSize:            10,
		MaxConnIdleTime:        30 * time.Minute,
		ConnectTimeout:         10 * time.Second,
		ServerSelectionTimeout: 10 * time.Second,
	}

	dbClient, err := database.NewClient(dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize JWT service early (before defer) to avoid exitAfterDefer issue
	jwtCfg := auth.JWTConfig{
		PrivateKeyPath:     cfg.JWTPrivateKeyPath,
		PublicKeyPath:      cfg.JWTPublicKeyPath,
		AccessTokenExpiry:  cfg.AccessTokenExpiry,
		RefreshTokenExpiry: cfg.RefreshTokenExpiry,
		Issuer:             "bs360-backend",
	}

	jwtService, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		if closeErr := dbClient.Close(ctx); closeErr != nil {
			log.Printf("Error closing database connection: %v", closeErr)
		}
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}

	defer func() {
		if closeErr := dbClient.Close(ctx); closeErr != nil {
			log.Printf("Error closing database connection: %v", closeErr)
		}
	}()

	// Ensure indexes
	log.Println("Creating database indexes...")
	if indexErr := dbClient.EnsureIndexes(ctx); indexErr != nil {
		log.Printf("Warning: Failed to create indexes: %v", indexErr)
	}

	// Seed initial data (base wellbeing survey)
	log.Println("Seeding initial data...")
	if seedErr := dbClient.SeedData(ctx); seedErr != nil {
		log.Printf("Warning: Failed to seed data: %v", seedErr)
	}

	// Initialize repositories
	companyRepo := repository.NewCompanyRepository(dbClient)
	profileRepo := repository.NewProfileRepository(dbClient)
	surveyRepo := repository.NewSurveyRepository(dbClient)
	questionRepo := repository.NewQuestionRepository(dbClient)
	resultRepo := repository.NewResultRepository(dbClient)
	secureLinkRepo := repository.NewSecureLinkRepository(dbClient)
	auditRepo := repository.NewAuditRepository(dbClient)

	// Initialize mail service (always use HTTP service)
	mailService := services.NewHTTPMailService(&cfg.Mail)

	// Initialize audit service with async worker
	auditService := services.NewAuditService(auditRepo)
	auditHelpers := services.NewAuditHelpers(auditService)

	// Initialize role service
	roleService := services.NewRoleService(
		profileRepo,
		jwtService,
		auditHelpers,
		cfg.IsSuperAdminEmail,
	)

	// Initialize auth service
	authServiceCfg := services.AuthServiceConfig{
		MagicLinkBaseURL:    cfg.MagicLinkBaseURL,
		RateLimitCount:      5,
		RateLimitWindowMins: 15,
	}
	authService := services.NewAuthService(
		profileRepo,
		companyRepo,
		secureLinkRepo,
		jwtService,
		mailService,
		roleService,
		authServiceCfg,
	)

	// Initialize company service
	companyService := services.NewCompanyService(companyRepo, auditHelpers)

	// Initialize employee service
	employeeService := services.NewEmployeeService(
		profileRepo,
		companyRepo,
		secureLinkRepo,
		mailService,
		auditHelpers,
		cfg.MagicLinkBaseURL,
	)

	// Initialize survey service
	surveyService := services.NewSurveyService(
		surveyRepo,
		questionRepo,
		auditHelpers,
	)

	// Initialize insights API client
	// #IMPLEMENTATION_DECISION: Use mock in development, HTTP client in production
	var insightsClient services.InsightsClient
	if cfg.IsDevelopment() || cfg.InsightsAPIURL == "" {
		log.Println("Using mock insights client in development mode")
		insightsClient = services.NewMockInsightsClient()
	} else {
		insightsClient = services.NewHTTPInsightsClient(cfg.InsightsAPIURL, cfg.InsightsAPIKey)
	}

	// Initialize check-in service
	checkInService := services.NewCheckInService(
		surveyRepo,
		questionRepo,
		resultRepo,
		insightsClient,
	)

	// Initialize reporting service
	reportingService := services.NewReportingService(resultRepo, profileRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, roleService)
	healthHandler := handlers.NewHealthHandler(dbClient, Version)
	companyHandler := handlers.NewCompanyHandler(companyService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)
	surveyHandler := handlers.NewSurveyHandler(surveyService)
	checkInHandler := handlers.NewCheckInHandler(checkInService)
	reportingHandler := handlers.NewReportingHandler(reportingService)

	// Create Gin router
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.SecureHeaders())

	// Global rate limiting
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	router.Use(rateLimiter.RateLimit())

	// Register health routes (not under /api/v1)
	healthHandler.RegisterRoutes(router)

	// Register Swagger documentation route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create API v1 group
	apiV1 := router.Group("/api/v1")

	// Create auth middleware
	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Register routes
	authHandler.RegisterRoutes(apiV1, authMiddleware)
	companyHandler.RegisterRoutes(apiV1, authMiddleware)
	employeeHandler.RegisterRoutes(apiV1, authMiddleware)
	surveyHandler.RegisterRoutes(apiV1, authMiddleware)
	checkInHandler.RegisterRoutes(apiV1, authMiddleware)
	reportingHandler.RegisterRoutes(apiV1, authMiddleware)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting Bs360 Backend API server v%s on port %s", Version, cfg.ServerPort)
		log.Printf("Build: %s | Commit: %s | Branch: %s", BuildTime, GitCommit, GitBranch)
		log.Printf("Environment: %s", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server shutdown complete")
}
