package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/credit-api/internal/config"
	"github.com/yourusername/credit-api/internal/handler"
	"github.com/yourusername/credit-api/internal/middleware"
	pgRepo "github.com/yourusername/credit-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/credit-api/internal/repository/redis"
	"github.com/yourusername/credit-api/internal/service"
	"github.com/yourusername/credit-api/pkg/auth"
	"github.com/yourusername/credit-api/pkg/database"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Loading configuration from %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Repositories
	userRepo := pgRepo.NewUserRepo(db)
	codeRepo := pgRepo.NewVerificationCodeRepo(db)
	locationRepo := pgRepo.NewLocationRepo(db)
	referenceRepo := pgRepo.NewReferenceRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Application-lifetime context; cancelling it stops the sweeper.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationMin)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	var emailService service.EmailService
	switch cfg.Email.Provider {
	case "resend":
		emailService, err = service.NewResendEmailService(cfg.Email.APIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize email service: %v", err)
			os.Exit(1)
		}
	default:
		log.Println("Email provider not configured, using noop sender")
		emailService = &service.NoopEmailService{}
	}

	// Services
	verificationService, err := service.NewVerificationService(
		db,
		codeRepo,
		userRepo,
		cfg.Verification.CodeTTL(),
		cfg.Verification.MaxAttempts,
		cfg.Verification.ResendCooldown(),
		cfg.Verification.CodePepper,
	)
	if err != nil {
		log.Printf("Failed to initialize VerificationService: %v", err)
		os.Exit(1)
	}

	authService := service.NewAuthService(db, userRepo, verificationService, emailService, jwtService, cfg.Email.SendTimeout())
	userService := service.NewUserService(userRepo, locationRepo)
	referenceService := service.NewReferenceService(referenceRepo)
	locationService := service.NewLocationService(locationRepo, cacheRepo)

	// The sweeper runs for the lifetime of the process.
	sweeper := service.NewPendingUserSweeper(userRepo, cfg.Sweeper.Interval(), cfg.Sweeper.Grace())
	go sweeper.Run(ctx)

	// Handlers
	tokenExpirySeconds := int(jwtService.Expiry().Seconds())
	authHandler := handler.NewAuthHandler(authService, tokenExpirySeconds)
	userHandler := handler.NewUserHandler(userService, referenceService)
	locationHandler := handler.NewLocationHandler(locationService)
	adminHandler := handler.NewAdminHandler(userService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode
	if isProduction {
		// Do not trust proxy headers unless a load balancer IP is configured.
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authGroup.Use(rateLimiter.LimitByIP(middleware.DefaultAuthRateLimitConfig()))
		{
			strict := rateLimiter.Limit(middleware.StrictAuthRateLimitConfig())
			authGroup.POST("/register", strict, authHandler.Register)
			authGroup.POST("/verify-otp", strict, authHandler.Activate)
			authGroup.POST("/login", strict, authHandler.Login)
		}

		locations := api.Group("/locations")
		locations.Use(rateLimiter.Limit(middleware.SearchRateLimitConfig()))
		{
			locations.GET("/cities", locationHandler.SearchCities)
			locations.GET("/cities/:id", locationHandler.GetCity)
		}

		users := api.Group("/users")
		users.Use(authMiddleware.RequireAuth())
		{
			users.GET("/me", userHandler.GetProfile)
			users.PATCH("/me", userHandler.UpdateProfile)
			users.PATCH("/me/password", userHandler.ChangePassword)

			users.GET("/me/references", userHandler.ListReferences)
			users.POST("/me/references", userHandler.CreateReference)
			users.PUT("/me/references/:id", userHandler.UpdateReference)
			users.DELETE("/me/references/:id", userHandler.DeleteReference)
		}

		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/export", adminHandler.ExportUsers)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop background work first, then drain in-flight requests.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Failed to close Redis client: %v", err)
	}
	if sqlDB, err := database.GetSQLDB(db); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Failed to close database connection: %v", err)
		}
	}

	log.Println("Server exited")
}
