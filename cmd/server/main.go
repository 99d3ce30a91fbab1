package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/sotex-app/mantencion-api/internal/config"
	"github.com/sotex-app/mantencion-api/internal/constants"
	"github.com/sotex-app/mantencion-api/internal/database"
	"github.com/sotex-app/mantencion-api/internal/handlers"
	"github.com/sotex-app/mantencion-api/internal/mail"
	"github.com/sotex-app/mantencion-api/internal/middleware"
	"github.com/sotex-app/mantencion-api/internal/repository"
	"github.com/sotex-app/mantencion-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed roles and notification group entitlements
	if err := database.Seed(database.GetDB()); err != nil {
		log.Fatalf("Failed to seed reference data: %v", err)
	}

	// Initialize mailer (disabled when SMTP_URL is unset)
	mailer, err := mail.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize mailer: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)

	// Initialize services
	tokenService := services.NewTokenService(tokenRepo, cfg.BaseURL)
	notificationService := services.NewNotificationService(notificationRepo, mailer)
	authService := services.NewAuthService(userRepo, roleRepo, tokenService, notificationService)
	userService := services.NewUserService(userRepo, roleRepo, tokenService, notificationService)
	maintenanceService := services.NewMaintenanceService(maintenanceRepo, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	passwordHandler := handlers.NewPasswordHandler(authService, userService, mailer)
	userHandler := handlers.NewUserHandler(userService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Sotex Mantención API is running",
			"mail":    mailer.IsEnabled(),
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public except /me)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
			auth.POST("/forgot-password", passwordHandler.ForgotPassword)
			auth.POST("/set-password", passwordHandler.SetPassword)
		}

		// User management routes (admin)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth(), middleware.RequireAction(userRepo, services.ActionManageUsers))
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.POST("/new", passwordHandler.NewUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}
		api.POST("/users/reset-password",
			middleware.RequireAuth(),
			middleware.RequireAction(userRepo, services.ActionResetPasswords),
			passwordHandler.ResetPassword)

		// Notification routes (protected)
		notifications := api.Group("/notifications")
		notifications.Use(middleware.RequireAuth())
		{
			notifications.GET("/groups", notificationHandler.ListGroups)
			notifications.GET("/settings",
				middleware.RequireAction(userRepo, services.ActionManageSettings),
				notificationHandler.GetSettings)
			notifications.PUT("/settings",
				middleware.RequireAction(userRepo, services.ActionManageSettings),
				notificationHandler.UpdateSettings)
			notifications.GET("", notificationHandler.ListLog)
		}

		// Installation routes (admin managed, list open to any session)
		ships := api.Group("/ships")
		ships.Use(middleware.RequireAuth())
		{
			ships.GET("", maintenanceHandler.ListShips)
			ships.POST("", middleware.RequireAction(userRepo, services.ActionManageShips), maintenanceHandler.CreateShip)
		}

		// Maintenance request routes (protected)
		requests := api.Group("/requests")
		requests.Use(middleware.RequireAuth())
		{
			requests.GET("", maintenanceHandler.ListRequests)
			requests.POST("", middleware.RequireAction(userRepo, services.ActionCreateRequest), maintenanceHandler.CreateRequest)
			requests.POST("/:id/complete", middleware.RequireAction(userRepo, services.ActionCloseRequest), maintenanceHandler.CompleteRequest)
			requests.POST("/deadline-sweep", middleware.RequireAction(userRepo, services.ActionDeadlineSweep), maintenanceHandler.DeadlineSweep)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
