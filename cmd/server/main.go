package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/taskminder/taskminder/internal/auth"
	"github.com/taskminder/taskminder/internal/config"
	"github.com/taskminder/taskminder/internal/database"
	"github.com/taskminder/taskminder/internal/handlers"
	"github.com/taskminder/taskminder/internal/logging"
	"github.com/taskminder/taskminder/internal/middleware"
	"github.com/taskminder/taskminder/internal/notifier"
	"github.com/taskminder/taskminder/internal/reminder"
	"github.com/taskminder/taskminder/internal/repository"
	"github.com/taskminder/taskminder/internal/services"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	logging.Init("taskminder-api", cfg.LogFile)

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
	if cfg.DBDriver == "postgres" {
		if err := database.AddIndexes(database.GetDB()); err != nil {
			log.Fatalf("Failed to add indexes: %v", err)
		}
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		SecretKey:     cfg.JWTSecret,
		TokenDuration: cfg.JWTExpiry,
		Issuer:        cfg.JWTIssuer,
	})

	// Wire repositories and services
	userRepo := repository.NewUserRepository(database.GetDB())
	taskRepo := repository.NewTaskRepository(database.GetDB())
	authService := services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, jwtManager)
	taskHandler := handlers.NewTaskHandler(taskService)

	// Optional server-side reminder delivery
	if cfg.ReminderMailerEnabled {
		sender := notifier.New(cfg, logging.Logger)
		mailer := reminder.NewMailer(taskRepo, sender, cfg.ReminderMailerInterval, logging.Logger)
		go mailer.Run(context.Background())
		log.Printf("Reminder mailer enabled, sweeping every %s", cfg.ReminderMailerInterval)
	}

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task Manager API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", authHandler.Signup)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.GET("/me", middleware.RequireAuth(jwtManager), authHandler.GetCurrentUser)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(jwtManager))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.PUT("/:id/complete", taskHandler.ToggleComplete)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
