package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/taskforge/internal/config"
	"github.com/taskforge/taskforge/internal/database"
	"github.com/taskforge/taskforge/internal/handlers"
	"github.com/taskforge/taskforge/internal/logging"
	"github.com/taskforge/taskforge/internal/middleware"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/repository"
	"github.com/taskforge/taskforge/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	if err := logging.Init(cfg.LogDir); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed bootstrap principals
	if cfg.SeedData {
		if err := database.Seed(); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	}

	db := database.GetDB()

	// Repositories
	principalRepo := repository.NewPrincipalRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Services
	authService := services.NewAuthService(principalRepo, cfg.JWTSecret)
	teamService := services.NewTeamService(teamRepo)
	taskService := services.NewTaskService(taskRepo, principalRepo, teamService)
	principalService := services.NewPrincipalService(principalRepo, teamService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	adminHandler := handlers.NewAdminHandler(principalService, teamService)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Taskforge API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/auth/login", authHandler.Login)

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(authService))
		{
			tasks.GET("/dashboard", taskHandler.Dashboard)
			tasks.GET("/my-tasks", taskHandler.ListMyTasks)
			tasks.GET("/my-team-tasks", taskHandler.ListMyTeamTasks)
			tasks.POST("/my-task", taskHandler.CreateMyTask)
			tasks.POST("/team-task", taskHandler.CreateTeamTask)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/user/:userId", taskHandler.ListUserTasks)
			tasks.GET("/all", taskHandler.ListAllTasks)
			tasks.POST("/:id/rate", taskHandler.RateTask)
			tasks.PUT("/my-task/:id", taskHandler.UpdateMyTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/my-task/:id", taskHandler.DeleteMyTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		// Admin routes (protected; admin-only except my-team)
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAuth(authService))
		{
			admin.GET("/my-team", middleware.RequireRole(models.RoleManager), adminHandler.MyTeam)

			adminOnly := admin.Group("")
			adminOnly.Use(middleware.RequireRole(models.RoleAdmin))
			{
				adminOnly.POST("/create-user", adminHandler.CreatePrincipal)
				adminOnly.POST("/managers", adminHandler.CreateManager)
				adminOnly.POST("/users", adminHandler.CreateUser)
				adminOnly.PUT("/assign-manager", adminHandler.AssignManager)
				adminOnly.GET("/users", adminHandler.Directory)
				adminOnly.GET("/managers", adminHandler.ListManagers)
				adminOnly.GET("/managers/:id/users", adminHandler.ManagerTeam)
				adminOnly.PUT("/users/:id", adminHandler.UpdateUser)
				adminOnly.DELETE("/users/:id", adminHandler.DeleteUser)
				adminOnly.DELETE("/delete-user/:id", adminHandler.DeletePrincipal)
				adminOnly.GET("/all-tasks", taskHandler.ListAllTasks)
			}
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
