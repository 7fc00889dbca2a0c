package main

import (
	"github.com/gin-gonic/gin"
	"github.com/kanishkumar-karunakaran/task-management-system/internal/middleware"
	"github.com/kanishkumar-karunakaran/task-management-system/internal/models"
	"github.com/kanishkumar-karunakaran/task-management-system/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())

	// Rate limiter for credential endpoints
	authLimiter := middleware.NewRateLimiter(10, 20)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "task-management-system"})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
			auth.POST("/register", svc.authHandler.Register)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)

			// Self-service user endpoints
			protected.GET("/users/me", svc.userHandler.GetSelf)
			protected.PUT("/users/me", svc.userHandler.UpdateSelf)

			// Projects
			protected.GET("/projects", svc.projectHandler.List)
			protected.POST("/projects", svc.projectHandler.Create)
			protected.GET("/projects/:id", svc.projectHandler.GetByID)
			protected.PUT("/projects/:id", svc.projectHandler.Update)
			protected.DELETE("/projects/:id", svc.projectHandler.Delete)
			protected.GET("/projects/:id/progress-report", svc.projectHandler.ProgressReport)

			// Tasks
			protected.GET("/tasks", svc.taskHandler.List)
			protected.POST("/tasks", svc.taskHandler.Create)
			protected.GET("/tasks/:id", svc.taskHandler.GetByID)
			protected.PUT("/tasks/:id", svc.taskHandler.Update)
			protected.PATCH("/tasks/:id", svc.taskHandler.Patch)
			protected.PATCH("/tasks/:id/status", svc.taskHandler.UpdateStatus)
			protected.DELETE("/tasks/:id", svc.taskHandler.Delete)

			// Comments
			protected.GET("/comments", svc.commentHandler.List)
			protected.POST("/comments", svc.commentHandler.Create)
			protected.GET("/comments/:id", svc.commentHandler.GetByID)
			protected.PUT("/comments/:id", svc.commentHandler.Update)
			protected.DELETE("/comments/:id", svc.commentHandler.Delete)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.RequireRoles(models.RoleAdmin), middleware.AuditLog())
		{
			// User administration
			admin.GET("/users", svc.userHandler.List)
			admin.POST("/users", svc.userHandler.Create)
			admin.GET("/users/:id", svc.userHandler.GetByID)
			admin.PUT("/users/:id", svc.userHandler.Update)
			admin.DELETE("/users/:id", svc.userHandler.Delete)

			// Audit log
			admin.GET("/system-logs", svc.logHandler.List)
			admin.GET("/system-logs/modules", svc.logHandler.GetModules)
		}
	}
}
