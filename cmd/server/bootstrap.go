package main

import (
	"github.com/kanishkumar-karunakaran/task-management-system/internal/config"
	"github.com/kanishkumar-karunakaran/task-management-system/internal/handlers"
	"github.com/kanishkumar-karunakaran/task-management-system/internal/models"
	"github.com/kanishkumar-karunakaran/task-management-system/internal/services"
	"github.com/kanishkumar-karunakaran/task-management-system/internal/utils"
	"github.com/kanishkumar-karunakaran/task-management-system/pkg/logger"
	"github.com/robfig/cron/v3"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg            *config.Config
	notifyQueue    services.NotifyQueue
	worker         *services.Worker
	logCleanup     *cron.Cron
	authHandler    *handlers.AuthHandler
	userHandler    *handlers.UserHandler
	projectHandler *handlers.ProjectHandler
	taskHandler    *handlers.TaskHandler
	commentHandler *handlers.CommentHandler
	logHandler     *handlers.SystemLogHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()

	services.InitSystemLogger(db)
	logCleanup := services.StartLogCleanupScheduler(db, cfg.Log.RetentionDays)

	// Notification pipeline: queue (Redis or in-process), mailer, worker.
	notifyQueue := services.InitNotifyQueue(cfg)
	mailer := services.NewEmailService(cfg.Email)
	notificationService := services.NewNotificationService(db, mailer, notifyQueue)

	var worker *services.Worker
	if cfg.Redis.Enabled && notifyQueue.IsAsync() {
		worker = services.NewWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(notificationService.Process)
			worker.Start()
		}
	}

	authHandler := handlers.NewAuthHandler(db, cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		cfg:            cfg,
		notifyQueue:    notifyQueue,
		worker:         worker,
		logCleanup:     logCleanup,
		authHandler:    authHandler,
		userHandler:    handlers.NewUserHandler(db),
		projectHandler: handlers.NewProjectHandler(db, cfg.Storage.MediaRoot),
		taskHandler:    handlers.NewTaskHandler(db, notificationService),
		commentHandler: handlers.NewCommentHandler(db),
		logHandler:     handlers.NewSystemLogHandler(db),
	}
}

// shutdown gracefully stops all background services.
func (s *appServices) shutdown() {
	if s.logCleanup != nil {
		s.logCleanup.Stop()
	}
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.notifyQueue != nil {
		s.notifyQueue.Close()
	}
	logger.Info().Msg("All background services stopped")
}
