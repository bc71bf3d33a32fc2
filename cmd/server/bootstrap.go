package main

import (
	"github.com/huddlehq/huddle/backend/internal/config"
	"github.com/huddlehq/huddle/backend/internal/handlers"
	"github.com/huddlehq/huddle/backend/internal/models"
	"github.com/huddlehq/huddle/backend/internal/services"
	"github.com/huddlehq/huddle/backend/internal/utils"
	"github.com/huddlehq/huddle/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	taskQueue services.TaskQueue
	worker    *services.Worker
	accounts  *services.AccountService

	authHandler      *handlers.AuthHandler
	workspaceHandler *handlers.WorkspaceHandler
	inviteHandler    *handlers.InviteHandler
	channelHandler   *handlers.ChannelHandler
	taskHandler      *handlers.TaskHandler
	accountHandler   *handlers.AccountHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()

	// Email delivery and the task queue. Redis gives an async queue with
	// a worker; without it, mail goes out inline.
	emailService := services.NewEmailService(cfg.Email, cfg.App.FrontendURL)
	var taskQueue services.TaskQueue
	var worker *services.Worker
	if cfg.Redis.Enabled {
		taskQueue = services.NewAsyncQueue(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		worker = services.NewWorker(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, emailService)
		if err := worker.Start(); err != nil {
			logger.Fatalf("Failed to start task worker: %v", err)
		}
	} else {
		taskQueue = services.NewSyncQueue(emailService)
	}

	// Core services
	membershipService := services.NewMembershipService(db)
	workspaceService := services.NewWorkspaceService(db)
	inviteService := services.NewInviteService(db, membershipService, taskQueue, emailService)
	channelService := services.NewChannelService(db, membershipService)
	taskService := services.NewTaskService(db, membershipService)
	authService := services.NewAuthService(db)
	accountService := services.NewAccountService(db, taskQueue, emailService)

	// Nightly retention sweep for soft-deleted accounts
	if err := accountService.StartPurgeScheduler(); err != nil {
		logger.Fatalf("Failed to start purge scheduler: %v", err)
	}

	return &appServices{
		taskQueue: taskQueue,
		worker:    worker,
		accounts:  accountService,

		authHandler:      handlers.NewAuthHandler(authService, cfg),
		workspaceHandler: handlers.NewWorkspaceHandler(workspaceService, membershipService, inviteService),
		inviteHandler:    handlers.NewInviteHandler(inviteService),
		channelHandler:   handlers.NewChannelHandler(channelService),
		taskHandler:      handlers.NewTaskHandler(taskService),
		accountHandler:   handlers.NewAccountHandler(accountService),
	}
}

// shutdown stops background components in reverse start order.
func (svc *appServices) shutdown() {
	svc.accounts.StopPurgeScheduler()
	if svc.worker != nil {
		svc.worker.Shutdown()
	}
	if err := svc.taskQueue.Close(); err != nil {
		logger.Warn().Err(err).Msg("Task queue close failed")
	}
}
