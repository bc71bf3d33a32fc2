package main

import (
	"github.com/gin-gonic/gin"

	"github.com/huddlehq/huddle/backend/internal/middleware"
	"github.com/huddlehq/huddle/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the public recovery routes
	recoveryLimiter := middleware.NewRateLimiter(1, 5)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "huddle"})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", svc.authHandler.Signup)
			auth.POST("/login", svc.authHandler.Login)
		}

		// Account recovery (public, rate limited, enumeration-proof)
		recovery := api.Group("/account/recovery", recoveryLimiter.Middleware())
		{
			recovery.POST("/request", svc.accountHandler.RequestRecovery)
			recovery.GET("/:token", svc.accountHandler.ValidateRecoveryToken)
			recovery.POST("/:token", svc.accountHandler.Recover)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.GET("/auth/me", svc.authHandler.Me)
			protected.PUT("/auth/me", svc.authHandler.UpdateProfile)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Account
			protected.DELETE("/account", svc.accountHandler.Delete)
			protected.GET("/account/export", svc.accountHandler.Export)

			// Workspaces
			workspaces := protected.Group("/workspaces")
			{
				workspaces.POST("", svc.workspaceHandler.Create)
				workspaces.GET("", svc.workspaceHandler.List)
				workspaces.GET("/slug/:slug", svc.workspaceHandler.GetBySlug)
				workspaces.GET("/:id", svc.workspaceHandler.Get)
				workspaces.PUT("/:id", svc.workspaceHandler.Update)
				workspaces.DELETE("/:id", svc.workspaceHandler.Delete)

				// Membership
				workspaces.GET("/:id/members", svc.workspaceHandler.ListMembers)
				workspaces.GET("/:id/membership", svc.workspaceHandler.CheckMembership)
				workspaces.PUT("/:id/members/:userId/role", svc.workspaceHandler.SetMemberRole)
				workspaces.DELETE("/:id/members/:userId", svc.workspaceHandler.RemoveMember)
				workspaces.POST("/:id/leave", svc.workspaceHandler.Leave)

				// Invites
				workspaces.POST("/:id/invites", svc.inviteHandler.Issue)
				workspaces.GET("/:id/invites", svc.inviteHandler.ListForWorkspace)

				// Channels
				workspaces.POST("/:id/channels", svc.channelHandler.Create)
				workspaces.GET("/:id/channels", svc.channelHandler.ListForWorkspace)

				// Tasks
				workspaces.POST("/:id/tasks", svc.taskHandler.Create)
				workspaces.GET("/:id/tasks", svc.taskHandler.ListForWorkspace)
			}

			// Invite resolution by token
			invites := protected.Group("/invites")
			{
				invites.GET("", svc.inviteHandler.ListMine)
				invites.GET("/:token", svc.inviteHandler.Get)
				invites.POST("/:token/accept", svc.inviteHandler.Accept)
				invites.POST("/:token/decline", svc.inviteHandler.Decline)
			}

			// Channels
			channels := protected.Group("/channels")
			{
				channels.GET("/:id", svc.channelHandler.Get)
				channels.PUT("/:id", svc.channelHandler.Update)
				channels.DELETE("/:id", svc.channelHandler.Delete)
				channels.POST("/:id/messages", svc.channelHandler.SendMessage)
				channels.GET("/:id/messages", svc.channelHandler.ListMessages)
			}

			// Direct messages
			dms := protected.Group("/messages")
			{
				dms.POST("/:userId", svc.channelHandler.SendDirectMessage)
				dms.GET("/:userId", svc.channelHandler.ListDirectMessages)
			}

			// Tasks
			tasks := protected.Group("/tasks")
			{
				tasks.PUT("/:id/assignee", svc.taskHandler.Assign)
				tasks.PUT("/:id/status", svc.taskHandler.SetStatus)
			}
		}
	}
}
