package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campusconnect/campusconnect/internal/app/controllers"
	"github.com/campusconnect/campusconnect/internal/app/models/dto"
	"github.com/campusconnect/campusconnect/internal/middleware"
	"github.com/campusconnect/campusconnect/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	profileController *controllers.ProfileController,
	sessionController *controllers.SessionController,
	communityController *controllers.CommunityController,
	chatController *controllers.ChatController,
	notificationController *controllers.NotificationController,
	wsHandler *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// The socket verifies its own token so anonymous connections can see the landing view
	router.GET("/ws", wsHandler.HandleConnection)

	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
	})

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		profile := authenticated.Group("/profile")
		{
			profile.PUT("", profileController.SaveProfile)
			profile.POST("/skills/suggest", profileController.SuggestSkills)
		}

		authenticated.POST("/users/:uid/block", profileController.ToggleBlock)
		authenticated.POST("/testimonials", profileController.AddTestimonial)

		sessions := authenticated.Group("/sessions")
		{
			sessions.POST("", sessionController.CreateSession)
			sessions.POST("/:id/join", sessionController.JoinSession)
			sessions.POST("/:id/leave", sessionController.LeaveSession)
			sessions.POST("/:id/end", sessionController.EndSession)
			sessions.GET("/:id/room", sessionController.VideoRoom)
		}

		communities := authenticated.Group("/communities")
		{
			communities.POST("", communityController.CreateCommunity)
			communities.PUT("/:id", communityController.UpdateCommunity)
			communities.POST("/:id/follow", communityController.ToggleFollow)

			// Admin management
			communities.POST("/:id/admins", communityController.AddAdmin)
			communities.DELETE("/:id/admins/:uid", communityController.RemoveAdmin)

			// Posts and comments
			communities.POST("/:id/posts", communityController.CreatePost)
			communities.PUT("/:id/posts/:postId", communityController.UpdatePost)
			communities.DELETE("/:id/posts/:postId", communityController.DeletePost)
			communities.POST("/:id/posts/:postId/like", communityController.ToggleLike)
			communities.POST("/:id/posts/:postId/comments", communityController.AddComment)
			communities.DELETE("/:id/posts/:postId/comments/:commentId", communityController.DeleteComment)
		}

		chats := authenticated.Group("/chats")
		{
			chats.POST("", chatController.OpenChat)
			chats.POST("/:id/messages", chatController.SendMessage)
			chats.POST("/:id/read", chatController.MarkRead)
		}

		authenticated.POST("/notifications/read-all", notificationController.MarkAllRead)
	}
}
