package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campusconnect/internal/app/controllers"
	"github.com/yigit/campusconnect/internal/app/models/dto"
	"github.com/yigit/campusconnect/internal/middleware"
)

// Controllers groups every HTTP handler the router mounts
type Controllers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Connection *controllers.ConnectionController
	Message    *controllers.MessageController
	Workshop   *controllers.WorkshopController
	Chat       *controllers.ChatController
	Badge      *controllers.BadgeController
	Post       *controllers.PostController
	Presence   *controllers.PresenceController
	Chatbot    *controllers.ChatbotController

	// WorkshopSocket upgrades workshop chat subscriptions; nil disables the route
	WorkshopSocket gin.HandlerFunc
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, h Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Timestamp: time.Now()})
	})

	api := router.Group("/api")

	// --- Public Auth routes ---
	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.GET("/verify-email/:token", h.Auth.VerifyEmail)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
	}

	// Verified email required
	basic := api.Group("")
	basic.Use(authMiddleware.Authenticate())

	// Verified email and completed profile required
	full := basic.Group("")
	full.Use(authMiddleware.RequireCompletedProfile())

	users := basic.Group("/users")
	{
		users.GET("/me", h.User.GetMe)
		users.PUT("/me", h.User.UpdateMe)
		users.POST("/me/photo", h.User.UploadPhoto)
		users.GET("/search", h.User.Search)
		users.GET("/:id", h.User.GetProfile)
	}

	connections := basic.Group("/connections")
	{
		connections.GET("", h.Connection.List)
		connections.GET("/requests", h.Connection.Incoming)
		connections.GET("/sent", h.Connection.Outgoing)
		connections.GET("/status/:userId", h.Connection.Status)
	}
	connectionWrites := full.Group("/connections")
	{
		connectionWrites.POST("/:userId", h.Connection.Request)
		connectionWrites.PUT("/:id/accept", h.Connection.Accept)
		connectionWrites.DELETE("/:id", h.Connection.Remove)
	}

	messages := full.Group("/messages")
	{
		messages.GET("", h.Message.Threads)
		messages.GET("/unread/count", h.Message.UnreadCount)
		messages.GET("/:userId", h.Message.Conversation)
		messages.POST("/:userId", h.Message.Send)
		messages.PUT("/:userId/read", h.Message.MarkRead)
	}

	workshops := basic.Group("/workshops")
	{
		workshops.GET("", h.Workshop.List)
		workshops.GET("/:id", h.Workshop.Get)
		workshops.GET("/:id/messages", h.Chat.GetMessages)
	}
	if h.WorkshopSocket != nil {
		// Socket posts re-check profile completion per frame
		api.GET("/workshops/:id/ws", authMiddleware.AuthenticateSocket(), h.WorkshopSocket)
	}
	workshopWrites := full.Group("/workshops")
	{
		workshopWrites.POST("", h.Workshop.Create)
		workshopWrites.POST("/:id/join", h.Workshop.Join)
		workshopWrites.POST("/:id/leave", h.Workshop.Leave)
		workshopWrites.POST("/:id/start", h.Workshop.Start)
		workshopWrites.POST("/:id/end", h.Workshop.End)
		workshopWrites.POST("/:id/attend", h.Workshop.Attend)
		workshopWrites.POST("/:id/messages", h.Chat.PostMessage)
	}

	badges := basic.Group("/badges")
	{
		badges.GET("", h.Badge.List)
		badges.GET("/my", h.Badge.Mine)
		badges.GET("/user/:userId", h.Badge.ForUser)
	}
	full.POST("/badges/award", h.Badge.Award)

	posts := basic.Group("/posts")
	{
		posts.GET("", h.Post.Feed)
		posts.GET("/user/:userId", h.Post.ByUser)
		posts.GET("/:id", h.Post.Get)
	}
	postWrites := full.Group("/posts")
	{
		postWrites.POST("", h.Post.Create)
		postWrites.DELETE("/:id", h.Post.Delete)
		postWrites.POST("/:id/like", h.Post.Like)
		postWrites.DELETE("/:id/like", h.Post.Unlike)
		postWrites.POST("/:id/comments", h.Post.Comment)
		postWrites.POST("/:id/share", h.Post.Share)
	}

	presence := basic.Group("/presence")
	{
		presence.POST("/heartbeat", h.Presence.Heartbeat)
		presence.POST("/offline", h.Presence.Offline)
		presence.GET("/connections/status", h.Presence.Connections)
		presence.GET("/:userId", h.Presence.Get)
	}

	basic.POST("/chatbot", h.Chatbot.Ask)
}
