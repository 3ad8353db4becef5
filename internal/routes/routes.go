package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/00yuyi00/ChongYu/internal/handler"
	"github.com/00yuyi00/ChongYu/internal/middleware"
	"github.com/00yuyi00/ChongYu/pkg/jwt"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	authHandler *handler.AuthHandler,
	postHandler *handler.PostHandler,
	publishHandler *handler.PublishHandler,
	messageHandler *handler.MessageHandler,
	favoriteHandler *handler.FavoriteHandler,
	feedbackHandler *handler.FeedbackHandler,
	guideHandler *handler.GuideHandler,
	profileHandler *handler.ProfileHandler,
	uploadHandler *handler.UploadHandler,
	adminHandler *handler.AdminHandler,
	wsHandler *handler.WSHandler,
	jwtManager *jwt.Manager,
	redisClient *redis.Client,
) {
	api := router.Group("/api/v1")
	api.Use(middleware.RateLimit(redisClient, middleware.DefaultRateLimitConfig()))

	// Authentication (no auth required)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", middleware.JWTAuth(jwtManager), authHandler.Me)

	// Public listing; the detail page personalizes when a token is present
	posts := api.Group("/posts")
	posts.GET("", postHandler.List)
	posts.GET("/mine", middleware.JWTAuth(jwtManager), postHandler.MyPosts)
	posts.GET("/:id", middleware.OptionalAuth(jwtManager), postHandler.Get)
	posts.POST("/:id/resolve", middleware.JWTAuth(jwtManager), postHandler.Resolve)

	// Publish wizard (two steps plus submit)
	publish := api.Group("/publish", middleware.JWTAuth(jwtManager), middleware.RateLimitPerUser(redisClient, 30))
	publish.POST("/compose", publishHandler.Compose)
	publish.GET("/confirm", publishHandler.Confirm)
	publish.POST("/submit", publishHandler.Submit)
	publish.DELETE("/draft", publishHandler.Discard)

	// Private messages
	messages := api.Group("/messages", middleware.JWTAuth(jwtManager), middleware.RateLimitPerUser(redisClient, 60))
	messages.POST("", messageHandler.Send)
	messages.GET("/conversations", messageHandler.Conversations)
	messages.GET("/with/:userID", messageHandler.History)

	// Favorites
	favorites := api.Group("/favorites", middleware.JWTAuth(jwtManager))
	favorites.GET("", favoriteHandler.List)
	favorites.POST("/:postID", favoriteHandler.Add)
	favorites.DELETE("/:postID", favoriteHandler.Remove)

	// Feedback
	feedback := api.Group("/feedback", middleware.JWTAuth(jwtManager))
	feedback.POST("", feedbackHandler.Submit)
	feedback.GET("/mine", feedbackHandler.Mine)

	// Care guides (public)
	guides := api.Group("/guides")
	guides.GET("", guideHandler.List)
	guides.GET("/counts", guideHandler.Counts)
	guides.GET("/:id", guideHandler.Get)

	// Profiles
	profiles := api.Group("/profiles")
	profiles.GET("/:id", profileHandler.Get)
	profiles.PATCH("/me", middleware.JWTAuth(jwtManager), profileHandler.Update)
	profiles.POST("/me/avatar", middleware.JWTAuth(jwtManager), profileHandler.UploadAvatar)

	// Direct uploads
	api.POST("/uploads", middleware.JWTAuth(jwtManager), uploadHandler.Upload)

	// Admin console
	admin := api.Group("/admin", middleware.JWTAuth(jwtManager), middleware.RequireAdmin())
	admin.GET("/stats", adminHandler.Stats)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/users/:id/posts", adminHandler.UserPosts)
	admin.POST("/posts/:id/takedown", adminHandler.TakeDownPost)
	admin.POST("/posts/:id/restore", adminHandler.RestorePost)
	admin.GET("/feedback", adminHandler.ListFeedback)
	admin.POST("/feedback/:id/resolve", adminHandler.ResolveFeedback)
	admin.GET("/guides", adminHandler.ListGuides)
	admin.POST("/guides", adminHandler.CreateGuide)
	admin.PUT("/guides/:id", adminHandler.UpdateGuide)

	// Realtime message push (token via query param)
	router.GET("/ws/messages", wsHandler.Connect)
	router.GET("/ws/conversations/:counterpartID", wsHandler.ConversationStream)
}
