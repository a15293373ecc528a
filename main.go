package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"interview-copilot/api/handlers"
	"interview-copilot/api/logger"
	"interview-copilot/api/middleware"
	"interview-copilot/api/mongodb"
	"interview-copilot/api/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	development := os.Getenv("ENVIRONMENT") != "production"
	if err := logger.Init(development, logger.InfoLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := mongodb.InitMongoDB(); err != nil {
		logger.Get().Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer mongodb.CloseMongoDB()

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	pool := worker.NewPool(8, 256)
	defer pool.Shutdown()
	handlers.InitCaptions(pool)

	if !development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Stripe authenticates webhooks by signature, not by session token.
	router.POST("/api/billing/webhook", handlers.StripeWebhook)

	api := router.Group("/api", middleware.AuthMiddleware())
	{
		api.POST("/profiles", handlers.CreateProfile)
		api.GET("/profiles", handlers.ListProfiles)
		api.GET("/profiles/:id", handlers.GetProfile)
		api.PATCH("/profiles/:id", handlers.RenameProfile)
		api.DELETE("/profiles/:id", handlers.DeleteProfile)

		api.POST("/meeting/turns", handlers.CreateMeetingTurn)
		api.GET("/meeting/turns", handlers.ListMeetingTurns)
		api.GET("/meeting/turns/:id", handlers.GetMeetingTurn)
		api.PATCH("/meeting/turns/:id", handlers.UpdateMeetingTurnAnswer)

		api.GET("/subscription", handlers.GetSubscription)
		api.POST("/subscription", handlers.AddSubscriptionMinutes)
		api.GET("/subscription/plans", handlers.ListPlans)
		api.POST("/subscription/consume", handlers.ConsumeMinutes)
		api.POST("/billing/checkout", handlers.CreateCheckoutSession)

		api.POST("/answers/relay", handlers.StreamAnswer)

		api.GET("/captions/ws", handlers.CaptionsWebSocket)
		api.GET("/captions/:sessionID/stream", handlers.CaptionsStream)

		api.POST("/voices", handlers.CreateVoiceProfile)
		api.GET("/voices", handlers.ListVoiceProfiles)
		api.PATCH("/voices/:id", handlers.RenameVoiceProfile)
		api.DELETE("/voices/:id", handlers.DeleteVoiceProfile)
		api.POST("/voice/speak", handlers.SpeakText)
		api.GET("/voice/stream", handlers.StreamVoiceText)

		api.GET("/stt/token", handlers.GrantSpeechToken)
		api.GET("/stt/remote", handlers.ProxyRemoteAudio)

		api.GET("/settings", handlers.GetSettings)
		api.PATCH("/settings", handlers.UpdateSettings)

		api.DELETE("/account", handlers.DeleteAccount)
	}

	internal := router.Group("/internal", middleware.InternalAPIMiddleware())
	{
		internal.GET("/metrics/workers", pool.MetricsHandler())
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Get().Info("Starting server", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Get().Fatal("Server exited", zap.Error(err))
	}
}
