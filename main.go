package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"betweenchat/config"
	"betweenchat/database"
	"betweenchat/handlers"
	"betweenchat/middleware"
	"betweenchat/realtime"
)

func main() {
	config.Load()

	db, err := database.Connect(config.Cfg.MysqlDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.CreateTables(db); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	rdb, err := realtime.NewRedisClient(config.Cfg.RedisAddr, config.Cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	hub := realtime.NewHub(rdb)
	go hub.Run()

	profiles := database.NewProfileStore(db)
	friendships := database.NewFriendshipStore(db)
	channels := database.NewChannelStore(db)
	messages := database.NewMessageStore(db)
	reads := database.NewReadStore(db)
	questions := database.NewQuestionStore(db)
	events := realtime.NewRedisPublisher(rdb)

	authHandler := handlers.NewAuthHandler(profiles, config.Cfg.JWTSecret)
	profileHandler := handlers.NewProfileHandler(profiles)
	friendHandler := handlers.NewFriendHandler(friendships, profiles, channels, events)
	channelHandler := handlers.NewChannelHandler(channels, profiles, messages)
	messageHandler := handlers.NewMessageHandler(messages, channels, profiles, questions, reads, events)
	readHandler := handlers.NewReadHandler(channels, messages, reads)
	sessionHandler := handlers.NewSessionHandler(profiles, channels, messages)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware(config.Cfg.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", middleware.AuthMiddleware(config.Cfg.JWTSecret), authHandler.RefreshToken)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(config.Cfg.JWTSecret))
	{
		api.GET("/profile", profileHandler.Get)
		api.PUT("/profile", profileHandler.Update)

		api.POST("/friends/search", friendHandler.Search)
		api.POST("/friends/invite", friendHandler.SendInvitation)
		api.POST("/friends/respond", friendHandler.Respond)
		api.GET("/friends", friendHandler.ListFriends)
		api.GET("/friends/invitations", friendHandler.ListInvitations)

		api.GET("/channels", channelHandler.List)

		api.POST("/messages/pending", messageHandler.CreatePending)
		api.POST("/messages/commit", messageHandler.Commit)
		api.POST("/messages/list", messageHandler.List)
		api.POST("/messages/read", readHandler.MarkRead)

		api.POST("/session/init", sessionHandler.Init)
	}

	r.GET("/ws", realtime.ServeWS(hub, config.Cfg.JWTSecret))

	log.Printf("Server starting on %s", config.Cfg.ServerAddr)
	if err := r.Run(config.Cfg.ServerAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
