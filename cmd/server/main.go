package main

import (
	"log"

	"capoff/internal/config"
	"capoff/internal/db"
	"capoff/internal/events"
	"capoff/internal/handlers"
	"capoff/internal/middleware"
	"capoff/internal/router"
	"capoff/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading config from environment")
	}

	cfg := config.Load()
	database := db.Init(cfg.DatabaseURL)

	// Event publishing is optional; the app runs fine without a broker.
	var pub *events.Publisher
	if cfg.AMQPURL != "" {
		p, err := events.Connect(cfg.AMQPURL)
		if err != nil {
			log.Printf("Event publisher disabled: %v", err)
		} else {
			pub = p
			defer pub.Close()
		}
	}

	users := services.NewUserService(database)
	video := services.NewVideoService(cfg)
	attempts := services.NewAttemptService(database, users, video, pub)
	votes := services.NewVoteService(database, users, pub)
	comments := services.NewCommentService(database, users, pub)

	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("capoff_session", store))
	r.Use(middleware.LoadIdentity(cfg.IdentitySecret))

	router.RegisterRoutes(r,
		handlers.NewAuthHandler(cfg.IdentitySecret),
		handlers.NewAttemptHandler(attempts),
		handlers.NewVoteHandler(votes),
		handlers.NewCommentHandler(comments),
		handlers.NewUploadHandler(video),
	)

	log.Printf("CapOff server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
