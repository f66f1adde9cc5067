package main // Entry point package

import (
	"context"
	"log" // Logging library
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/user-auth-service/internal/cleanup"
	"github.com/iliyamo/user-auth-service/internal/config"
	"github.com/iliyamo/user-auth-service/internal/database"
	"github.com/iliyamo/user-auth-service/internal/handler"
	"github.com/iliyamo/user-auth-service/internal/notify"
	"github.com/iliyamo/user-auth-service/internal/queue"
	"github.com/iliyamo/user-auth-service/internal/repository"
	"github.com/iliyamo/user-auth-service/internal/router"
	"github.com/iliyamo/user-auth-service/internal/session"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env vars directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	users := repository.NewUserRepo(db)
	otps := repository.NewOTPRepo(db)

	// Sessions live in Redis when it is reachable; otherwise fall back
	// to process-local sessions so a missing cache never blocks auth.
	rdb := config.NewRedisClient()
	var sessions session.Store
	if rdb != nil {
		sessions = session.NewRedisStore(rdb)
	} else {
		log.Printf("redis unavailable, using in-process session store")
		sessions = session.NewMemoryStore()
	}

	mailer := notify.NewAMQPMailer()
	if os.Getenv("NOTIFY_CONSUMER") != "off" {
		go func() {
			if err := queue.StartEmailConsumer(mailer.URL); err != nil {
				log.Printf("notify-consumer stopped: %v", err)
			}
		}()
	}

	sweeper := cleanup.NewSweeper(otps, cfg.CleanupInterval)
	go sweeper.Run(context.Background())

	e := echo.New()
	router.RegisterRoutes(e)
	a := handler.NewAuthHandler(cfg, users, otps, sessions, mailer)
	router.RegisterAuth(e, a, sessions, rdb)
	router.RegisterUsers(e, handler.NewUserHandler(users), cfg.SessionSecret, sessions)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
