package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"meetgo/backend/internal/api/handler"
	"meetgo/backend/internal/meetup"
	"meetgo/backend/internal/models"
	"meetgo/backend/internal/notify"
	"meetgo/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupDependencies() (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		envOr("DB_HOST", "localhost"),
		envOr("DB_USER", "user"),
		envOr("DB_PASSWORD", "password"),
		envOr("DB_NAME", "meetgodb"),
		envOr("DB_PORT", "5432"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     envOr("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.MeetupSession{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// The single-pending-per-pair invariant is enforced at the storage level:
	// at most one pending session may exist for an unordered user pair.
	err = db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_one_pending_per_pair
        ON meetup_sessions (LEAST(requester_id, addressee_id), GREATEST(requester_id, addressee_id))
        WHERE status = 'pending'
    `).Error
	if err != nil {
		log.Fatalf("Failed to create pending-pair index: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

// recoverActiveSessions drops session ids from the Redis active set whose
// database records are gone or already terminal, so the set reflects reality
// after a restart.
func recoverActiveSessions(s *storage.Service) {
	ids, err := s.ActiveSessionIDs()
	if err != nil {
		log.Printf("ERROR: Failed to load active session set: %v", err)
		return
	}

	open := 0
	for _, id := range ids {
		session, err := s.GetSessionByID(id)
		if err != nil {
			log.Printf("WARNING: Could not check session %s during recovery: %v", id, err)
			continue
		}
		if session == nil || session.Status.IsTerminal() {
			if err := s.UntrackActiveSession(id); err != nil {
				log.Printf("WARNING: Failed to untrack stale session %s: %v", id, err)
			}
			continue
		}
		open++
	}
	log.Printf("Recovery complete. %d sessions still open.", open)
}

func main() {
	log.Println("Starting MeetGo Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	// 1. Dependencies
	db, rdb := setupDependencies()
	s := storage.NewStorageService(db, rdb)

	// 2. Session manager
	manager := meetup.NewManager(s)

	recoverActiveSessions(s)

	// 3. Optional ops notifier
	if botToken := os.Getenv("TELEGRAM_BOT_TOKEN"); botToken != "" {
		chatID, err := strconv.ParseInt(os.Getenv("TELEGRAM_OPS_CHAT_ID"), 10, 64)
		if err != nil {
			log.Fatalf("TELEGRAM_OPS_CHAT_ID must be set with TELEGRAM_BOT_TOKEN: %v", err)
		}
		notifier, err := notify.NewService(botToken, chatID, s)
		if err != nil {
			log.Fatalf("Failed to start ops notifier: %v", err)
		}
		go notifier.Run()
	}

	// 4. Gin routing
	r := gin.Default()
	h := handler.NewHandler(manager, s)

	r.GET("/identity", h.GetIdentity)
	r.GET("/ws/meetups", h.ServeStatusWS)

	api := r.Group("/api", h.AuthRequired())
	{
		api.POST("/meetups/request", h.RequestMeetup)
		api.POST("/meetups/confirm/:sessionId", h.ConfirmMeetup)
		api.PUT("/meetups/deny/:sessionId", h.DenyMeetup)
		api.POST("/meetups/end/:sessionId", h.EndMeetup)
		api.GET("/meetups/status/:sessionId", h.MeetupStatus)
		api.GET("/meetups/pending", h.PendingMeetups)
	}

	server := &http.Server{
		Addr:           ":" + envOr("PORT", "8080"),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
