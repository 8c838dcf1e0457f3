package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"meetgo/backend/internal/config"
	"meetgo/backend/internal/models"
	"meetgo/backend/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "sweep-stale":
		// Resolves pending sessions older than the configured TTL. The
		// server itself never expires sessions; this is the operator's tool.
		ttl := config.PendingSessionTTL
		if len(os.Args) > 2 {
			var parseErr error
			ttl, parseErr = time.ParseDuration(os.Args[2])
			if parseErr != nil {
				fmt.Println("Invalid TTL. Provide a duration like 24h or 90m.")
				os.Exit(1)
			}
		}
		count, err := storageSvc.ExpireStalePending(ttl)
		if err != nil {
			log.Fatalf("Error sweeping stale sessions: %v", err)
		}
		fmt.Printf("Resolved %d stale pending session(s) older than %s.\n", count, ttl)
	case "end-session":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin end-session <session_id>")
			os.Exit(1)
		}
		sessionID := os.Args[2]
		if err := endSession(storageSvc, sessionID); err != nil {
			log.Fatalf("Error ending session: %v", err)
		}
		fmt.Printf("Session %s has been ended.\n", sessionID)
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func endSession(s storage.Storage, sessionID string) error {
	session, err := s.GetSessionByID(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("session %s not found", sessionID)
	}
	applied, err := s.ResolveSession(sessionID, models.StatusEnded, nil,
		models.StatusPending, models.StatusCompleted)
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("session %s is already closed", sessionID)
	}
	return nil
}
