package main

import (
	"context"
	"log"
	"os"
	"time"

	"uniportal/internal/database"
	"uniportal/internal/repository"
)

// Retention for revoked sessions before they are purged. Expired
// sessions are always eligible.
const revokedRetention = 30 * 24 * time.Hour

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	ctx := context.Background()

	sessions := repository.NewRefreshSessionRepository(db)
	removedSessions, err := sessions.DeleteExpired(ctx, revokedRetention)
	if err != nil {
		log.Fatalf("cleanup refresh_sessions failed: %v", err)
	}

	users := repository.NewUserRepository(db)
	clearedResets, err := users.ClearExpiredResetTokens(ctx)
	if err != nil {
		log.Fatalf("cleanup reset tokens failed: %v", err)
	}

	log.Printf("auth cleanup completed: refresh_sessions=%d reset_tokens=%d", removedSessions, clearedResets)
}
