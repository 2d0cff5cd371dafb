package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"teampulse/models"
)

// TokenCleanupWorker purges expired activation codes and used or expired
// password reset tokens so the token tables stay small and a leaked old token
// cannot be replayed.
type TokenCleanupWorker struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Interval time.Duration
}

func NewTokenCleanupWorker(db *gorm.DB, logger *log.Logger) *TokenCleanupWorker {
	return &TokenCleanupWorker{
		DB:       db,
		Logger:   logger,
		Interval: 1 * time.Hour,
	}
}

func (tw *TokenCleanupWorker) Start(ctx context.Context) {
	tw.Logger.Println("Starting token cleanup worker...")
	ticker := time.NewTicker(tw.Interval)

	for {
		select {
		case <-ticker.C:
			tw.cleanup()
		case <-ctx.Done():
			tw.Logger.Println("Stopping token cleanup worker...")
			ticker.Stop()
			return
		}
	}
}

func (tw *TokenCleanupWorker) cleanup() {
	now := time.Now()

	res := tw.DB.Where("expires_at < ? OR validated_at IS NOT NULL", now).
		Delete(&models.ActivationToken{})
	if res.Error != nil {
		tw.Logger.Printf("Failed to purge activation tokens: %v", res.Error)
	} else if res.RowsAffected > 0 {
		tw.Logger.Printf("Purged %d activation tokens", res.RowsAffected)
	}

	res = tw.DB.Where("expires_at < ? OR used = ?", now, true).
		Delete(&models.PasswordResetToken{})
	if res.Error != nil {
		tw.Logger.Printf("Failed to purge password reset tokens: %v", res.Error)
	} else if res.RowsAffected > 0 {
		tw.Logger.Printf("Purged %d password reset tokens", res.RowsAffected)
	}
}
