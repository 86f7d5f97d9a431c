package service

import (
	"bitwise74/auth-api/internal/model"
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CleanupResult tells how many rows a cleanup pass touched
type CleanupResult struct {
	Passcodes   int64
	ResetTokens int64
}

// CleanupExpired deletes login codes that can no longer be used and clears
// reset tokens past their expiry, so a stored reset token is always a live one
func CleanupExpired(ctx context.Context, db *gorm.DB, now time.Time) (*CleanupResult, error) {
	db = db.WithContext(ctx)
	r := &CleanupResult{}

	res := db.
		Where("expires_at <= ?", now).
		Delete(&model.OneTimePasscode{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to delete expired otps, %w", res.Error)
	}
	r.Passcodes = res.RowsAffected

	res = db.
		Model(&model.Account{}).
		Where("reset_token_expiry IS NOT NULL AND reset_token_expiry <= ?", now).
		Updates(map[string]any{
			"reset_token":        nil,
			"reset_token_expiry": nil,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to clear expired reset tokens, %w", res.Error)
	}
	r.ResetTokens = res.RowsAffected

	return r, nil
}

// TokenCleanup schedules CleanupExpired on schedule (standard cron syntax or
// descriptors like "@every 1h"). The returned scheduler is already running
func TokenCleanup(schedule string, db *gorm.DB) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		r, err := CleanupExpired(context.Background(), db, time.Now().UTC())
		if err != nil {
			zap.L().Error("Failed to cleanup expired tokens", zap.Error(err))
			return
		}

		if r.Passcodes > 0 || r.ResetTokens > 0 {
			zap.L().Debug("Cleaned up expired tokens",
				zap.Int64("passcodes", r.Passcodes),
				zap.Int64("reset_tokens", r.ResetTokens))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule, %w", err)
	}

	zap.L().Debug("Token cleanup attached", zap.String("schedule", schedule))

	c.Start()
	return c, nil
}
