package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interview-copilot/api/logger"
	"interview-copilot/api/mongodb"
	"interview-copilot/api/voice"
)

// DeleteAccount removes every document the user owns and cleans up their
// voice clones at the vendor. Vendor failures are logged but do not block
// the local deletion.
func DeleteAccount(c *gin.Context) {
	uid := userID(c)
	ctx := c.Request.Context()

	vendorVoiceIDs, err := mongodb.DeleteVoiceProfilesForUser(ctx, uid)
	if err != nil {
		logger.Get().Error("Account deletion: voice profiles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}

	profiles, err := mongodb.DeleteProfilesForUser(ctx, uid)
	if err != nil {
		logger.Get().Error("Account deletion: profiles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}

	turns, err := mongodb.DeleteMeetingTurnsForUser(ctx, uid)
	if err != nil {
		logger.Get().Error("Account deletion: meeting turns", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}

	if err := mongodb.DeleteSettingsForUser(ctx, uid); err != nil {
		logger.Get().Error("Account deletion: settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}

	go func(ids []string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		for _, id := range ids {
			if err := voice.Delete(ctx, id); err != nil {
				logger.Get().Warn("Account deletion: vendor voice cleanup failed",
					zap.String("voice_id", id), zap.Error(err))
			}
		}
	}(vendorVoiceIDs)

	logger.Get().Info("Account deleted",
		zap.String("user_id", uid),
		zap.Int64("profiles", profiles),
		zap.Int64("meeting_turns", turns),
		zap.Int("voice_clones", len(vendorVoiceIDs)))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
