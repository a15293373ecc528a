package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interview-copilot/api/logger"
	"interview-copilot/api/mongodb"
)

// GetSettings returns the user's settings, creating defaults on first access.
func GetSettings(c *gin.Context) {
	settings, err := mongodb.GetSettings(c.Request.Context(), userID(c), userEmail(c))
	if err != nil {
		logger.Get().Error("Failed to load settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings $set-merges preference keys from the request body. The
// minute ledger and identity fields cannot be modified through this
// endpoint.
func UpdateSettings(c *gin.Context) {
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil || len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be a JSON object"})
		return
	}

	uid := userID(c)
	// Ensure the document exists before the partial update.
	if _, err := mongodb.GetOrCreateSubscription(c.Request.Context(), uid, userEmail(c)); err != nil {
		logger.Get().Error("Failed to load settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}

	settings, err := mongodb.UpdateSettings(c.Request.Context(), uid, updates)
	if errors.Is(err, mongodb.ErrNoUpdatableFields) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No updatable fields in request"})
		return
	}
	if err != nil {
		logger.Get().Error("Failed to update settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}
