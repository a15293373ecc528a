package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-copilot/api/middleware"
	"interview-copilot/api/models"
)

func userID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}

func userEmail(c *gin.Context) string {
	return c.GetString(middleware.ContextEmail)
}

func userName(c *gin.Context) string {
	return c.GetString(middleware.ContextName)
}

// vendorUnavailable writes a 502 for a failed upstream call. When the error
// carries the vendor's response, its status and details ride along so the
// client can distinguish a quota rejection from an outage.
func vendorUnavailable(c *gin.Context, message string, err error) {
	var verr *models.VendorError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   message,
			"status":  verr.Status,
			"details": verr.Details,
		})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": message})
}
