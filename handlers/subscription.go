package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interview-copilot/api/logger"
	"interview-copilot/api/models"
	"interview-copilot/api/mongodb"
)

// GetSubscription returns the caller's minute ledger, seeding the free grant
// on first read.
func GetSubscription(c *gin.Context) {
	sub, err := mongodb.GetOrCreateSubscription(c.Request.Context(), userID(c), userEmail(c))
	if err != nil {
		logger.Get().Error("Failed to load subscription", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}
	c.JSON(http.StatusOK, sub.Summary())
}

// ListPlans returns the purchasable plan catalogue. Public data, but kept
// behind auth like everything else.
func ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": models.ListPaidPlans()})
}

// AddSubscriptionMinutes credits the ledger directly: a plan grant by id or
// an ad-hoc minute top-up. Stripe Checkout is the usual purchase path; this
// endpoint covers server-issued grants and clients that settle payment
// elsewhere.
func AddSubscriptionMinutes(c *gin.Context) {
	var req struct {
		PlanID  string   `json:"planId"`
		Minutes *float64 `json:"minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "planId or minutes is required"})
		return
	}

	var minutes float64
	planID := ""
	switch {
	case req.PlanID != "":
		plan := models.PlanByID(req.PlanID)
		if plan == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan"})
			return
		}
		minutes = models.TotalMinutesForPlan(*plan)
		planID = plan.ID
	case req.Minutes != nil:
		minutes = *req.Minutes
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "planId or minutes is required"})
		return
	}

	if !models.ValidMinutes(minutes) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "minutes must be a positive number"})
		return
	}

	uid := userID(c)

	// First read seeds the ledger so the credit lands on a real document.
	if _, err := mongodb.GetOrCreateSubscription(c.Request.Context(), uid, userEmail(c)); err != nil {
		logger.Get().Error("Failed to load subscription", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	sub, err := mongodb.AddMinutes(c.Request.Context(), uid, minutes, planID)
	if err != nil {
		logger.Get().Error("Failed to add minutes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update balance"})
		return
	}

	logger.Get().Info("Minutes credited",
		zap.String("user_id", uid),
		zap.String("plan_id", planID),
		zap.Float64("minutes", minutes))
	c.JSON(http.StatusOK, sub.Summary())
}

// ConsumeMinutes debits capture time from the ledger. Used when the capture
// socket cannot report usage itself, e.g. a browser-direct vendor session.
func ConsumeMinutes(c *gin.Context) {
	var req struct {
		Minutes   *float64 `json:"minutes"`
		ElapsedMs *int64   `json:"elapsedMs"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "minutes or elapsedMs is required"})
		return
	}

	var minutes float64
	switch {
	case req.Minutes != nil:
		minutes = *req.Minutes
	case req.ElapsedMs != nil:
		minutes = models.MeterMinutes(time.Duration(*req.ElapsedMs) * time.Millisecond)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "minutes or elapsedMs is required"})
		return
	}

	if !models.ValidMinutes(minutes) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "minutes must be a positive number"})
		return
	}

	uid := userID(c)

	// First read seeds the ledger so a brand-new user can spend the free grant.
	if _, err := mongodb.GetOrCreateSubscription(c.Request.Context(), uid, userEmail(c)); err != nil {
		logger.Get().Error("Failed to load subscription", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	sub, err := mongodb.ConsumeMinutes(c.Request.Context(), uid, minutes)
	if errors.Is(err, mongodb.ErrInsufficientBalance) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient minute balance"})
		return
	}
	if err != nil {
		logger.Get().Error("Failed to consume minutes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update balance"})
		return
	}
	c.JSON(http.StatusOK, sub.Summary())
}
