package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"interview-copilot/api/logger"
	"interview-copilot/api/models"
	"interview-copilot/api/mongodb"
)

const maxWebhookBodyBytes = 65536

// CreateCheckoutSession starts a Stripe Checkout flow for a minute plan.
// The plan and buyer ride along as metadata so the webhook can credit the
// right ledger.
func CreateCheckoutSession(c *gin.Context) {
	var req struct {
		PlanID string `json:"planId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "planId is required"})
		return
	}

	plan := models.PlanByID(req.PlanID)
	if plan == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan"})
		return
	}

	frontend := os.Getenv("FRONTEND_URL")
	if frontend == "" {
		frontend = "http://localhost:3000"
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("usd"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(plan.Name + " plan"),
						Description: stripe.String(plan.Description),
					},
					UnitAmount: stripe.Int64(int64(math.Round(plan.Price * 100))),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:    stripe.String(frontend + "/billing?status=success"),
		CancelURL:     stripe.String(frontend + "/billing?status=cancelled"),
		CustomerEmail: stripe.String(userEmail(c)),
	}
	params.AddMetadata("user_id", userID(c))
	params.AddMetadata("plan_id", plan.ID)

	s, err := session.New(params)
	if err != nil {
		logger.Get().Error("Failed to create checkout session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start checkout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": s.URL, "sessionId": s.ID})
}

// StripeWebhook credits purchased minutes when a checkout completes. The
// signature check makes the endpoint safe to expose unauthenticated.
func StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), os.Getenv("STRIPE_WEBHOOK_SECRET"))
	if err != nil {
		logger.Get().Warn("Webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	if event.Type != "checkout.session.completed" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	var checkout stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &checkout); err != nil {
		logger.Get().Error("Failed to parse checkout session", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed event"})
		return
	}

	if err := creditPurchase(c, &checkout); err != nil {
		logger.Get().Error("Failed to credit purchase",
			zap.String("checkout_session", checkout.ID),
			zap.Error(err))
		// Non-2xx makes Stripe retry the delivery.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to credit purchase"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func creditPurchase(c *gin.Context, checkout *stripe.CheckoutSession) error {
	uid := checkout.Metadata["user_id"]
	planID := checkout.Metadata["plan_id"]
	if uid == "" || planID == "" {
		return fmt.Errorf("checkout session missing user_id or plan_id metadata")
	}

	plan := models.PlanByID(planID)
	if plan == nil {
		return fmt.Errorf("unknown plan %q", planID)
	}

	ctx := c.Request.Context()
	email := ""
	if checkout.CustomerDetails != nil {
		email = checkout.CustomerDetails.Email
	}
	if _, err := mongodb.GetOrCreateSubscription(ctx, uid, email); err != nil {
		return err
	}

	minutes := models.TotalMinutesForPlan(*plan)
	sub, err := mongodb.AddMinutes(ctx, uid, minutes, plan.ID)
	if err != nil {
		return err
	}

	logger.Get().Info("Purchase credited",
		zap.String("user_id", uid),
		zap.String("plan_id", plan.ID),
		zap.Float64("minutes", minutes),
		zap.Float64("balance", sub.BalanceMinutes))
	return nil
}
