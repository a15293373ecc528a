package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"interview-copilot/api/logger"
	"interview-copilot/api/models"
	"interview-copilot/api/mongodb"
	"interview-copilot/api/relay"
	"interview-copilot/api/sse"
	"interview-copilot/api/worker"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	// Auth middleware already validated the token; browsers cannot spoof
	// Origin, and allowed origins are enforced by CORS on the HTTP surface.
	CheckOrigin: func(r *http.Request) bool { return true },
}

var captionPool *worker.Pool

// balanceCheckInterval paces the mid-capture ledger checks that stop a
// session once its projected cost exceeds the remaining balance.
const balanceCheckInterval = 15 * time.Second

// InitCaptions wires the background pool used for post-capture billing.
func InitCaptions(pool *worker.Pool) {
	captionPool = pool
}

// CaptionsWebSocket upgrades the connection and relays the capture session.
// Captures are refused up front on an empty balance and force-stopped when
// it runs out mid-session. When the session ends, elapsed time is metered
// and billed in the background so socket teardown never blocks on the
// database.
func CaptionsWebSocket(c *gin.Context) {
	uid := userID(c)
	email := userEmail(c)

	sub, err := mongodb.GetOrCreateSubscription(c.Request.Context(), uid, email)
	if err != nil {
		logger.Get().Error("Failed to load subscription", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}
	if sub.BalanceMinutes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient minute balance"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Get().Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	session := relay.New(conn, uid)

	watchDone := make(chan struct{})
	go watchBalance(c.Request.Context(), session, uid, email, watchDone)

	result, err := session.Run(c.Request.Context())
	close(watchDone)
	if err != nil {
		logger.Get().Warn("Capture session failed",
			zap.String("user_id", uid),
			zap.String("session_id", result.SessionID),
			zap.Error(err))
	}

	if result.Elapsed <= 0 {
		return
	}

	minutes := models.MeterMinutes(result.Elapsed)
	billed := captionPool.Submit(uid, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if _, err := mongodb.GetOrCreateSubscription(ctx, uid, email); err != nil {
			logger.Get().Error("Billing: failed to load subscription",
				zap.String("user_id", uid), zap.Error(err))
			return
		}
		_, err := mongodb.ConsumeMinutes(ctx, uid, minutes)
		if errors.Is(err, mongodb.ErrInsufficientBalance) {
			logger.Get().Warn("Billing: balance exhausted mid-capture",
				zap.String("user_id", uid),
				zap.Float64("minutes", minutes))
			return
		}
		if err != nil {
			logger.Get().Error("Billing: failed to consume minutes",
				zap.String("user_id", uid), zap.Error(err))
		}
	})
	if !billed {
		logger.Get().Error("Billing job rejected by worker pool",
			zap.String("user_id", uid),
			zap.Float64("minutes", minutes))
	}
}

// watchBalance periodically projects the session's cost against the ledger
// and force-stops the capture once the balance can no longer cover it. The
// stop goes through the normal close handshake, so elapsed time is still
// metered and billed.
func watchBalance(ctx context.Context, session *relay.Session, uid, email string, done <-chan struct{}) {
	started := time.Now()
	ticker := time.NewTicker(balanceCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			sub, err := mongodb.GetOrCreateSubscription(ctx, uid, email)
			if err != nil {
				logger.Get().Warn("Balance check failed mid-capture",
					zap.String("user_id", uid), zap.Error(err))
				continue
			}
			if sub.BalanceMinutes-models.MeterMinutes(time.Since(started)) <= 0 {
				logger.Get().Warn("Stopping capture, minute balance exhausted",
					zap.String("user_id", uid),
					zap.Float64("balance", sub.BalanceMinutes))
				session.Stop()
				return
			}
		}
	}
}

// CaptionsStream feeds caption snapshots for one session to an SSE observer.
// Multiple observers per session are fine; each gets cumulative snapshots.
func CaptionsStream(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionID is required"})
		return
	}

	observer := sse.Subscribe(sessionID)
	defer sse.Unsubscribe(observer)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	// Heartbeat keeps proxies from timing out a quiet stream.
	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case snap, ok := <-observer.Events():
			if !ok {
				return false
			}
			c.SSEvent("transcript", snap)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
