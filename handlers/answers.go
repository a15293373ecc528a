package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interview-copilot/api/llm"
	"interview-copilot/api/logger"
	"interview-copilot/api/models"
	"interview-copilot/api/mongodb"
)

// inflightAnswers tracks the cancel function of each user's running
// completion. A new question supersedes the old one: interviews move fast
// and a stale answer is worthless.
var (
	inflightMu      sync.Mutex
	inflightAnswers = make(map[string]context.CancelFunc)
)

func supersede(uid string, cancel context.CancelFunc) {
	inflightMu.Lock()
	if prev, ok := inflightAnswers[uid]; ok {
		prev()
	}
	inflightAnswers[uid] = cancel
	inflightMu.Unlock()
}

// StreamAnswer relays a chat completion to the client as server-sent events.
// The vendor's SSE bytes pass through verbatim; the handler adds nothing and
// strips nothing.
func StreamAnswer(c *gin.Context) {
	var req struct {
		Question  string            `json:"question" binding:"required"`
		ProfileID string            `json:"profileId"`
		System    string            `json:"system"`
		Model     string            `json:"model"`
		History   []llm.TurnMessage `json:"history"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}
	for _, msg := range req.History {
		if msg.Role != "user" && msg.Role != "assistant" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "history roles must be user or assistant"})
			return
		}
	}

	uid := userID(c)

	var profile *models.ProfileDetail
	if req.ProfileID != "" {
		stored, err := mongodb.GetProfile(c.Request.Context(), uid, req.ProfileID)
		if errors.Is(err, mongodb.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		if err != nil {
			logger.Get().Error("Failed to load profile for answer", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
			return
		}
		detail := stored.Detail()
		profile = &detail
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	supersede(uid, cancel)

	system := req.System
	if system == "" {
		system = llm.BuildSystemPrompt(profile)
	}

	resp, err := llm.StreamCompletion(ctx, llm.CompletionRequest{
		System:   system,
		History:  req.History,
		Question: req.Question,
		Model:    req.Model,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			// Superseded by a newer question; nothing to stream.
			return
		}
		logger.Get().Error("Completion request failed", zap.Error(err))
		vendorUnavailable(c, "Answer service unavailable", err)
		return
	}
	defer resp.Body.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		logger.Get().Error("Response writer does not support flushing")
		return
	}

	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := c.Writer.Write(buf[:n]); writeErr != nil {
				return
			}
			flusher.Flush()
		}
		if readErr != nil {
			if !errors.Is(readErr, io.EOF) && !errors.Is(readErr, context.Canceled) {
				logger.Get().Debug("Completion stream ended", zap.Error(readErr))
			}
			return
		}
	}
}
