package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interview-copilot/api/logger"
	"interview-copilot/api/models"
	"interview-copilot/api/mongodb"
)

// CreateMeetingTurn records a captured question. The answer usually arrives
// later, once the streamed completion finishes, but can be supplied up front
// when the client batches a finished turn.
func CreateMeetingTurn(c *gin.Context) {
	var req struct {
		SessionID  string     `json:"sessionId"`
		ProfileID  string     `json:"profileId" binding:"required"`
		Question   string     `json:"question" binding:"required"`
		Answer     string     `json:"answer"`
		Order      *int       `json:"order"`
		AskedAt    *time.Time `json:"askedAt"`
		AnsweredAt *time.Time `json:"answeredAt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profileId and question are required"})
		return
	}

	uid := userID(c)
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("%s-%d", uid, time.Now().UnixMilli())
	}

	turn := &models.MeetingTurn{
		UserID:     uid,
		SessionID:  sessionID,
		ProfileID:  req.ProfileID,
		Question:   strings.TrimSpace(req.Question),
		Answer:     req.Answer,
		Order:      req.Order,
		AnsweredAt: req.AnsweredAt,
	}
	if req.AskedAt != nil {
		turn.AskedAt = *req.AskedAt
	}

	id, err := mongodb.InsertMeetingTurn(c.Request.Context(), turn)
	if err != nil {
		logger.Get().Error("Failed to create meeting turn", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save question"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "turn": turn})
}

// GetMeetingTurn returns one turn by id.
func GetMeetingTurn(c *gin.Context) {
	turn, err := mongodb.GetMeetingTurn(c.Request.Context(), userID(c), c.Param("id"))
	if errors.Is(err, mongodb.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Turn not found"})
		return
	}
	if err != nil {
		logger.Get().Error("Failed to get meeting turn", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load turn"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"turn": turn})
}

// UpdateMeetingTurnAnswer stores the completed answer for a turn.
func UpdateMeetingTurnAnswer(c *gin.Context) {
	var req struct {
		Answer string `json:"answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "answer is required"})
		return
	}

	err := mongodb.SetTurnAnswer(c.Request.Context(), userID(c), c.Param("id"), req.Answer)
	if errors.Is(err, mongodb.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Turn not found"})
		return
	}
	if err != nil {
		logger.Get().Error("Failed to update meeting turn", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save answer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListMeetingTurns returns recent turns, oldest first, optionally filtered
// by session or profile.
func ListMeetingTurns(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	turns, err := mongodb.ListMeetingTurns(c.Request.Context(), userID(c), mongodb.TurnFilter{
		SessionID: c.Query("sessionId"),
		ProfileID: c.Query("profileId"),
		Limit:     limit,
	})
	if err != nil {
		logger.Get().Error("Failed to list meeting turns", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"turns": turns})
}
