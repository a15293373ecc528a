package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interview-copilot/api/logger"
	"interview-copilot/api/models"
	"interview-copilot/api/mongodb"
	"interview-copilot/api/voice"
)

const maxVoiceSampleBytes = 10 * 1024 * 1024

// CreateVoiceProfile clones a voice at the vendor from uploaded audio
// samples and stores the resulting voice locally.
func CreateVoiceProfile(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxVoiceSampleBytes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = "My Voice"
	}

	form := c.Request.MultipartForm
	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one audio sample is required"})
		return
	}

	samples := make([]voice.CloneSample, 0, len(files))
	for _, fh := range files {
		if fh.Size > maxVoiceSampleBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Audio sample too large"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read audio sample"})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read audio sample"})
			return
		}
		samples = append(samples, voice.CloneSample{FileName: fh.Filename, Data: data})
	}

	voiceID, err := voice.Clone(c.Request.Context(), name, samples)
	if err != nil {
		logger.Get().Error("Voice clone failed", zap.Error(err))
		vendorUnavailable(c, "Voice service unavailable", err)
		return
	}

	profile := &models.VoiceProfile{
		UserID:        userID(c),
		UserName:      userName(c),
		VendorVoiceID: voiceID,
		Name:          name,
	}
	id, err := mongodb.InsertVoiceProfile(c.Request.Context(), profile)
	if err != nil {
		logger.Get().Error("Failed to save voice profile", zap.Error(err))
		// Roll back the vendor clone so it doesn't leak.
		if derr := voice.Delete(c.Request.Context(), voiceID); derr != nil {
			logger.Get().Error("Failed to roll back vendor voice", zap.Error(derr))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save voice profile"})
		return
	}

	logger.Get().Info("Voice profile created",
		zap.String("user_id", profile.UserID),
		zap.String("voice_profile_id", id))
	c.JSON(http.StatusCreated, profile)
}

// ListVoiceProfiles returns the user's voice clones.
func ListVoiceProfiles(c *gin.Context) {
	profiles, err := mongodb.ListVoiceProfiles(c.Request.Context(), userID(c))
	if err != nil {
		logger.Get().Error("Failed to list voice profiles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list voice profiles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"voices": profiles})
}

// RenameVoiceProfile updates the local name and mirrors it to the vendor
// best-effort.
func RenameVoiceProfile(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	name := strings.TrimSpace(req.Name)

	uid := userID(c)
	profile, err := mongodb.GetVoiceProfile(c.Request.Context(), uid, c.Param("id"))
	if errors.Is(err, mongodb.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voice profile not found"})
		return
	}
	if err != nil {
		logger.Get().Error("Failed to get voice profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rename voice profile"})
		return
	}

	if err := mongodb.RenameVoiceProfile(c.Request.Context(), uid, c.Param("id"), name); err != nil {
		logger.Get().Error("Failed to rename voice profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rename voice profile"})
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		voice.Rename(ctx, profile.VendorVoiceID, name)
	}()

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DeleteVoiceProfile removes the clone at the vendor and locally. A voice
// already gone at the vendor still gets cleaned up locally.
func DeleteVoiceProfile(c *gin.Context) {
	uid := userID(c)
	profile, err := mongodb.GetVoiceProfile(c.Request.Context(), uid, c.Param("id"))
	if errors.Is(err, mongodb.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voice profile not found"})
		return
	}
	if err != nil {
		logger.Get().Error("Failed to get voice profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete voice profile"})
		return
	}

	if err := voice.Delete(c.Request.Context(), profile.VendorVoiceID); err != nil {
		logger.Get().Error("Vendor voice delete failed", zap.Error(err))
		vendorUnavailable(c, "Voice service unavailable", err)
		return
	}

	if err := mongodb.DeleteVoiceProfile(c.Request.Context(), uid, c.Param("id")); err != nil {
		logger.Get().Error("Failed to delete voice profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete voice profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SpeakText streams text-to-speech audio. Voice resolution order: the named
// voice profile, then the user's newest clone, then the stock voice.
func SpeakText(c *gin.Context) {
	var req struct {
		Text           string `json:"text" binding:"required"`
		VoiceProfileID string `json:"voiceProfileId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	streamSpeech(c, req.VoiceProfileID, req.Text)
}

// StreamVoiceText is the GET form of SpeakText, for <audio src=...> elements
// that cannot send a JSON body.
func StreamVoiceText(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	streamSpeech(c, c.Query("voiceId"), text)
}

func streamSpeech(c *gin.Context, voiceProfileID, text string) {
	uid := userID(c)

	vendorVoiceID := ""
	if voiceProfileID != "" {
		profile, err := mongodb.GetVoiceProfile(c.Request.Context(), uid, voiceProfileID)
		if errors.Is(err, mongodb.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Voice profile not found"})
			return
		}
		if err != nil {
			logger.Get().Error("Failed to get voice profile", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load voice profile"})
			return
		}
		vendorVoiceID = profile.VendorVoiceID
	} else {
		profiles, err := mongodb.ListVoiceProfiles(c.Request.Context(), uid)
		if err != nil {
			logger.Get().Warn("Falling back to stock voice", zap.Error(err))
		} else if len(profiles) > 0 {
			vendorVoiceID = profiles[0].VendorVoiceID
		}
	}

	resp, err := voice.StreamTTS(c.Request.Context(), vendorVoiceID, text)
	if err != nil {
		logger.Get().Error("TTS request failed", zap.Error(err))
		vendorUnavailable(c, "Voice service unavailable", err)
		return
	}
	defer resp.Body.Close()

	c.Header("Content-Type", "audio/mpeg")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		logger.Get().Debug("TTS stream interrupted", zap.Error(err))
	}
}
