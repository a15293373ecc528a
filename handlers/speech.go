package handlers

import (
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interview-copilot/api/logger"
	"interview-copilot/api/speech"
)

// GrantSpeechToken mints a short-lived vendor token so the browser can open
// its own transcription socket without ever seeing the server's API key.
func GrantSpeechToken(c *gin.Context) {
	token, err := speech.GrantToken(c.Request.Context())
	if err != nil {
		logger.Get().Error("Speech token grant failed", zap.Error(err))
		vendorUnavailable(c, "Speech service unavailable", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     token.AccessToken,
		"expiresIn": token.ExpiresIn,
	})
}

// ProxyRemoteAudio streams a remote audio file through the server so the
// browser can play or transcribe sources whose hosts do not send CORS
// headers. Only http and https URLs are accepted.
func ProxyRemoteAudio(c *gin.Context) {
	raw := c.Query("url")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url must be an absolute http(s) URL"})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, parsed.String(), nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid url"})
		return
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Get().Warn("Remote audio fetch failed", zap.String("url", parsed.Host), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch remote audio"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Remote host returned an error"})
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		c.Header("Content-Length", cl)
	}
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		logger.Get().Debug("Remote audio stream interrupted", zap.Error(err))
	}
}
