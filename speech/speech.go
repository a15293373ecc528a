// Package speech wraps the speech vendor's REST and live-transcription
// surfaces: short-lived browser tokens, live WebSocket URLs, and prerecorded
// transcription.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"interview-copilot/api/models"
)

const (
	apiBase  = "https://api.deepgram.com"
	liveBase = "wss://api.deepgram.com/v1/listen"

	// TokenTTLSeconds bounds how long an ephemeral browser token stays valid.
	TokenTTLSeconds = 300

	defaultModel = "nova-3"
)

var httpClient = &http.Client{Timeout: 15 * time.Second}

func apiKey() (string, error) {
	key := os.Getenv("DEEPGRAM_API_KEY")
	if key == "" {
		return "", fmt.Errorf("DEEPGRAM_API_KEY environment variable not set")
	}
	return key, nil
}

// Token is an ephemeral credential a browser can use to open its own live
// transcription socket.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// GrantToken mints an ephemeral token scoped by the vendor to the project of
// the server's API key. The server key itself never reaches the browser.
func GrantToken(ctx context.Context) (*Token, error) {
	key, err := apiKey()
	if err != nil {
		return nil, err
	}

	body, _ := json.Marshal(map[string]int{"ttl_seconds": TokenTTLSeconds})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBase+"/v1/auth/grant", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token grant request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &models.VendorError{Vendor: "token grant", Status: resp.StatusCode, Details: string(msg)}
	}

	var token Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.ExpiresIn == 0 {
		token.ExpiresIn = TokenTTLSeconds
	}
	return &token, nil
}

// LiveOptions selects the audio format for a live transcription socket.
type LiveOptions struct {
	// Encoding is set for raw PCM ("linear16"); containerized codecs such as
	// opus are detected by the vendor and leave it empty.
	Encoding   string
	SampleRate int
	Channels   int
	Language   string
	Model      string
}

// LiveURL builds the vendor WebSocket URL for a live capture.
func LiveURL(opts LiveOptions) string {
	model := opts.Model
	if model == "" {
		model = defaultModel
	}

	q := url.Values{}
	q.Set("model", model)
	q.Set("smart_format", "true")
	q.Set("interim_results", "true")
	q.Set("vad_events", "true")
	q.Set("utterance_end_ms", "1000")
	q.Set("endpointing", "300")
	if opts.Language != "" {
		q.Set("language", opts.Language)
	}
	if opts.Encoding != "" {
		q.Set("encoding", opts.Encoding)
		if opts.SampleRate > 0 {
			q.Set("sample_rate", strconv.Itoa(opts.SampleRate))
		}
		if opts.Channels > 0 {
			q.Set("channels", strconv.Itoa(opts.Channels))
		}
	}
	return liveBase + "?" + q.Encode()
}

// AuthHeader returns the header map for dialing the live socket server-side.
func AuthHeader() (http.Header, error) {
	key, err := apiKey()
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("Authorization", "Token "+key)
	return h, nil
}

