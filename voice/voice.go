// Package voice wraps the voice vendor's cloning and text-to-speech
// endpoints. Vendor failures on delete and rename are tolerated so local
// records never get stuck pointing at a voice the vendor already dropped.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"interview-copilot/api/logger"
	"interview-copilot/api/models"
)

const (
	apiBase = "https://api.elevenlabs.io"

	// DefaultVoiceID is the stock voice used when a user has no clone.
	DefaultVoiceID = "JBFqnCBsd6RMkjVDRZzb"

	ttsModel = "eleven_multilingual_v2"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

func apiKey() (string, error) {
	key := os.Getenv("ELEVENLABS_API_KEY")
	if key == "" {
		return "", fmt.Errorf("ELEVENLABS_API_KEY environment variable not set")
	}
	return key, nil
}

// CloneSample is one audio sample uploaded for cloning.
type CloneSample struct {
	FileName string
	Data     []byte
}

// Clone creates a vendor voice from the given samples and returns its ID.
func Clone(ctx context.Context, name string, samples []CloneSample) (string, error) {
	key, err := apiKey()
	if err != nil {
		return "", err
	}
	if len(samples) == 0 {
		return "", fmt.Errorf("at least one audio sample is required")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("name", name); err != nil {
		return "", fmt.Errorf("failed to build clone request: %w", err)
	}
	for _, s := range samples {
		part, err := w.CreateFormFile("files", s.FileName)
		if err != nil {
			return "", fmt.Errorf("failed to build clone request: %w", err)
		}
		if _, err := part.Write(s.Data); err != nil {
			return "", fmt.Errorf("failed to build clone request: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to build clone request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBase+"/v1/voices/add", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to build clone request: %w", err)
	}
	req.Header.Set("xi-api-key", key)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("clone request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &models.VendorError{Vendor: "voice clone", Status: resp.StatusCode, Details: string(msg)}
	}

	var parsed struct {
		VoiceID string `json:"voice_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode clone response: %w", err)
	}
	if parsed.VoiceID == "" {
		return "", fmt.Errorf("clone response missing voice_id")
	}
	return parsed.VoiceID, nil
}

// Delete removes a voice at the vendor. A 404 is treated as success so a
// voice already gone at the vendor can still be cleaned up locally.
func Delete(ctx context.Context, voiceID string) error {
	key, err := apiKey()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, apiBase+"/v1/voices/"+voiceID, nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}
	req.Header.Set("xi-api-key", key)

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNotFound {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &models.VendorError{Vendor: "voice delete", Status: resp.StatusCode, Details: string(msg)}
}

// Rename updates the vendor-side display name. Best-effort: failures are
// logged, not returned, because the local record is the source of truth for
// naming.
func Rename(ctx context.Context, voiceID, name string) {
	key, err := apiKey()
	if err != nil {
		logger.Get().Warn("Skipping vendor rename", zap.Error(err))
		return
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("name", name); err != nil {
		logger.Get().Warn("Failed to build rename request", zap.Error(err))
		return
	}
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBase+"/v1/voices/"+voiceID+"/edit", &buf)
	if err != nil {
		logger.Get().Warn("Failed to build rename request", zap.Error(err))
		return
	}
	req.Header.Set("xi-api-key", key)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := httpClient.Do(req)
	if err != nil {
		logger.Get().Warn("Vendor rename failed", zap.String("voice_id", voiceID), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Get().Warn("Vendor rename rejected",
			zap.String("voice_id", voiceID),
			zap.Int("status", resp.StatusCode))
	}
}

// StreamTTS starts a streaming text-to-speech request and returns the
// response. The caller must close the body; the audio is mp3.
func StreamTTS(ctx context.Context, voiceID, text string) (*http.Response, error) {
	key, err := apiKey()
	if err != nil {
		return nil, err
	}
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}

	payload := map[string]any{
		"text":     text,
		"model_id": ttsModel,
		"voice_settings": map[string]any{
			"stability":         0.3,
			"similarity_boost":  0.85,
			"use_speaker_boost": true,
		},
	}
	body, _ := json.Marshal(payload)

	endpoint := apiBase + "/v1/text-to-speech/" + voiceID + "/stream" +
		"?output_format=mp3_44100_128&optimize_streaming_latency=4"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build tts request: %w", err)
	}
	req.Header.Set("xi-api-key", key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &models.VendorError{Vendor: "tts", Status: resp.StatusCode, Details: string(msg)}
	}
	return resp, nil
}
