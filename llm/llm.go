// Package llm builds interview-coaching prompts and streams chat completions
// from the model vendor. The response body is relayed to the client verbatim
// as server-sent events, so this package never parses completion chunks.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"interview-copilot/api/models"
)

const (
	apiBase      = "https://api.x.ai"
	defaultModel = "grok-3-mini"

	// MaxHistoryTurns bounds how many prior question/answer pairs ride along
	// with each completion request.
	MaxHistoryTurns = 4

	// maxSectionChars truncates each profile section in the system prompt so
	// a pasted novel cannot blow up the context window.
	maxSectionChars = 1500
)

// Streaming completions can legitimately run for minutes.
var httpClient = &http.Client{Timeout: 5 * time.Minute}

func apiKey() (string, error) {
	key := os.Getenv("XAI_API_KEY")
	if key == "" {
		return "", fmt.Errorf("XAI_API_KEY environment variable not set")
	}
	return key, nil
}

func modelName() string {
	if m := os.Getenv("XAI_MODEL"); m != "" {
		return m
	}
	return defaultModel
}

// TurnMessage is one chat message in vendor wire format.
type TurnMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TrimHistory keeps only the most recent MaxHistoryTurns question/answer
// pairs, preserving order. Odd leading messages beyond the cap are dropped
// with their pair.
func TrimHistory(history []TurnMessage) []TurnMessage {
	max := MaxHistoryTurns * 2
	if len(history) <= max {
		return history
	}
	return history[len(history)-max:]
}

func truncateSection(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxSectionChars {
		return s
	}
	return s[:maxSectionChars] + "..."
}

// BuildSystemPrompt assembles the coaching system prompt from a copilot
// profile. Upload-mode documents contribute no text, only the role context.
func BuildSystemPrompt(profile *models.ProfileDetail) string {
	var b strings.Builder
	b.WriteString("You are an interview copilot. The candidate is in a live interview. ")
	b.WriteString("Answer the interviewer's question in first person as the candidate: ")
	b.WriteString("concise, confident, and specific. Do not mention being an AI.")

	if profile == nil {
		return b.String()
	}

	if profile.JobRole != "" {
		b.WriteString("\n\nTarget role: ")
		b.WriteString(truncateSection(profile.JobRole))
	}
	if profile.Resume.Mode == models.ModePaste && profile.Resume.Text != "" {
		b.WriteString("\n\nCandidate resume:\n")
		b.WriteString(truncateSection(profile.Resume.Text))
	}
	if profile.JobDescription.Mode == models.ModePaste && profile.JobDescription.Text != "" {
		b.WriteString("\n\nJob description:\n")
		b.WriteString(truncateSection(profile.JobDescription.Text))
	}
	if profile.ProjectDetails != "" {
		b.WriteString("\n\nKey projects:\n")
		b.WriteString(truncateSection(profile.ProjectDetails))
	}
	return b.String()
}

// CompletionRequest is the resolved input for one streamed completion.
type CompletionRequest struct {
	System   string
	History  []TurnMessage
	Question string
	// Model overrides the configured default when set.
	Model string
}

// StreamCompletion opens a streaming chat completion. The returned response
// body carries the vendor's SSE stream; the caller must close it.
func StreamCompletion(ctx context.Context, req CompletionRequest) (*http.Response, error) {
	key, err := apiKey()
	if err != nil {
		return nil, err
	}

	messages := make([]TurnMessage, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, TurnMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, TrimHistory(req.History)...)
	messages = append(messages, TurnMessage{Role: "user", Content: req.Question})

	model := req.Model
	if model == "" {
		model = modelName()
	}
	payload := map[string]any{
		"model":    model,
		"messages": messages,
		"stream":   true,
	}
	body, _ := json.Marshal(payload)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBase+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+key)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &models.VendorError{Vendor: "completion", Status: resp.StatusCode, Details: string(msg)}
	}
	return resp, nil
}
