package llm

import (
	"fmt"
	"strings"
	"testing"

	"interview-copilot/api/models"
)

func TestTrimHistoryKeepsRecentTurns(t *testing.T) {
	var history []TurnMessage
	for i := 0; i < 6; i++ {
		history = append(history,
			TurnMessage{Role: "user", Content: fmt.Sprintf("q%d", i)},
			TurnMessage{Role: "assistant", Content: fmt.Sprintf("a%d", i)},
		)
	}

	got := TrimHistory(history)
	if len(got) != MaxHistoryTurns*2 {
		t.Fatalf("trimmed length = %d, want %d", len(got), MaxHistoryTurns*2)
	}
	if got[0].Content != "q2" {
		t.Errorf("first kept message = %q, want %q", got[0].Content, "q2")
	}
	if got[len(got)-1].Content != "a5" {
		t.Errorf("last kept message = %q, want %q", got[len(got)-1].Content, "a5")
	}
}

func TestTrimHistoryShortInputUnchanged(t *testing.T) {
	history := []TurnMessage{
		{Role: "user", Content: "q0"},
		{Role: "assistant", Content: "a0"},
	}
	got := TrimHistory(history)
	if len(got) != 2 {
		t.Fatalf("trimmed length = %d, want 2", len(got))
	}
}

func TestBuildSystemPromptIncludesPastedSections(t *testing.T) {
	profile := &models.ProfileDetail{
		JobRole:        "Backend Engineer",
		ProjectDetails: "Built a payments reconciliation service.",
		Resume: models.DocumentDetail{
			Mode: models.ModePaste,
			Text: "Five years of Go and distributed systems.",
		},
		JobDescription: models.DocumentDetail{
			Mode: models.ModePaste,
			Text: "Looking for a senior backend engineer.",
		},
	}

	prompt := BuildSystemPrompt(profile)
	for _, want := range []string{
		"Backend Engineer",
		"Five years of Go",
		"senior backend engineer",
		"payments reconciliation",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildSystemPromptSkipsUploadedDocuments(t *testing.T) {
	profile := &models.ProfileDetail{
		JobRole: "Data Engineer",
		Resume: models.DocumentDetail{
			Mode:     models.ModeUpload,
			FileName: "resume.pdf",
		},
	}

	prompt := BuildSystemPrompt(profile)
	if strings.Contains(prompt, "resume.pdf") {
		t.Error("prompt should not reference uploaded file names")
	}
	if strings.Contains(prompt, "Candidate resume") {
		t.Error("prompt should not include a resume section for uploads")
	}
}

func TestBuildSystemPromptTruncatesLongSections(t *testing.T) {
	profile := &models.ProfileDetail{
		Resume: models.DocumentDetail{
			Mode: models.ModePaste,
			Text: strings.Repeat("x", 5000),
		},
	}

	prompt := BuildSystemPrompt(profile)
	if strings.Contains(prompt, strings.Repeat("x", 1501)) {
		t.Error("resume section was not truncated")
	}
	if !strings.Contains(prompt, strings.Repeat("x", 1500)+"...") {
		t.Error("truncated section missing ellipsis")
	}
}

func TestBuildSystemPromptNilProfile(t *testing.T) {
	prompt := BuildSystemPrompt(nil)
	if prompt == "" {
		t.Error("prompt should not be empty without a profile")
	}
	if !strings.Contains(prompt, "interview copilot") {
		t.Errorf("base prompt missing role framing: %q", prompt)
	}
}
