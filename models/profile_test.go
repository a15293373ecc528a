package models

import (
	"bytes"
	"testing"
)

func TestNewPastedDocument(t *testing.T) {
	doc, err := NewPastedDocument("my resume text")
	if err != nil {
		t.Fatalf("NewPastedDocument: %v", err)
	}
	if doc.Mode != ModePaste {
		t.Errorf("mode = %q, want %q", doc.Mode, ModePaste)
	}
	if doc.File != nil {
		t.Error("paste variant must not carry a file payload")
	}

	if _, err := NewPastedDocument(""); err == nil {
		t.Error("empty text should be rejected")
	}
}

func TestNewUploadedDocument(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 128)
	doc, err := NewUploadedDocument("resume.pdf", "application/pdf", data)
	if err != nil {
		t.Fatalf("NewUploadedDocument: %v", err)
	}
	if doc.Mode != ModeUpload {
		t.Errorf("mode = %q, want %q", doc.Mode, ModeUpload)
	}
	if doc.Text != "" {
		t.Error("upload variant must not carry a text payload")
	}
	if doc.File == nil || doc.File.Size != 128 {
		t.Errorf("file payload = %+v, want 128-byte blob", doc.File)
	}
}

func TestNewUploadedDocumentLimits(t *testing.T) {
	if _, err := NewUploadedDocument("x.pdf", "application/pdf", nil); err == nil {
		t.Error("empty upload should be rejected")
	}

	tooBig := make([]byte, MaxUploadBytes+1)
	if _, err := NewUploadedDocument("x.pdf", "application/pdf", tooBig); err == nil {
		t.Error("oversized upload should be rejected")
	}

	atLimit := make([]byte, MaxUploadBytes)
	if _, err := NewUploadedDocument("x.pdf", "application/pdf", atLimit); err != nil {
		t.Errorf("upload at the limit should be accepted: %v", err)
	}
}

func TestNewUploadedDocumentDefaultsMimeType(t *testing.T) {
	doc, err := NewUploadedDocument("x.bin", "", []byte{1})
	if err != nil {
		t.Fatalf("NewUploadedDocument: %v", err)
	}
	if doc.File.MimeType != "application/octet-stream" {
		t.Errorf("mime = %q, want application/octet-stream", doc.File.MimeType)
	}
}

func TestDocumentSummaryNeverExposesContent(t *testing.T) {
	paste, _ := NewPastedDocument("secret text")
	s := paste.Summary()
	if s.TextLength != len("secret text") {
		t.Errorf("text length = %d, want %d", s.TextLength, len("secret text"))
	}
	if s.FileName != "" || s.FileSize != 0 {
		t.Error("paste summary should carry no file metadata")
	}

	upload, _ := NewUploadedDocument("cv.pdf", "application/pdf", []byte("raw bytes"))
	s = upload.Summary()
	if !s.HasFile {
		t.Error("upload summary should report a file")
	}
	if s.FileName != "cv.pdf" || s.FileSize != int64(len("raw bytes")) {
		t.Errorf("file metadata = %+v", s)
	}
	if s.TextLength != 0 {
		t.Error("upload summary should carry no text length")
	}
}

func TestDocumentDetailUploadOmitsBytes(t *testing.T) {
	upload, _ := NewUploadedDocument("cv.pdf", "application/pdf", []byte("raw bytes"))
	d := upload.Detail()
	if d.Text != "" {
		t.Error("upload detail must not include text")
	}
	if d.FileName != "cv.pdf" || d.MimeType != "application/pdf" {
		t.Errorf("detail metadata = %+v", d)
	}
}

func TestProfileSummarySanitizes(t *testing.T) {
	resume, _ := NewPastedDocument("resume body")
	jd, _ := NewUploadedDocument("jd.pdf", "application/pdf", []byte("jd bytes"))
	p := &CopilotProfile{
		ProfileName:    "Backend prep",
		JobRole:        "Backend Engineer",
		ProjectDetails: "projects",
		Resume:         resume,
		JobDescription: jd,
	}

	s := p.Summary()
	if s.ProfileName != "Backend prep" {
		t.Errorf("name = %q", s.ProfileName)
	}
	if s.ProjectDetailsLength != len("projects") {
		t.Errorf("project length = %d", s.ProjectDetailsLength)
	}
	if s.Resume.TextLength != len("resume body") {
		t.Errorf("resume length = %d", s.Resume.TextLength)
	}
	if !s.JobDescription.HasFile {
		t.Error("job description summary should report a file")
	}
}
