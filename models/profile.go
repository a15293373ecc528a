package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MaxUploadBytes caps resume / job-description uploads before persistence.
const MaxUploadBytes = 5 * 1024 * 1024

// DocumentMode selects which payload of a DocumentVariant is authoritative.
type DocumentMode string

const (
	ModePaste  DocumentMode = "paste"
	ModeUpload DocumentMode = "upload"
)

// FileBlob is an uploaded file stored inline with its metadata.
type FileBlob struct {
	OriginalName string `bson:"original_name" json:"originalName"`
	MimeType     string `bson:"mime_type" json:"mimeType"`
	Size         int64  `bson:"size" json:"size"`
	Data         []byte `bson:"data" json:"-"`
}

// DocumentVariant is a tagged union: exactly one of Text or File carries the
// document, selected by Mode. Construct through NewPastedDocument or
// NewUploadedDocument so the tag and payload cannot drift apart.
type DocumentVariant struct {
	Mode DocumentMode `bson:"mode" json:"mode"`
	Text string       `bson:"text,omitempty" json:"text,omitempty"`
	File *FileBlob    `bson:"file,omitempty" json:"file,omitempty"`
}

func NewPastedDocument(text string) (DocumentVariant, error) {
	if text == "" {
		return DocumentVariant{}, fmt.Errorf("pasted text is required")
	}
	return DocumentVariant{Mode: ModePaste, Text: text}, nil
}

func NewUploadedDocument(name, mimeType string, data []byte) (DocumentVariant, error) {
	if len(data) == 0 {
		return DocumentVariant{}, fmt.Errorf("uploaded file is required")
	}
	if len(data) > MaxUploadBytes {
		return DocumentVariant{}, fmt.Errorf("file limit exceeded (%dMB max)", MaxUploadBytes/(1024*1024))
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return DocumentVariant{
		Mode: ModeUpload,
		File: &FileBlob{
			OriginalName: name,
			MimeType:     mimeType,
			Size:         int64(len(data)),
			Data:         data,
		},
	}, nil
}

// CopilotProfile is a saved bundle of resume / job-description / project
// context used to seed interview-coaching prompts. Content is immutable
// after creation; only the profile name can be changed.
type CopilotProfile struct {
	ID             bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID         string          `bson:"user_id" json:"userId"`
	ProfileName    string          `bson:"profile_name" json:"profileName"`
	JobRole        string          `bson:"job_role" json:"jobRole"`
	Resume         DocumentVariant `bson:"resume" json:"resume"`
	JobDescription DocumentVariant `bson:"job_description" json:"jobDescription"`
	ProjectDetails string          `bson:"project_details" json:"projectDetails"`
	CreatedAt      time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `bson:"updated_at" json:"updatedAt"`
}

// DocumentSummary is the listing view of a variant: metadata only, never
// file bytes and never the inactive payload.
type DocumentSummary struct {
	Mode       DocumentMode `json:"mode"`
	HasFile    bool         `json:"hasFile"`
	FileName   string       `json:"fileName,omitempty"`
	FileSize   int64        `json:"fileSize,omitempty"`
	TextLength int          `json:"textLength"`
}

// DocumentDetail exposes pasted text verbatim; uploads expose metadata only.
type DocumentDetail struct {
	Mode     DocumentMode `json:"mode"`
	Text     string       `json:"text"`
	FileName string       `json:"fileName,omitempty"`
	FileSize int64        `json:"fileSize,omitempty"`
	MimeType string       `json:"mimeType,omitempty"`
}

func (v DocumentVariant) Summary() DocumentSummary {
	s := DocumentSummary{Mode: v.Mode}
	if v.Mode == ModePaste {
		s.TextLength = len(v.Text)
		return s
	}
	if v.File != nil {
		s.HasFile = len(v.File.Data) > 0
		s.FileName = v.File.OriginalName
		s.FileSize = v.File.Size
	}
	return s
}

func (v DocumentVariant) Detail() DocumentDetail {
	d := DocumentDetail{Mode: v.Mode}
	if v.Mode == ModePaste {
		d.Text = v.Text
		return d
	}
	if v.File != nil {
		d.FileName = v.File.OriginalName
		d.FileSize = v.File.Size
		d.MimeType = v.File.MimeType
	}
	return d
}

// ProfileSummary is the listing shape for a profile.
type ProfileSummary struct {
	ID                   string          `json:"id"`
	ProfileName          string          `json:"profileName"`
	JobRole              string          `json:"jobRole"`
	ProjectDetailsLength int             `json:"projectDetailsLength"`
	Resume               DocumentSummary `json:"resume"`
	JobDescription       DocumentSummary `json:"jobDescription"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// ProfileDetail is the single-profile shape used by the copilot prompt.
type ProfileDetail struct {
	ID             string         `json:"id"`
	ProfileName    string         `json:"profileName"`
	JobRole        string         `json:"jobRole"`
	ProjectDetails string         `json:"projectDetails"`
	Resume         DocumentDetail `json:"resume"`
	JobDescription DocumentDetail `json:"jobDescription"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func (p *CopilotProfile) Summary() ProfileSummary {
	return ProfileSummary{
		ID:                   p.ID.Hex(),
		ProfileName:          p.ProfileName,
		JobRole:              p.JobRole,
		ProjectDetailsLength: len(p.ProjectDetails),
		Resume:               p.Resume.Summary(),
		JobDescription:       p.JobDescription.Summary(),
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func (p *CopilotProfile) Detail() ProfileDetail {
	return ProfileDetail{
		ID:             p.ID.Hex(),
		ProfileName:    p.ProfileName,
		JobRole:        p.JobRole,
		ProjectDetails: p.ProjectDetails,
		Resume:         p.Resume.Detail(),
		JobDescription: p.JobDescription.Detail(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
