package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interview-copilot/api/logger"
	"interview-copilot/api/models"
	"interview-copilot/api/mongodb"
)

// CreateProfile accepts multipart form data. Each document comes either as
// pasted text (resume_text / job_description_text) or an uploaded file
// (resume_file / job_description_file); sending both for one document is an
// error.
func CreateProfile(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(2 * models.MaxUploadBytes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	profileName := strings.TrimSpace(c.PostForm("profile_name"))
	if profileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile_name is required"})
		return
	}

	resume, err := documentFromForm(c, "resume_text", "resume_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("resume: %s", err)})
		return
	}
	jobDescription, err := documentFromForm(c, "job_description_text", "job_description_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("job description: %s", err)})
		return
	}

	profile := &models.CopilotProfile{
		UserID:         userID(c),
		ProfileName:    profileName,
		JobRole:        strings.TrimSpace(c.PostForm("job_role")),
		Resume:         resume,
		JobDescription: jobDescription,
		ProjectDetails: strings.TrimSpace(c.PostForm("project_details")),
	}

	id, err := mongodb.InsertProfile(c.Request.Context(), profile)
	if err != nil {
		logger.Get().Error("Failed to create profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
		return
	}

	logger.Get().Info("Profile created",
		zap.String("user_id", profile.UserID),
		zap.String("profile_id", id))
	c.JSON(http.StatusCreated, profile.Summary())
}

// documentFromForm builds a tagged document from the text field or the file
// field, rejecting requests that set both or neither.
func documentFromForm(c *gin.Context, textField, fileField string) (models.DocumentVariant, error) {
	text := strings.TrimSpace(c.PostForm(textField))
	fileHeader, fileErr := c.FormFile(fileField)
	hasFile := fileErr == nil && fileHeader != nil

	switch {
	case text != "" && hasFile:
		return models.DocumentVariant{}, fmt.Errorf("provide either text or a file, not both")
	case text != "":
		return models.NewPastedDocument(text)
	case hasFile:
		data, err := readUpload(fileHeader)
		if err != nil {
			return models.DocumentVariant{}, err
		}
		return models.NewUploadedDocument(fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	default:
		return models.DocumentVariant{}, fmt.Errorf("text or file is required")
	}
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > models.MaxUploadBytes {
		return nil, fmt.Errorf("file limit exceeded (%dMB max)", models.MaxUploadBytes/(1024*1024))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to read file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, models.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file")
	}
	if len(data) > models.MaxUploadBytes {
		return nil, fmt.Errorf("file limit exceeded (%dMB max)", models.MaxUploadBytes/(1024*1024))
	}
	return data, nil
}

// ListProfiles returns sanitized summaries: lengths and file metadata, never
// document contents.
func ListProfiles(c *gin.Context) {
	profiles, err := mongodb.ListProfiles(c.Request.Context(), userID(c))
	if err != nil {
		logger.Get().Error("Failed to list profiles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list profiles"})
		return
	}

	summaries := make([]models.ProfileSummary, 0, len(profiles))
	for i := range profiles {
		summaries = append(summaries, profiles[i].Summary())
	}
	c.JSON(http.StatusOK, gin.H{"profiles": summaries})
}

// GetProfile returns one profile with pasted text included.
func GetProfile(c *gin.Context) {
	profile, err := mongodb.GetProfile(c.Request.Context(), userID(c), c.Param("id"))
	if errors.Is(err, mongodb.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	if err != nil {
		logger.Get().Error("Failed to get profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get profile"})
		return
	}
	c.JSON(http.StatusOK, profile.Detail())
}

// RenameProfile changes the display name. Document content is immutable, so
// this is the only mutable field.
func RenameProfile(c *gin.Context) {
	var req struct {
		ProfileName string `json:"profileName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profileName is required"})
		return
	}

	err := mongodb.RenameProfile(c.Request.Context(), userID(c), c.Param("id"), strings.TrimSpace(req.ProfileName))
	if errors.Is(err, mongodb.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	if err != nil {
		logger.Get().Error("Failed to rename profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rename profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DeleteProfile removes one profile.
func DeleteProfile(c *gin.Context) {
	err := mongodb.DeleteProfile(c.Request.Context(), userID(c), c.Param("id"))
	if errors.Is(err, mongodb.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	if err != nil {
		logger.Get().Error("Failed to delete profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
