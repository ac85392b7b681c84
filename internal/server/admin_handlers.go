package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"versehub/internal/publish"
)

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.store.ListUsers(c.Request.Context())
	if err != nil {
		s.log.Error("list users", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) handleUserContent(c *gin.Context) {
	userID := c.Param("id")

	profile, err := s.engine.Profile(c.Request.Context(), userID)
	if err != nil {
		s.log.Error("load user content", "user", userID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	userID := c.Param("id")

	if err := s.store.DeleteUser(c.Request.Context(), userID); err != nil {
		s.log.Error("delete user", "user", userID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleResetPassword(c *gin.Context) {
	userID := c.Param("id")

	var req struct {
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New password required"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if err := s.store.ResetUserPassword(c.Request.Context(), userID, string(hash)); err != nil {
		s.log.Error("reset password", "user", userID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleParseVersion stages the uploaded binary and returns its extracted
// metadata. The client sends the returned meta (with tempPath) back to the
// publish endpoint to finish the two-step flow.
func (s *Server) handleParseVersion(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		s.log.Error("create upload dir", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	tempPath := filepath.Join(s.cfg.UploadDir, uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, tempPath); err != nil {
		s.log.Error("stage upload", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	meta, err := publish.ParseFile(tempPath, file.Filename)
	if err != nil {
		os.Remove(tempPath)
		s.log.Error("parse upload", "file", file.Filename, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse file"})
		return
	}
	meta.TempPath = tempPath
	meta.OriginalName = file.Filename

	c.JSON(http.StatusOK, gin.H{"success": true, "meta": meta})
}

func (s *Server) handlePublishVersion(c *gin.Context) {
	var req struct {
		TempPath      string           `json:"tempPath"`
		Meta          publish.Metadata `json:"meta"`
		UpdateInfo    string           `json:"updateInfo"`
		IsForceUpdate bool             `json:"isForceUpdate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.TempPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing temporary file"})
		return
	}
	if _, err := os.Stat(req.TempPath); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing temporary file"})
		return
	}
	// the staged file goes away whether publishing succeeds or not
	defer os.Remove(req.TempPath)

	meta := req.Meta
	meta.TempPath = req.TempPath

	version, err := s.dir.Publish(c.Request.Context(), meta, req.UpdateInfo, req.IsForceUpdate)
	if err != nil {
		s.log.Error("publish version", "platform", meta.Platform, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish version"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "version": version})
}

func (s *Server) handleListVersions(c *gin.Context) {
	versions, err := s.dir.List(c.Request.Context())
	if err != nil {
		s.log.Error("list versions", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, versions)
}

func (s *Server) handleDeleteVersion(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid version id"})
		return
	}
	if err := s.dir.Delete(c.Request.Context(), id); err != nil {
		s.log.Error("delete version", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
