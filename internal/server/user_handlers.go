package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"versehub/internal/auth"
	"versehub/pkg/models"
)

func (s *Server) handleProfile(c *gin.Context) {
	userID := c.GetString(auth.CtxUserIDKey)

	profile, err := s.engine.Profile(c.Request.Context(), userID)
	if err != nil {
		s.log.Error("load profile", "user", userID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleSyncProgress(c *gin.Context) {
	userID := c.GetString(auth.CtxUserIDKey)

	var req struct {
		Progress *models.Progress `json:"progress"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := s.engine.SyncProgress(c.Request.Context(), userID, req.Progress); err != nil {
		s.log.Error("sync progress", "user", userID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Progress sync failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleSyncSettings(c *gin.Context) {
	userID := c.GetString(auth.CtxUserIDKey)

	var req struct {
		Settings *models.Settings `json:"settings"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := s.engine.SyncSettings(c.Request.Context(), userID, req.Settings); err != nil {
		s.log.Error("sync settings", "user", userID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Settings sync failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleBookmarkAdd(c *gin.Context) {
	userID := c.GetString(auth.CtxUserIDKey)

	var b models.Bookmark
	if err := c.ShouldBindJSON(&b); err != nil || b.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}
	if err := s.engine.AddBookmark(c.Request.Context(), userID, b); err != nil {
		s.log.Error("add bookmark", "user", userID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add bookmark"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleBookmarkRemove(c *gin.Context) {
	userID := c.GetString(auth.CtxUserIDKey)

	var req struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}
	if err := s.engine.RemoveBookmark(c.Request.Context(), userID, req.ID); err != nil {
		s.log.Error("remove bookmark", "user", userID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove bookmark"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleHighlightSet(c *gin.Context) {
	userID := c.GetString(auth.CtxUserIDKey)

	var h models.Highlight
	if err := c.ShouldBindJSON(&h); err != nil || h.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}
	if err := s.engine.SetHighlight(c.Request.Context(), userID, h); err != nil {
		s.log.Error("set highlight", "user", userID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set highlight"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleHighlightRemove(c *gin.Context) {
	userID := c.GetString(auth.CtxUserIDKey)

	var req struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}
	if err := s.engine.RemoveHighlight(c.Request.Context(), userID, req.ID); err != nil {
		s.log.Error("remove highlight", "user", userID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove highlight"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleNoteSave(c *gin.Context) {
	userID := c.GetString(auth.CtxUserIDKey)

	var n models.Note
	if err := c.ShouldBindJSON(&n); err != nil || n.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}
	if err := s.engine.SaveNote(c.Request.Context(), userID, n); err != nil {
		s.log.Error("save note", "user", userID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save note"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleNoteRemove(c *gin.Context) {
	userID := c.GetString(auth.CtxUserIDKey)

	var req struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}
	if err := s.engine.RemoveNote(c.Request.Context(), userID, req.ID); err != nil {
		s.log.Error("remove note", "user", userID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove note"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleFullSync(c *gin.Context) {
	userID := c.GetString(auth.CtxUserIDKey)

	var snap models.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := s.engine.FullSync(c.Request.Context(), userID, snap); err != nil {
		s.log.Error("full sync", "user", userID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sync failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
