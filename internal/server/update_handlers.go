package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleUpdateCheck(c *gin.Context) {
	platform := c.Query("platform")
	if platform == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Platform is required"})
		return
	}
	current := parseInt(c.Query("currentVersionCode"), 0)

	res, err := s.dir.Check(c.Request.Context(), platform, current)
	if err != nil {
		s.log.Error("update check", "platform", platform, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, res)
}
