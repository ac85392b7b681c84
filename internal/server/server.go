// Package server wires the HTTP surface: routing, request decoding and the
// mapping from component errors to JSON responses. Both deployment targets
// use this router; only the store driver behind it differs.
package server

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"versehub/internal/auth"
	"versehub/internal/config"
	"versehub/internal/publish"
	"versehub/internal/store"
	"versehub/internal/sync"
	"versehub/internal/update"
)

type Server struct {
	cfg    config.Config
	store  store.Store
	engine *sync.Engine
	dir    *update.Directory
	log    *slog.Logger
}

func New(cfg config.Config, st store.Store, log *slog.Logger) *Server {
	var uploader publish.Uploader
	if cfg.SFTP.Host != "" {
		uploader = publish.NewSFTPUploader(publish.SFTPConfig{
			Host:     cfg.SFTP.Host,
			Port:     cfg.SFTP.Port,
			User:     cfg.SFTP.User,
			Password: cfg.SFTP.Password,
			KeyPath:  cfg.SFTP.KeyPath,
		})
	}
	return &Server{
		cfg:    cfg,
		store:  st,
		engine: sync.New(st),
		dir:    update.New(st, uploader, cfg.SFTP.BasePath, cfg.DownloadBaseURL),
		log:    log,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.handleLogin)
	api.POST("/admin/login", s.handleAdminLogin)
	api.GET("/update/check", s.handleUpdateCheck)

	user := api.Group("/user")
	user.Use(auth.RequireUser(s.cfg.JWTSecret))
	user.GET("/profile", s.handleProfile)
	user.POST("/sync-progress", s.handleSyncProgress)
	user.POST("/sync-settings", s.handleSyncSettings)
	user.POST("/bookmark/add", s.handleBookmarkAdd)
	user.POST("/bookmark/remove", s.handleBookmarkRemove)
	user.POST("/highlight/set", s.handleHighlightSet)
	user.POST("/highlight/remove", s.handleHighlightRemove)
	user.POST("/note/save", s.handleNoteSave)
	user.POST("/note/remove", s.handleNoteRemove)
	user.POST("/sync", s.handleFullSync)

	admin := api.Group("/admin")
	admin.Use(auth.RequireAdmin(s.cfg.JWTSecret))
	admin.GET("/users", s.handleListUsers)
	admin.GET("/users/:id/content", s.handleUserContent)
	admin.DELETE("/users/:id", s.handleDeleteUser)
	admin.POST("/users/:id/password", s.handleResetPassword)
	admin.POST("/versions/parse", s.handleParseVersion)
	admin.POST("/versions/publish", s.handlePublishVersion)
	admin.GET("/versions", s.handleListVersions)
	admin.DELETE("/versions/:id", s.handleDeleteVersion)

	return r
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
