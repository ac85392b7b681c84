// The stateful deployment: a long-running process with a local sqlite file.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"versehub/internal/config"
	"versehub/internal/server"
	"versehub/internal/store/sqlite"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg.LogFile)

	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
		log.Error("create data dir", "err", err)
		os.Exit(1)
	}

	st, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		log.Error("open database", "path", cfg.SQLitePath, "err", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := server.EnsureDefaultAdmin(context.Background(), st, cfg, log); err != nil {
		log.Error("seed admin", "err", err)
		os.Exit(1)
	}

	srv := server.New(cfg, st, log)
	log.Info("listening", "port", cfg.Port, "db", cfg.SQLitePath)
	if err := srv.Router().Run(":" + cfg.Port); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func newLogger(logFile string) *slog.Logger {
	var w io.Writer = os.Stdout
	if logFile != "" {
		w = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
		}
		return slog.New(slog.NewJSONHandler(w, nil))
	}
	return slog.New(slog.NewTextHandler(w, nil))
}
