// The stateless deployment: every instance is disposable and shares one
// managed postgres database. Identical HTTP contract to cmd/server; only the
// store driver differs.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"versehub/internal/config"
	"versehub/internal/server"
	"versehub/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg.LogFile)

	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required for the edge deployment")
		os.Exit(1)
	}

	ctx := context.Background()
	st, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("open database", "err", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := server.EnsureDefaultAdmin(ctx, st, cfg, log); err != nil {
		log.Error("seed admin", "err", err)
		os.Exit(1)
	}

	srv := server.New(cfg, st, log)
	log.Info("listening", "port", cfg.Port)
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
