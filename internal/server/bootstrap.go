package server

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"versehub/internal/config"
	"versehub/internal/store"
)

// EnsureDefaultAdmin seeds the administrator account once, at first boot.
// The record is created only if no admin with the configured username
// exists; after that it is only mutable by direct database access.
func EnsureDefaultAdmin(ctx context.Context, st store.Store, cfg config.Config, log *slog.Logger) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	created, err := st.EnsureAdmin(ctx, store.AdminRecord{
		ID:           uuid.NewString(),
		Username:     cfg.AdminUsername,
		PasswordHash: string(hash),
	})
	if err != nil {
		return err
	}
	if created {
		log.Info("seeded administrator account", "username", cfg.AdminUsername)
	}
	if cfg.AdminPassword == config.DefaultAdminPassword {
		log.Warn("administrator account uses the default password; set ADMIN_PASSWORD before exposing this server")
	}
	return nil
}
