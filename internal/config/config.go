// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const DefaultAdminPassword = "123456"

type SFTP struct {
	Host     string
	Port     int
	User     string
	Password string
	KeyPath  string
	// BasePath is the remote directory binaries are published under,
	// one subdirectory per platform.
	BasePath string
}

type Config struct {
	Port     string
	DBDriver string // "sqlite" or "postgres"

	SQLitePath  string
	DatabaseURL string

	JWTSecret []byte

	AdminUsername string
	AdminPassword string

	UploadDir       string
	DownloadBaseURL string
	SFTP            SFTP

	LogFile string
}

// Load reads .env if present, then the environment. Missing keys fall back
// to development defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:            envOr("PORT", "5001"),
		DBDriver:        envOr("DB_DRIVER", "sqlite"),
		SQLitePath:      envOr("SQLITE_PATH", "./data/versehub.db"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       []byte(envOr("JWT_SECRET", "secret_key")),
		AdminUsername:   envOr("ADMIN_USERNAME", "admin"),
		AdminPassword:   envOr("ADMIN_PASSWORD", DefaultAdminPassword),
		UploadDir:       envOr("UPLOAD_DIR", "./uploads"),
		DownloadBaseURL: os.Getenv("DOWNLOAD_BASE_URL"),
		SFTP: SFTP{
			Host:     os.Getenv("SFTP_HOST"),
			Port:     envIntOr("SFTP_PORT", 22),
			User:     os.Getenv("SFTP_USER"),
			Password: os.Getenv("SFTP_PASSWORD"),
			KeyPath:  os.Getenv("SFTP_KEY_PATH"),
			BasePath: envOr("SFTP_BASE_PATH", "/home/ubuntu/bible_client/"),
		},
		LogFile: os.Getenv("LOG_FILE"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
