// cmd/seeduser/main.go: creates or resets the first admin account.
// Usage: SEED_USERNAME=admin SEED_PASSWORD=... go run ./cmd/seeduser
package main

import (
	"context"
	"os"

	"sukiism/internal/config"
	"sukiism/internal/infra"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	username := envOr("SEED_USERNAME", "admin")
	password := os.Getenv("SEED_PASSWORD")
	if len(password) < 8 {
		log.Fatal().Msg("SEED_PASSWORD must be at least 8 characters")
	}
	name := envOr("SEED_NAME", "Kitchen Admin")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	result := db.WithContext(context.Background()).Exec(`
		INSERT INTO users (username, name, password_hash, role, active, created_at, updated_at)
		VALUES (?, ?, ?, 'admin', true, NOW(), NOW())
		ON CONFLICT (username) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    name = EXCLUDED.name,
		    role = 'admin',
		    active = true,
		    updated_at = NOW()
	`, username, name, string(hash))
	if result.Error != nil {
		log.Fatal().Err(result.Error).Msg("upsert failed")
	}
	log.Info().Str("username", username).Msg("admin user created or reset")
}
