// Command seed creates an admin user so the first admin token can be issued.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/fseda/Vidly/internal/auth"
	"github.com/fseda/Vidly/internal/config"
	"github.com/fseda/Vidly/internal/logging"
	"github.com/fseda/Vidly/internal/models"
	"github.com/fseda/Vidly/internal/store"
	"github.com/fseda/Vidly/internal/validation"
)

func main() {
	name := flag.String("name", "Administrator", "admin display name")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password")
	flag.Parse()

	log := logging.New("info", "text")
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Fatal("load .env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	req := models.RegisterRequest{Name: *name, Email: *email, Password: *password}
	if err := validation.New().Validate(&req); err != nil {
		log.WithError(err).Fatal("invalid admin user")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("postgres connect")
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		log.WithError(err).Fatal("postgres migrate")
	}

	user, err := auth.CreateUser(ctx, pgStore, req.Name, req.Email, req.Password, true)
	if err != nil {
		log.WithError(err).Fatal("create admin user")
	}
	log.WithFields(map[string]any{"id": user.ID, "email": user.Email}).Info("admin user created")
}
