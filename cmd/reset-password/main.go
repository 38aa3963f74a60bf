package main

import (
	"flag"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"go-liquor-inventory/internal/config"
	"go-liquor-inventory/internal/repository"
	"go-liquor-inventory/pkg/database"
	"go-liquor-inventory/pkg/logger"
)

// reset-password sets a user's password and signs out their current session.
func main() {
	if err := godotenv.Load(); err != nil {
		logger.Get().Warn(".env file not found, relying on system env")
	}
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)
	log := logger.Get()

	email := flag.String("email", cfg.AdminEmail, "account to reset")
	password := flag.String("password", os.Getenv("NEW_PASSWORD"), "new password (or NEW_PASSWORD)")
	flag.Parse()

	if len(*password) < 6 {
		log.Fatal("new password must be at least 6 characters")
	}

	db, err := database.ConnectDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	users := repository.NewUserRepo(db)

	user, err := users.FindByEmail(*email)
	if err != nil {
		log.WithError(err).WithField("email", *email).Fatal("user not found")
	}
	if err := user.SetPassword(*password); err != nil {
		log.WithError(err).Fatal("failed to hash password")
	}
	if err := users.UpdatePassword(user.ID, user.Password, uuid.NewString()); err != nil {
		log.WithError(err).Fatal("failed to update password")
	}

	log.WithField("email", *email).Info("password reset, existing sessions signed out")
}
