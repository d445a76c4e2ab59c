package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/suteetoe/marketplace/internal/model"
	"github.com/suteetoe/marketplace/internal/store"
	"github.com/suteetoe/marketplace/pkg/config"
	"github.com/suteetoe/marketplace/pkg/database"
	"github.com/suteetoe/marketplace/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	username := flag.String("username", "admin", "administrator username")
	password := flag.String("password", "admin123", "administrator password")
	email := flag.String("email", "", "administrator email")
	fullName := flag.String("full-name", "Administrator", "display name")
	phone := flag.String("phone", "", "phone number")
	flag.Parse()

	cfg, err := config.Load("marketplace-admin")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	user, err := store.New(db).CreateUser(context.Background(), store.NewUser{
		Username: *username,
		Password: *password,
		Email:    *email,
		FullName: *fullName,
		Phone:    *phone,
		UserType: model.RoleAdmin,
	})
	if errors.Is(err, store.ErrDuplicateUsername) {
		log.Info("Administrator already exists, nothing to do", zap.String("username", *username))
		return
	}
	if err != nil {
		log.Error("Failed to create administrator", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Administrator created", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
}
