package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"livestock-farm-api-server/config"
	"livestock-farm-api-server/internal/api/routes"
	"livestock-farm-api-server/internal/database"
	"livestock-farm-api-server/internal/notifier"
	"livestock-farm-api-server/internal/scheduler"
	"livestock-farm-api-server/internal/socket"
	"livestock-farm-api-server/internal/storage"
	"livestock-farm-api-server/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.Must(logger.New())
	defer log.Sync()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		log.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	log.Info("connected to mongodb", zap.String("database", cfg.Mongo.DBName))

	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("failed to ensure indexes", zap.Error(err))
	}
	if err := database.SeedAdmin(ctx, db, cfg.Admin, logger.Named(log, "seeder")); err != nil {
		log.Fatal("failed to seed admin", zap.Error(err))
	}

	hub := socket.NewHub(logger.Named(log, "socket"))
	mail := notifier.NewMailClient(cfg.Mail, logger.Named(log, "mail"))
	notif := notifier.New(db, hub, mail, logger.Named(log, "notifier"))

	var uploader *storage.Uploader
	if cfg.S3.Bucket != "" {
		uploader, err = storage.NewUploader(cfg.S3)
		if err != nil {
			log.Fatal("failed to configure object storage", zap.Error(err))
		}
	} else {
		log.Warn("object storage not configured, backups are disabled")
	}

	sched := scheduler.New(cfg.Scheduler, scheduler.NewMongoStore(db), notif, logger.Named(log, "scheduler"))
	sched.Start()
	defer sched.Stop()

	router := routes.SetupRouter(db, cfg, hub, notif, uploader)

	log.Info("starting server", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
