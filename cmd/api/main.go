package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gincana-dev/gincana-go-api/internal/auth"
	"github.com/gincana-dev/gincana-go-api/internal/config"
	"github.com/gincana-dev/gincana-go-api/internal/database"
	"github.com/gincana-dev/gincana-go-api/internal/game"
	"github.com/gincana-dev/gincana-go-api/internal/handler"
	"github.com/gincana-dev/gincana-go-api/internal/middleware"
	"github.com/gincana-dev/gincana-go-api/internal/models"
	"github.com/gincana-dev/gincana-go-api/internal/router"
	"github.com/gincana-dev/gincana-go-api/internal/store"
	"github.com/gincana-dev/gincana-go-api/internal/upload"
	cloud "github.com/gincana-dev/gincana-go-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
	} else {
		logger.Warn().Msg("no database url configured, falling back to local sqlite")
		db, err = database.ConnectSQLite("")
		if err != nil {
			log.Fatalf("failed to open sqlite fallback: %v", err)
		}
	}

	if err := db.AutoMigrate(
		&models.UserProfile{},
		&models.Credential{},
		&models.Team{},
		&models.Prova{},
		&models.RankingSettings{},
		&models.ReviewRequest{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := store.NewChangeBroker()
	var feed store.ChangeFeed = broker
	if redisClient != nil || natsConn != nil {
		fanout := store.NewFanout(broker, redisClient, "gincana", natsConn, logger)
		fanout.Start(rootCtx)
		feed = fanout
	}

	teamStore := store.NewTeamStore(db, feed)
	provaStore := store.NewProvaStore(db, feed)
	settingsStore := store.NewSettingsStore(db, feed)
	reviewStore := store.NewReviewStore(db, feed)
	profileStore := store.NewProfileStore(db, feed)
	credentialStore := store.NewCredentialStore(db)

	coordinator := game.New(game.Stores{
		Teams:    teamStore,
		Provas:   provaStore,
		Settings: settingsStore,
		Reviews:  reviewStore,
		Profiles: profileStore,
	}, logger)
	if err := coordinator.Start(rootCtx); err != nil {
		log.Fatalf("failed to start game coordinator: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	authService := auth.NewService(profileStore, credentialStore, validate, cfg.JWTSecret, cfg.TokenTTL, logger)

	var uploadHandler *handler.UploadHandler
	if cfg.CloudinaryCloudName != "" {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploadHandler = handler.NewUploadHandler(upload.NewService(uploader, cfg.EvidenceMaxSizeMB, logger), logger)
	} else {
		logger.Warn().Msg("cloudinary not configured, evidence uploads disabled")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:    handler.NewAuthHandler(authService, validate, logger),
		TeamHandler:    handler.NewTeamHandler(coordinator, validate, logger),
		ProvaHandler:   handler.NewProvaHandler(coordinator, validate, logger),
		RankingHandler: handler.NewRankingHandler(coordinator, validate, logger),
		ReviewHandler:  handler.NewReviewHandler(coordinator, validate, logger),
		UploadHandler:  uploadHandler,
		StreamHandler:  handler.NewStreamHandler(coordinator, logger),
		JWTMiddleware:  middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, cancel)
}

func waitForShutdown(app *fiber.App, cancel context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	cancel()

	ctx, timeout := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeout()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
