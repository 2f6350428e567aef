package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/user-directory/internal/api"
	"github.com/isdelr/user-directory/internal/auth"
	"github.com/isdelr/user-directory/internal/config"
	"github.com/isdelr/user-directory/internal/database"
	"github.com/isdelr/user-directory/internal/logger"
	"github.com/isdelr/user-directory/internal/monitoring"
	"github.com/isdelr/user-directory/internal/repository"
	"github.com/isdelr/user-directory/internal/services"
	"github.com/isdelr/user-directory/internal/views"
	"github.com/isdelr/user-directory/internal/websocket"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logFile := logger.Init(cfg.Log)
	defer logFile.Close()

	// Set up the user store
	repo, closeStore, err := openStore(cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("Failed to initialize user store")
	}
	defer closeStore()

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	hasher := auth.NewPasswordHasher(cfg.Security.BcryptCost)
	userService := services.NewUserService(repo, hasher, hub)

	renderer, err := views.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse page templates")
	}

	// Set up and run the background store health checker
	healthChecker, err := monitoring.NewHealthChecker(repo, cfg.Monitoring.HealthSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule health checks")
	}
	healthChecker.Run()

	// Set up router
	router := api.NewRouter(api.RouterConfig{
		Users:          userService,
		Views:          renderer,
		Health:         healthChecker,
		Hub:            hub,
		PublicDir:      cfg.Server.PublicDir,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("driver", cfg.Store.Driver).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	healthChecker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}

// openStore connects the configured backend and returns its repository
// along with a function releasing the connection.
func openStore(cfg config.StoreConfig) (repository.UserRepository, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := database.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to apply database migrations: %w", err)
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("Connected to SQLite")
		return repository.NewSQLiteUserRepository(db), closeSQLite(db), nil

	default:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := database.NewMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewMongoUserRepository(client.Database(cfg.Database))
		if err := repo.EnsureIndexes(ctx); err != nil {
			client.Disconnect(context.Background())
			return nil, nil, err
		}
		log.Info().Str("database", cfg.Database).Msg("Connected to MongoDB")
		return repo, disconnectMongo(client), nil
	}
}

func closeSQLite(db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close SQLite database")
		}
	}
}

func disconnectMongo(client *mongo.Client) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}
}
