package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/commerce"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/service"
	"storefront/internal/sitegen"
	"storefront/internal/view"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// In-flight requests get 30 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Close server resources
	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

// bootstrap loads the configuration, the logger and the content database
func bootstrap() (*config.Config, *zap.Logger, database.Service, error) {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Sync()
		return nil, nil, nil, err
	}

	return cfg, log, db, nil
}

func serve(c *cli.Context) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}

	log.Info("Starting storefront",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	health := db.Health(c.Context)
	log.Info("Database health check", zap.Any("health", health))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(c.Context).Err(); err != nil {
		// the add-to-cart limiter fails open
		log.Warn("Redis unavailable, rate limiting disabled until it returns", zap.Error(err))
	}

	commerceClient := commerce.NewStorefrontClient(cfg.Commerce, log)

	srv, err := server.NewServer(cfg, log, db, redisClient, commerceClient)
	if err != nil {
		db.Close()
		redisClient.Close()
		return err
	}

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	<-done
	log.Info("Graceful shutdown complete")
	return nil
}

func build(c *cli.Context) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer db.Close()

	renderer, err := view.New(log)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	contentRepo := repository.NewContentRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())
	catalog := service.NewCatalogService(contentRepo, productRepo, service.CatalogOptions{
		PlaceholderImage: cfg.Storefront.PlaceholderImage,
		ThumbnailOption:  cfg.Storefront.ThumbnailOption,
		PostsToShow:      cfg.Storefront.PostsToShow,
	}, log)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manifest, err := sitegen.NewBuilder(contentRepo, productRepo, catalog, renderer, log).Build(ctx, c.String("out"))
	if err != nil {
		return fmt.Errorf("static export failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "exported %d routes to %s (build %s)\n", len(manifest.Routes), c.String("out"), manifest.BuildID)
	return nil
}

func migrate(run func(db database.Service, log *zap.Logger) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()
		defer db.Close()

		return run(db, log)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "storefront",
		Usage: "serve or export the shop",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "load environment variables from `FILE` before reading the configuration",
			},
		},
		Before: func(c *cli.Context) error {
			if path := c.String("env-file"); path != "" {
				if err := godotenv.Load(path); err != nil {
					return fmt.Errorf("failed to load env file: %w", err)
				}
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serve,
			},
			{
				Name:  "build",
				Usage: "export the catalog as static HTML",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "output `DIR`",
						Value: "public",
					},
				},
				Action: build,
			},
			{
				Name:  "migrate",
				Usage: "manage the content schema",
				Subcommands: []*cli.Command{
					{
						Name:  "up",
						Usage: "apply pending migrations",
						Action: migrate(func(db database.Service, log *zap.Logger) error {
							return database.RunMigrations(db.DB(), log)
						}),
					},
					{
						Name:  "status",
						Usage: "print the migration status",
						Action: migrate(func(db database.Service, log *zap.Logger) error {
							return database.GetMigrationStatus(db.DB())
						}),
					},
				},
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
