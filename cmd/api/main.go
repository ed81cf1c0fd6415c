package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/spicepalace/spicepalace-backend/api/controllers"
	"github.com/spicepalace/spicepalace-backend/api/routes"
	"github.com/spicepalace/spicepalace-backend/internal/analytics"
	"github.com/spicepalace/spicepalace-backend/internal/catalog"
	"github.com/spicepalace/spicepalace-backend/internal/orders"
	"github.com/spicepalace/spicepalace-backend/internal/users"
	"github.com/spicepalace/spicepalace-backend/pkg/config"
	"github.com/spicepalace/spicepalace-backend/pkg/db"
	"github.com/spicepalace/spicepalace-backend/pkg/logger"
	"github.com/spicepalace/spicepalace-backend/pkg/mail"
	"github.com/spicepalace/spicepalace-backend/pkg/metrics"
	"github.com/spicepalace/spicepalace-backend/pkg/migrate"
	"github.com/spicepalace/spicepalace-backend/pkg/outbox"
	"github.com/spicepalace/spicepalace-backend/pkg/redis"
	"github.com/spicepalace/spicepalace-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	readyChecks := map[string]controllers.Pinger{
		"db":    dbClient,
		"redis": redisClient,
	}

	var imageStore catalog.ImageStore
	if cfg.GCS.BucketName != "" {
		gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
		defer func() {
			if err := gcsClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing gcs", err)
			}
		}()
		imageStore = gcsClient
		readyChecks["gcs"] = gcsClient
	}

	var mailer mail.Sender
	if cfg.Mail.ResendAPIKey != "" {
		m, err := mail.New(cfg.Mail)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap mailer", err)
			os.Exit(1)
		}
		mailer = m
	}

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	catalogSvc, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), dbClient, imageStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dbClient,
		outboxSvc,
		catalogSvc,
		orders.ParseTransitionPolicy(cfg.Orders.TransitionPolicy),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	analyticsSvc, err := analytics.NewService(analytics.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	usersSvc, err := users.NewService(
		users.NewRepository(dbClient.DB()),
		dbClient,
		mailer,
		cfg.JWT,
		cfg.Password,
		cfg.OTP.TTL,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			Redis:       redisClient,
			HTTPMetrics: metrics.NewHTTPMetrics(),
			Catalog:     catalogSvc,
			Orders:      ordersSvc,
			Analytics:   analyticsSvc,
			Users:       usersSvc,
			ReadyChecks: readyChecks,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
