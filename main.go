package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"booking-availability/api"
	"booking-availability/appointment"
	"booking-availability/availability"
	"booking-availability/block"
	"booking-availability/config"
	"booking-availability/database"
	"booking-availability/locker"
	"booking-availability/logging"
	"booking-availability/schedule"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	logger.Info("connecting to database")
	db, err := database.Connect(ctx, cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("database connect: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("database ready")

	defaults := schedule.StandardWeek
	defaults.StartHour = cfg.DefaultStartHour
	defaults.EndHour = cfg.DefaultEndHour

	engine := availability.NewEngine(
		block.NewAccessor(db),
		schedule.NewResolver(schedule.NewAccessor(db), defaults, logger.Named("schedule")),
		appointment.NewAccessor(db),
		loc,
		logger.Named("availability"),
	)

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		engine.WithLocker(locker.NewRedisLocker(client, cfg.SlotLockTTL, logger.Named("locker")))
		logger.Info("slot lock enabled", zap.String("redis_addr", cfg.RedisAddr))
	}

	service := api.NewAPI(db, engine, logger.Named("api")).
		WithBookingRateLimit(cfg.BookingRatePerMin).
		WithTrustedProxy(cfg.TrustProxyHeaders).
		WithAllowedOrigins(cfg.CORSAllowedOrigins)
	service.RegisterRoutes()

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           service.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.AppPort),
			zap.String("timezone", loc.String()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
