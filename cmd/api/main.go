package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-redemption-service/internal/config"
	"github.com/fairyhunter13/coupon-redemption-service/internal/handler"
	"github.com/fairyhunter13/coupon-redemption-service/internal/repository"
	"github.com/fairyhunter13/coupon-redemption-service/internal/service"
	"github.com/fairyhunter13/coupon-redemption-service/internal/throttle"
	"github.com/fairyhunter13/coupon-redemption-service/internal/token"
	"github.com/fairyhunter13/coupon-redemption-service/internal/validator"
	"github.com/fairyhunter13/coupon-redemption-service/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context for startup and background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Coupon Redemption Service",
		ReadTimeout:  30 * time.Second,  // Max time to read request
		WriteTimeout: 30 * time.Second,  // Max time to write response
		IdleTimeout:  120 * time.Second, // Max time for keep-alive connections
		BodyLimit:    1 * 1024 * 1024,   // 1MB body limit (explicit, prevents large payloads)
		ProxyHeader:  cfg.Server.ProxyHeader,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowCredentials: cfg.Server.CORSOrigins != "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
	}))

	// Initialize validator
	validate := validator.New()

	// Cooldown tracker: process-local by default, Redis-backed when
	// REDIS_ADDR is set so the window holds across replicas.
	cooldown := cfg.Redemption.Cooldown()
	var tracker throttle.Tracker
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		tracker = throttle.NewRedisTracker(rdb, cooldown)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis cooldown tracker")
	} else {
		tracker = throttle.NewMemoryTracker(cooldown)
		log.Warn().Msg("using in-memory cooldown tracker, window is per-replica")
	}

	// Initialize components (layered architecture)
	tokens := token.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration(), cooldown)
	couponRepo := repository.NewCouponRepository(pool)
	couponService := service.NewCouponService(couponRepo)
	redemptionService := service.NewRedemptionService(couponRepo, tracker, tokens)
	authService, err := service.NewAuthService(cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, tokens)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth service")
	}

	couponHandler := handler.NewCouponHandler(couponService, validate)
	redeemHandler := handler.NewRedeemHandler(redemptionService, cooldown)
	authHandler := handler.NewAuthHandler(authService, validate)
	healthHandler := handler.NewHealthHandler(pool)

	// Public routes
	app.Get("/health", healthHandler.Check)
	app.Get("/coupons", couponHandler.ListCoupons)
	app.Put("/coupons/redeem/:code", redeemHandler.RedeemCoupon)
	app.Post("/login", authHandler.Login)

	// Admin routes
	admin := handler.RequireAdmin(tokens)
	app.Post("/coupons/create", admin, couponHandler.CreateCoupon)
	app.Put("/coupons/update/:code", admin, couponHandler.UpdateCoupon)
	app.Delete("/coupons/delete/:code", admin, couponHandler.DeleteCoupon)

	// Background sweep converging stored status with derived status.
	// Reads stay correct without it.
	if cfg.Redemption.SweepMinutes > 0 {
		go runSweeper(ctx, couponService, time.Duration(cfg.Redemption.SweepMinutes)*time.Minute)
	}

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Stop the sweeper before draining requests
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("database connections closed")
	log.Info().Msg("server stopped")
}

// runSweeper periodically persists the Expired status for past-expiry
// coupons until ctx is cancelled.
func runSweeper(ctx context.Context, svc *service.CouponService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svc.SweepExpired(ctx)
			if err != nil {
				log.Error().Err(err).Msg("expiry sweep failed")
				continue
			}
			if n > 0 {
				log.Info().Int64("converged", n).Msg("expiry sweep persisted derived status")
			}
		}
	}
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
