package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/estora/estora-api/internal/config"
	"github.com/estora/estora-api/internal/domain/auth"
	"github.com/estora/estora-api/internal/domain/governance"
	"github.com/estora/estora-api/internal/domain/kyc"
	"github.com/estora/estora-api/internal/domain/market"
	"github.com/estora/estora-api/internal/domain/notification"
	"github.com/estora/estora-api/internal/domain/payment"
	"github.com/estora/estora-api/internal/domain/property"
	"github.com/estora/estora-api/internal/domain/reservation"
	"github.com/estora/estora-api/internal/domain/token"
	"github.com/estora/estora-api/internal/domain/user"
	"github.com/estora/estora-api/internal/middleware"
	"github.com/estora/estora-api/internal/pkg/database"
	"github.com/estora/estora-api/internal/pkg/hedera"
	"github.com/estora/estora-api/internal/pkg/imaging"
	"github.com/estora/estora-api/internal/pkg/jwt"
	"github.com/estora/estora-api/internal/pkg/logger"
	"github.com/estora/estora-api/internal/pkg/paystack"
	pkgresponse "github.com/estora/estora-api/internal/pkg/response"
	"github.com/estora/estora-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Estora API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	s3Storage, err := storage.NewS3Storage(storage.Config{
		S3Endpoint:  cfg.S3Endpoint,
		S3Region:    cfg.S3Region,
		S3AccessKey: cfg.S3AccessKey,
		S3SecretKey: cfg.S3SecretKey,
		S3Bucket:    cfg.S3Bucket,
		S3PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create S3 storage")
	}

	paystackClient := paystack.NewClient(paystack.Config{
		BaseURL:   cfg.PaystackBaseURL,
		SecretKey: cfg.PaystackSecretKey,
	})

	hederaBridge := hedera.NewClient(hedera.Config{
		BaseURL:    cfg.HederaBridgeURL,
		Token:      cfg.HederaBridgeToken,
		TreasuryID: cfg.HederaTreasuryID,
		MirrorURL:  cfg.HederaMirrorURL,
		Timeout:    time.Duration(cfg.HederaTimeoutSecond) * time.Second,
	})

	// ---------- WebSocket hub ----------
	notificationHub := notification.NewHub(redis)
	go notificationHub.Run()
	defer notificationHub.Stop()

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	propertyRepo := property.NewRepository(db)
	reservationRepo := reservation.NewRepository(db)
	marketRepo := market.NewRepository(db)
	governanceRepo := governance.NewRepository(db)
	kycRepo := kyc.NewRepository(db)
	tokenRepo := token.NewRepository(db)
	paymentRepo := payment.NewRepository(db)
	notificationRepo := notification.NewRepository(db)

	// ---------- Services ----------
	notificationService := notification.NewService(notificationRepo, notificationHub)

	authService := auth.NewService(userRepo, jwtService, redis)
	propertyService := property.NewService(propertyRepo)
	reservationService := reservation.NewService(reservationRepo, propertyRepo, notificationService, int64(cfg.PlatformFeeBps))
	tokenService := token.NewService(tokenRepo, propertyRepo, userRepo, hederaBridge)
	marketService := market.NewService(marketRepo, propertyRepo, tokenService)
	governanceService := governance.NewService(governanceRepo, propertyRepo, notificationService)
	kycService := kyc.NewService(kycRepo, s3Storage, imaging.NewProcessor(imaging.DefaultConfig()), notificationService)
	paymentService := payment.NewService(paymentRepo, paystackClient, reservationService, marketService, userRepo, notificationService, cfg.PaystackSecretKey)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	propertyHandler := property.NewHandler(propertyService, s3Storage)
	reservationHandler := reservation.NewHandler(reservationService)
	marketHandler := market.NewHandler(marketService)
	governanceHandler := governance.NewHandler(governanceService)
	kycHandler := kyc.NewHandler(kycService)
	tokenHandler := token.NewHandler(tokenService)
	paymentHandler := payment.NewHandler(paymentService)
	notificationHandler := notification.NewHandler(notificationService, notificationHub, cfg.AllowedOrigins)

	authMiddleware := middleware.Auth(jwtService)
	ownerMiddleware := middleware.RequireOwner()
	adminMiddleware := middleware.RequireAdmin()
	kycMiddleware := middleware.RequireKYC(kycService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint, browsers cannot set the Authorization header
	// on WS connections so the token travels as a query parameter
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		if bearer := r.URL.Query().Get("token"); bearer != "" {
			r.Header.Set("Authorization", "Bearer "+bearer)
		}
		authMiddleware(http.HandlerFunc(notificationHandler.WebSocket)).ServeHTTP(w, r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes(authMiddleware))

		// Availability and per-property reservation listings live on the
		// same subrouter as the property endpoints
		propertyRoutes := propertyHandler.Routes(authMiddleware, ownerMiddleware)
		reservationHandler.PropertyRoutes(authMiddleware)(propertyRoutes)
		r.Mount("/properties", propertyRoutes)

		r.Mount("/reservations", reservationHandler.Routes(authMiddleware))
		r.Mount("/market", marketHandler.Routes(authMiddleware, kycMiddleware))
		r.Mount("/groups", governanceHandler.GroupRoutes(authMiddleware))
		r.Mount("/polls", governanceHandler.PollRoutes(authMiddleware))
		r.Mount("/kyc", kycHandler.Routes(authMiddleware, adminMiddleware))
		r.Mount("/tokens", tokenHandler.Routes(authMiddleware, ownerMiddleware, kycMiddleware))
		r.Mount("/payments", paymentHandler.Routes(authMiddleware, kycMiddleware))
		r.Mount("/notifications", notificationHandler.Routes(authMiddleware))
	})

	r.Post("/webhooks/paystack", paymentHandler.Webhook)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
