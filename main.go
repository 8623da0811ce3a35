package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	api "questlog-backend/cmd/api"
	authdomain "questlog-backend/internal/auth/domain"
	"questlog-backend/internal/auth/oauth"
	authRepo "questlog-backend/internal/auth/repository"
	"questlog-backend/internal/auth/scheduler"
	authUsecase "questlog-backend/internal/auth/usecase"
	guilddomain "questlog-backend/internal/guild/domain"
	guildRepo "questlog-backend/internal/guild/repository"
	guildUsecase "questlog-backend/internal/guild/usecase"
	"questlog-backend/internal/notification"
	profileUsecase "questlog-backend/internal/profile/usecase"
	questdomain "questlog-backend/internal/quest/domain"
	questRepo "questlog-backend/internal/quest/repository"
	questUsecase "questlog-backend/internal/quest/usecase"
	"questlog-backend/pkg/config"
	"questlog-backend/pkg/database"
	"questlog-backend/pkg/events"
	"questlog-backend/pkg/fcm"
	"questlog-backend/pkg/fieldcrypt"
	"questlog-backend/pkg/mailer"
	"questlog-backend/pkg/password"
	"questlog-backend/pkg/token"

	"github.com/spf13/pflag"
)

func main() {
	envFile := pflag.String("env-file", "", "load environment from this file instead of .env")
	addr := pflag.String("addr", "", "listen address (defaults to :$PORT)")
	migrateOnly := pflag.Bool("migrate-only", false, "run database migrations and exit")
	pflag.Parse()

	// Load configuration
	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration:\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := database.Migrate(db, &authdomain.User{}, &authdomain.Session{}, &authdomain.DeviceToken{}, &questdomain.Quest{}, &guilddomain.Guild{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	if *migrateOnly {
		return
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	sessionRepo := authRepo.NewSessionRepository(db)
	deviceRepo := authRepo.NewDeviceTokenRepository(db)
	questRepository := questRepo.NewGormQuestRepository(db)
	guildRepository := guildRepo.NewGormGuildRepository(db)

	cipher, err := fieldcrypt.New(cfg.EncryptionKey)
	if err != nil {
		log.Fatal("Failed to initialize field encryption:", err)
	}
	tokens := token.NewIssuer(cfg.JWTSecret, cfg.RefreshSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)

	// Outgoing mail goes through Gmail when a sender account is configured
	var mail mailer.Sender = mailer.LogSender{ShowSecrets: cfg.MailLogSecrets}
	if cfg.MailGoogleRefreshToken != "" && cfg.GoogleOAuthEnabled() {
		mail = mailer.NewGmailSender(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.MailGoogleRefreshToken)
	} else {
		log.Printf("[WARN] Gmail sender not configured, password reset mail will only be logged")
	}

	// Security event stream (Pub/Sub), only if project ID is configured
	var publisher events.Publisher = events.Nop{}
	if cfg.GoogleProjectID != "" {
		ps, err := events.NewPubSubPublisher(ctx, cfg.GoogleProjectID, cfg.PubSubTopic, cfg.GoogleCredentials)
		if err != nil {
			log.Printf("[ERROR] Failed to initialize event publisher: %v", err)
		} else {
			defer ps.Close()
			publisher = ps
		}
	} else {
		log.Printf("[WARN] GoogleProjectID not configured, security events disabled")
	}

	// FCM client (optional, notifications work without it)
	var pusher notification.Pusher
	if cfg.FirebaseCredentials != "" {
		fcmClient, err := fcm.NewClient(ctx, cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		} else {
			pusher = fcmClient
		}
	}
	notifier := notification.NewService(publisher, deviceRepo, pusher)
	// Drain in-flight alerts before the publisher closes.
	defer notifier.Wait()

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(
		userRepo,
		sessionRepo,
		password.NewHasher(password.DefaultParams),
		cipher,
		tokens,
		mail,
		notifier,
		authUsecase.Options{
			RefreshRotation: cfg.RefreshRotation,
			SessionTTL:      cfg.SessionTTL,
			ResetTokenTTL:   cfg.ResetTokenTTL,
			MailFrom:        cfg.MailFrom,
		},
	)

	deps := api.Dependencies{
		AuthUsecase:    authUsecaseInstance,
		ProfileUsecase: profileUsecase.NewProfileUsecase(userRepo, cipher, authUsecaseInstance),
		QuestUsecase:   questUsecase.NewQuestUsecase(questRepository),
		GuildUsecase:   guildUsecase.NewGuildUsecase(guildRepository),
		DeviceRepo:     deviceRepo,
	}
	if cfg.GoogleOAuthEnabled() {
		deps.Google = oauth.NewGoogleBridge(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
	} else {
		log.Printf("[WARN] Google OAuth not configured, /auth/google disabled")
	}

	// Start expired session / reset token cleanup
	cleanup := scheduler.NewCleanupScheduler(userRepo, sessionRepo, cfg.CleanupInterval)
	cleanup.Start()
	defer cleanup.Stop()

	// Initialize HTTP handler
	handler, err := api.NewHandler(cfg, deps)
	if err != nil {
		log.Fatal("Failed to initialize HTTP handler:", err)
	}

	listen := *addr
	if listen == "" {
		listen = ":" + cfg.Port
	}
	log.Printf("Server starting on %s", listen)
	if err := handler.Start(ctx, listen); err != nil {
		log.Printf("Server stopped with error: %v", err)
	}
}
