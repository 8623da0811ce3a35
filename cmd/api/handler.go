package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	authDelivery "questlog-backend/internal/auth/delivery"
	"questlog-backend/internal/auth/oauth"
	authRepo "questlog-backend/internal/auth/repository"
	authUsecase "questlog-backend/internal/auth/usecase"
	dashboardDelivery "questlog-backend/internal/dashboard/delivery"
	guildDelivery "questlog-backend/internal/guild/delivery"
	guildUsecase "questlog-backend/internal/guild/usecase"
	profileDelivery "questlog-backend/internal/profile/delivery"
	profileUsecase "questlog-backend/internal/profile/usecase"
	questDelivery "questlog-backend/internal/quest/delivery"
	questUsecase "questlog-backend/internal/quest/usecase"
	"questlog-backend/pkg/config"
	"questlog-backend/pkg/csrf"
	"questlog-backend/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// Dependencies are the usecases and stores the HTTP layer is built on.
type Dependencies struct {
	AuthUsecase    authUsecase.AuthUsecase
	ProfileUsecase profileUsecase.ProfileUsecase
	QuestUsecase   questUsecase.QuestUsecase
	GuildUsecase   guildUsecase.GuildUsecase
	DeviceRepo     authRepo.DeviceTokenRepository
	// Google is nil when Google sign-in is not configured.
	Google oauth.Provider
}

type Handler struct {
	config           *config.Config
	provider         *authDelivery.AuthProvider
	csrfGuard        *csrf.Guard
	loginLimiter     *ratelimit.FixedWindow
	authHandler      *authDelivery.AuthHandler
	deviceHandler    *authDelivery.DeviceHandler
	profileHandler   *profileDelivery.ProfileHandler
	questHandler     *questDelivery.QuestHandler
	guildHandler     *guildDelivery.GuildHandler
	dashboardHandler *dashboardDelivery.DashboardHandler
}

func NewHandler(cfg *config.Config, deps Dependencies) (*Handler, error) {
	cookies := authDelivery.CookieOptions{Secure: cfg.CookieSecure}
	provider, err := authDelivery.NewAuthProvider(cfg.AuthMode, deps.AuthUsecase, authDelivery.ProviderOptions{
		Cookies:    cookies,
		AccessTTL:  cfg.JWTAccessExpiry,
		RefreshTTL: cfg.JWTRefreshExpiry,
		SessionTTL: cfg.SessionTTL,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Auth strategy: %s", provider.Strategy.Name())

	return &Handler{
		config:           cfg,
		provider:         provider,
		csrfGuard:        csrf.New(cfg.CSRFExemptPaths, cfg.CookieSecure),
		loginLimiter:     ratelimit.NewFixedWindow(cfg.LoginRateLimit, cfg.LoginRateWindow),
		authHandler:      authDelivery.NewAuthHandler(deps.AuthUsecase, provider, deps.Google, cookies, cfg.PublicBaseURL),
		deviceHandler:    authDelivery.NewDeviceHandler(deps.DeviceRepo),
		profileHandler:   profileDelivery.NewProfileHandler(deps.ProfileUsecase),
		questHandler:     questDelivery.NewQuestHandler(deps.QuestUsecase),
		guildHandler:     guildDelivery.NewGuildHandler(deps.GuildUsecase),
		dashboardHandler: dashboardDelivery.NewDashboardHandler(deps.AuthUsecase),
	}, nil
}

// Router builds the gin engine with the global middleware and all routes.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if err := r.SetTrustedProxies(h.config.TrustedProxies); err != nil {
		log.Printf("[WARN] Ignoring TRUSTED_PROXIES: %v", err)
		r.SetTrustedProxies(nil)
	}

	SetupRoutes(r, h)
	return r
}

// Start serves until ctx is cancelled, then drains in-flight requests. It
// serves HTTPS when a certificate and key are configured.
func (h *Handler) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if h.config.TLSCertFile != "" && h.config.TLSKeyFile != "" {
			log.Printf("HTTPS server listening on %s", addr)
			err = srv.ListenAndServeTLS(h.config.TLSCertFile, h.config.TLSKeyFile)
		} else {
			log.Printf("HTTP server listening on %s", addr)
			err = srv.ListenAndServe()
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Println("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
