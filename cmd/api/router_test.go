package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authdomain "questlog-backend/internal/auth/domain"
	authRepo "questlog-backend/internal/auth/repository"
	authUsecase "questlog-backend/internal/auth/usecase"
	guilddomain "questlog-backend/internal/guild/domain"
	guildRepo "questlog-backend/internal/guild/repository"
	guildUsecase "questlog-backend/internal/guild/usecase"
	profileUsecase "questlog-backend/internal/profile/usecase"
	questdomain "questlog-backend/internal/quest/domain"
	questRepo "questlog-backend/internal/quest/repository"
	questUsecase "questlog-backend/internal/quest/usecase"
	"questlog-backend/pkg/config"
	"questlog-backend/pkg/csrf"
	"questlog-backend/pkg/database/dbtest"
	"questlog-backend/pkg/events"
	"questlog-backend/pkg/fieldcrypt"
	"questlog-backend/pkg/mailer"
	"questlog-backend/pkg/password"
	"questlog-backend/pkg/token"

	"github.com/gin-gonic/gin"
)

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, events.Kind, string, map[string]string) {}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.Open(t, &authdomain.User{}, &authdomain.Session{}, &authdomain.DeviceToken{}, &questdomain.Quest{}, &guilddomain.Guild{})
	cipher, err := fieldcrypt.New("router-test-key")
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	cfg := &config.Config{
		AuthMode:         config.AuthModeToken,
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 7 * 24 * time.Hour,
		SessionTTL:       24 * time.Hour,
		LoginRateLimit:   5,
		LoginRateWindow:  15 * time.Minute,
		CSRFExemptPaths:  []string{"/auth/logout"},

		CORSAllowedOrigins: []string{"https://app.example"},
	}

	users := authRepo.NewUserRepository(db)
	authUc := authUsecase.NewAuthUsecase(
		users,
		authRepo.NewSessionRepository(db),
		password.NewHasher(password.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}),
		cipher,
		token.NewIssuer("access-secret", "refresh-secret", cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry),
		mailer.LogSender{},
		nopNotifier{},
		authUsecase.Options{RefreshRotation: true, SessionTTL: cfg.SessionTTL, ResetTokenTTL: time.Hour},
	)
	h, err := NewHandler(cfg, Dependencies{
		AuthUsecase:    authUc,
		ProfileUsecase: profileUsecase.NewProfileUsecase(users, cipher, authUc),
		QuestUsecase:   questUsecase.NewQuestUsecase(questRepo.NewGormQuestRepository(db)),
		GuildUsecase:   guildUsecase.NewGuildUsecase(guildRepo.NewGormGuildRepository(db)),
		DeviceRepo:     authRepo.NewDeviceTokenRepository(db),
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h.Router()
}

func fetchCSRF(t *testing.T, r *gin.Engine) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/csrf-token", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("csrf-token status = %d", w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == csrf.CookieName {
			return c
		}
	}
	t.Fatal("no csrf cookie issued")
	return nil
}

func post(r *gin.Engine, path, body string, csrfCookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if csrfCookie != nil {
		req.AddCookie(csrfCookie)
		req.Header.Set(csrf.HeaderName, csrfCookie.Value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRootServesSecurityHeaders(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["message"] != "Hello from a secure Server" {
		t.Fatalf("message = %q", body["message"])
	}
	for _, header := range []string{"Content-Security-Policy", "X-Frame-Options", "Strict-Transport-Security", "X-Content-Type-Options"} {
		if w.Header().Get(header) == "" {
			t.Errorf("missing %s", header)
		}
	}
}

func TestCSRFGuardsUnsafeRequests(t *testing.T) {
	r := newTestRouter(t)
	body := `{"username":"hero","email":"hero@example.com","password":"sw0rdfish"}`

	if w := post(r, "/auth/register", body, nil); w.Code != http.StatusForbidden {
		t.Fatalf("register without token status = %d, want 403", w.Code)
	}

	cookie := fetchCSRF(t, r)
	if w := post(r, "/auth/register", body, cookie); w.Code != http.StatusCreated {
		t.Fatalf("register with token status = %d body = %s", w.Code, w.Body)
	}

	// Exempt paths skip the check.
	if w := post(r, "/auth/logout", "", nil); w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	r := newTestRouter(t)
	cookie := fetchCSRF(t, r)
	body := `{"email":"nobody@example.com","password":"wrong"}`

	for i := 0; i < 5; i++ {
		if w := post(r, "/auth/login", body, cookie); w.Code == http.StatusTooManyRequests {
			t.Fatalf("attempt %d limited early", i+1)
		}
	}
	w := post(r, "/auth/login", body, cookie)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("sixth attempt status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
}

func TestRouteGuardsAndCaching(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		want   int
		cache  string
	}{
		{http.MethodGet, "/quests", http.StatusOK, "public, max-age=300, stale-while-revalidate=30"},
		{http.MethodGet, "/guilds", http.StatusOK, "public, max-age=600"},
		{http.MethodGet, "/health", http.StatusOK, ""},
		{http.MethodGet, "/auth/me", http.StatusUnauthorized, ""},
		{http.MethodGet, "/dashboard", http.StatusUnauthorized, ""},
		{http.MethodGet, "/profile", http.StatusUnauthorized, ""},
		{http.MethodGet, "/protected/admin", http.StatusUnauthorized, ""},
		{http.MethodGet, "/auth/google", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.cache != "" && w.Header().Get("Cache-Control") != tt.cache {
				t.Fatalf("Cache-Control = %q, want %q", w.Header().Get("Cache-Control"), tt.cache)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/quests", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("Allow-Origin = %q", got)
	}
}
