package csrf

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := New([]string{"/auth/logout"}, false)
	r := gin.New()
	r.Use(g.Middleware())
	r.GET("/auth/csrf-token", g.Handler)
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.POST("/profile/update", ok)
	r.POST("/auth/logout", ok)
	r.GET("/profile", ok)
	return r
}

func fetchToken(t *testing.T, r *gin.Engine) (string, *http.Cookie) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/csrf-token", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("csrf-token status = %d", w.Code)
	}
	var body struct {
		Token string `json:"csrf_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("cookies = %v", cookies)
	}
	if cookies[0].Value != body.Token {
		t.Fatal("cookie and body token differ")
	}
	return body.Token, cookies[0]
}

func TestGuard(t *testing.T) {
	r := newTestRouter()
	tok, cookie := fetchToken(t, r)

	tests := []struct {
		name   string
		method string
		path   string
		cookie bool
		header string
		want   int
	}{
		{"safe method", http.MethodGet, "/profile", false, "", http.StatusOK},
		{"exempt path", http.MethodPost, "/auth/logout", false, "", http.StatusOK},
		{"missing everything", http.MethodPost, "/profile/update", false, "", http.StatusForbidden},
		{"cookie without header", http.MethodPost, "/profile/update", true, "", http.StatusForbidden},
		{"header without cookie", http.MethodPost, "/profile/update", false, tok, http.StatusForbidden},
		{"mismatch", http.MethodPost, "/profile/update", true, "other", http.StatusForbidden},
		{"match", http.MethodPost, "/profile/update", true, tok, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.cookie {
				req.AddCookie(cookie)
			}
			if tt.header != "" {
				req.Header.Set(HeaderName, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestIssueReusesExistingCookie(t *testing.T) {
	r := newTestRouter()
	tok, cookie := fetchToken(t, r)

	req := httptest.NewRequest(http.MethodGet, "/auth/csrf-token", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body struct {
		Token string `json:"csrf_token"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Token != tok {
		t.Fatalf("token = %q, want %q", body.Token, tok)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatal("expected no new cookie")
	}
}
