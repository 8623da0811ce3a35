package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestIssuer(clock *fakeClock) *Issuer {
	return NewIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour, WithClock(clock.now))
}

func TestAccessTokenLifecycle(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(clock)

	tok, err := issuer.IssueAccess("user-1", "Admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clock.t = clock.t.Add(14 * time.Minute)
	claims, err := issuer.Verify(tok, Access)
	if err != nil {
		t.Fatalf("verify before expiry: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "Admin" {
		t.Fatalf("claims = %+v", claims)
	}

	clock.t = clock.t.Add(2 * time.Minute)
	if _, err := issuer.Verify(tok, Access); !errors.Is(err, ErrExpired) {
		t.Fatalf("verify after expiry err = %v, want ErrExpired", err)
	}
}

func TestRefreshTokenLifecycle(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(clock)

	tok, err := issuer.IssueRefresh("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	clock.t = clock.t.Add(6 * 24 * time.Hour)
	claims, err := issuer.Verify(tok, Refresh)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" || claims.ID == "" {
		t.Fatalf("claims = %+v", claims)
	}
	clock.t = clock.t.Add(2 * 24 * time.Hour)
	if _, err := issuer.Verify(tok, Refresh); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
}

func TestRefreshTokensAreUnique(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	issuer := newTestIssuer(clock)
	a, _ := issuer.IssueRefresh("user-1")
	b, _ := issuer.IssueRefresh("user-1")
	if a == b {
		t.Fatal("expected distinct refresh tokens")
	}
}

func TestNamespaceSeparation(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	issuer := newTestIssuer(clock)

	access, _ := issuer.IssueAccess("user-1", "User")
	refresh, _ := issuer.IssueRefresh("user-1")

	if _, err := issuer.Verify(access, Refresh); !errors.Is(err, ErrInvalid) {
		t.Fatalf("access as refresh err = %v, want ErrInvalid", err)
	}
	if _, err := issuer.Verify(refresh, Access); !errors.Is(err, ErrInvalid) {
		t.Fatalf("refresh as access err = %v, want ErrInvalid", err)
	}

	// Same secret on both sides still cannot cross namespaces.
	shared := NewIssuer("same", "same", time.Minute, time.Hour)
	tok, _ := shared.IssueAccess("user-1", "User")
	if _, err := shared.Verify(tok, Refresh); !errors.Is(err, ErrInvalid) {
		t.Fatalf("audience check err = %v, want ErrInvalid", err)
	}
}

func TestVerifyRejectsForgeries(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	issuer := newTestIssuer(clock)

	forged := NewIssuer("attacker", "attacker", time.Minute, time.Hour)
	tok, _ := forged.IssueAccess("user-1", "Admin")
	if _, err := issuer.Verify(tok, Access); !errors.Is(err, ErrInvalid) {
		t.Fatalf("forged err = %v, want ErrInvalid", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := issuer.Verify(unsigned, Access); !errors.Is(err, ErrInvalid) {
		t.Fatalf("alg none err = %v, want ErrInvalid", err)
	}

	for _, garbage := range []string{"", "abc", strings.Repeat("a.", 3)} {
		if _, err := issuer.Verify(garbage, Access); !errors.Is(err, ErrInvalid) {
			t.Fatalf("Verify(%q) err = %v, want ErrInvalid", garbage, err)
		}
	}
}

func TestExpiredForgeryIsInvalid(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	forged := NewIssuer("attacker", "attacker", time.Minute, time.Hour, WithClock(clock.now))
	tok, _ := forged.IssueAccess("user-1", "Admin")

	clock.t = clock.t.Add(time.Hour)
	issuer := newTestIssuer(clock)
	if _, err := issuer.Verify(tok, Access); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}
