package password

import (
	"errors"
	"strings"
	"testing"
)

var testParams = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(testParams)
	for _, pw := range []string{"hunter22", "", "pässwörd with spaces", strings.Repeat("x", 200)} {
		digest, err := h.Hash(pw)
		if err != nil {
			t.Fatalf("hash %q: %v", pw, err)
		}
		ok, err := h.Verify(digest, pw)
		if err != nil || !ok {
			t.Fatalf("verify %q = %v, %v; want true", pw, ok, err)
		}
		ok, err = h.Verify(digest, pw+"!")
		if err != nil || ok {
			t.Fatalf("verify wrong password = %v, %v; want false", ok, err)
		}
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(testParams)
	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Fatal("expected distinct digests for identical input")
	}
	if !strings.HasPrefix(a, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected encoding %q", a)
	}
}

func TestVerifyUsesEmbeddedParams(t *testing.T) {
	digest, err := NewHasher(testParams).Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	ok, err := NewHasher(DefaultParams).Verify(digest, "secret")
	if err != nil || !ok {
		t.Fatalf("verify with other hasher = %v, %v", ok, err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	h := NewHasher(testParams)
	for _, digest := range []string{
		"",
		"GOOGLE_OAUTH",
		"$2a$10$abcdefghijklmnopqrstuv",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5",
	} {
		ok, err := h.Verify(digest, "anything")
		if ok {
			t.Fatalf("verify %q returned true", digest)
		}
		if !errors.Is(err, ErrMalformedHash) {
			t.Fatalf("verify %q err = %v, want ErrMalformedHash", digest, err)
		}
	}
}
