package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec([]byte("super-secret"), time.Hour)

	tok, err := codec.Issue(42, "alice")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := codec.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.Subject != "42" {
		t.Fatalf("subject mismatch: got %q", claims.Subject)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Fatalf("expected iat and exp to be set: %+v", claims)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Fatalf("exp-iat = %v, want 1h", got)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec([]byte("secret"), time.Hour)
	codec.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := codec.Issue(1, "u1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	codec.now = time.Now
	if _, err := codec.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenCodec([]byte("right-secret"), time.Hour).Issue(2, "u2")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = NewTokenCodec([]byte("wrong-secret"), time.Hour).Verify(tok)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for bad signature, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec([]byte("k"), time.Hour)
	for _, tok := range []string{"", "not.a.jwt", "garbage"} {
		if _, err := codec.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q): expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestVerify_RejectsUnsignedAndForeignAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	codec := NewTokenCodec(secret, time.Hour)
	claims := Claims{
		UserID:   3,
		Username: "mallory",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := codec.Verify(none); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("alg=none accepted: %v", err)
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign HS512: %v", err)
	}
	if _, err := codec.Verify(hs512); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("HS512 accepted: %v", err)
	}
}

func TestVerify_RequiresExpiry(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 4, Username: "noexp"}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokenCodec(secret, time.Hour).Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token without exp accepted: %v", err)
	}
}
