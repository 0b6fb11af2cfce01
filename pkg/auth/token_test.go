package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	user := &model.User{ID: 42, Username: "alice", Role: "moderator"}

	raw, err := m.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	p, err := m.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.ID != 42 {
		t.Errorf("ID = %d, want 42", p.ID)
	}
	if p.Username != "alice" {
		t.Errorf("Username = %q, want %q", p.Username, "alice")
	}
	if p.Role != "moderator" {
		t.Errorf("Role = %q, want %q", p.Role, "moderator")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	raw, err := issuer.Issue(&model.User{ID: 1, Username: "alice", Role: "user"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = verifier.Verify(raw)
	assertInvalidToken(t, err)
}

func TestVerify_Expired(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)

	raw, err := m.Issue(&model.User{ID: 1, Username: "alice", Role: "user"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = m.Verify(raw)
	assertInvalidToken(t, err)
}

func TestVerify_Garbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := m.Verify(raw)
		assertInvalidToken(t, err)
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	claims := Claims{UserID: 1, Username: "alice", Role: "admin"}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing unsigned token: %v", err)
	}

	_, err = m.Verify(raw)
	assertInvalidToken(t, err)
}

func assertInvalidToken(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidToken {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeInvalidToken)
	}
}
