package clientsession

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

func TestNewRequiresSecret(t *testing.T) {
	if _, err := New("  ", time.Hour, nil); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestIssueAndValidate(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	tokens, err := New("test-secret", time.Hour, clock)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	signed, issued, err := tokens.Issue("client-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !issued.ExpiresAt.Equal(issued.IssuedAt.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", issued.ExpiresAt)
	}

	claims, err := tokens.Validate(signed)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "client-1" {
		t.Fatalf("subject = %q", claims.Subject)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	tokens, _ := New("test-secret", time.Minute, clock)

	signed, _, err := tokens.Issue("client-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	clock.Advance(2 * time.Minute)
	if _, err := tokens.Validate(signed); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	a, _ := New("secret-a", time.Hour, nil)
	b, _ := New("secret-b", time.Hour, nil)

	signed, _, err := a.Issue("client-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := b.Validate(signed); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestValidateRejectsNoneAlg(t *testing.T) {
	tokens, _ := New("test-secret", time.Hour, nil)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "client-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := tokens.Validate(raw); err == nil {
		t.Fatal("expected alg=none token to be rejected")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	tokens, _ := New("test-secret", time.Hour, nil)
	for _, raw := range []string{"", "abc", "a.b.c"} {
		if _, err := tokens.Validate(raw); err == nil {
			t.Errorf("expected %q to be rejected", raw)
		}
	}
}
