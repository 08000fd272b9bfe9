package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestCodec(t *testing.T, ttl time.Duration) *Codec {
	t.Helper()

	c, err := NewCodec("test-secret", ttl)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	return c
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	c := newTestCodec(t, 7*24*time.Hour)

	tok, err := c.Issue("acct-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	got, err := c.Verify(tok)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if got != "acct-123" {
		t.Fatalf("expected acct-123, got %s", got)
	}
}

func TestIssueRejectsEmptyAccountID(t *testing.T) {
	c := newTestCodec(t, time.Hour)

	if _, err := c.Issue(""); err == nil {
		t.Fatal("expected error for empty account id")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	base := time.Now()
	c := newTestCodec(t, 7*24*time.Hour)
	c.WithClock(func() time.Time { return base })

	tok, err := c.Issue("acct-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Still valid just inside the window.
	c.WithClock(func() time.Time { return base.Add(7*24*time.Hour - time.Minute) })
	if _, err := c.Verify(tok); err != nil {
		t.Fatalf("expected token valid inside window, got %v", err)
	}

	// Expired just past it.
	c.WithClock(func() time.Time { return base.Add(7*24*time.Hour + time.Minute) })
	if _, err := c.Verify(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyTamperedToken(t *testing.T) {
	c := newTestCodec(t, time.Hour)

	tok, err := c.Issue("acct-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Flip a character in the payload segment.
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 JWT segments, got %d", len(parts))
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := c.Verify(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	c := newTestCodec(t, time.Hour)
	other, err := NewCodec("another-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	tok, err := other.Issue("acct-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := c.Verify(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	c := newTestCodec(t, time.Hour)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := c.Verify(tok); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid for %q, got %v", tok, err)
		}
	}
}

func TestNewCodecValidation(t *testing.T) {
	if _, err := NewCodec("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewCodec("secret", 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
