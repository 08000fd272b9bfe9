package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/altonlabs/authd/internal/token"
)

func newTestIssuer(t *testing.T, hardened bool) *Issuer {
	t.Helper()

	codec, err := token.NewCodec("test-secret", 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	return NewIssuer(codec, 7*24*time.Hour, hardened)
}

func issuedCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("expected session cookie")
	return nil
}

func TestIssueSetsCookie(t *testing.T) {
	issuer := newTestIssuer(t, false)
	w := httptest.NewRecorder()

	tok, err := issuer.Issue(w, "acct-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if tok == "" {
		t.Fatal("expected token returned")
	}

	c := issuedCookie(t, w)
	if c.Value != tok {
		t.Fatal("cookie value differs from returned token")
	}
	if !c.HttpOnly {
		t.Fatal("expected HttpOnly cookie")
	}
	if c.Secure {
		t.Fatal("expected non-Secure cookie outside hardened mode")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("expected SameSite=Lax, got %v", c.SameSite)
	}
	if c.Path != "/" {
		t.Fatalf("expected path /, got %s", c.Path)
	}
	if c.MaxAge != int((7 * 24 * time.Hour).Seconds()) {
		t.Fatalf("expected 7d max-age, got %d", c.MaxAge)
	}
}

func TestIssueHardenedCookie(t *testing.T) {
	issuer := newTestIssuer(t, true)
	w := httptest.NewRecorder()

	if _, err := issuer.Issue(w, "acct-123"); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	c := issuedCookie(t, w)
	if !c.Secure {
		t.Fatal("expected Secure cookie in hardened mode")
	}
	if c.SameSite != http.SameSiteNoneMode {
		t.Fatalf("expected SameSite=None, got %v", c.SameSite)
	}
}

func TestClear(t *testing.T) {
	issuer := newTestIssuer(t, false)
	w := httptest.NewRecorder()

	issuer.Clear(w)

	c := issuedCookie(t, w)
	if c.Value != "" {
		t.Fatalf("expected empty cookie value, got %q", c.Value)
	}
	if c.MaxAge != -1 {
		t.Fatalf("expected MaxAge -1, got %d", c.MaxAge)
	}
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := TokenFromRequest(req); got != "" {
		t.Fatalf("expected empty token for missing cookie, got %q", got)
	}

	req.AddCookie(&http.Cookie{Name: CookieName, Value: "tok-value"})
	if got := TokenFromRequest(req); got != "tok-value" {
		t.Fatalf("expected tok-value, got %q", got)
	}
}
