package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestNewGoogleDisabledWithoutClientID(t *testing.T) {
	if g := NewGoogle("", "secret", "http://127.0.0.1:8080/cb", nil, nil); g != nil {
		t.Fatal("expected nil helper without a client id")
	}
}

func TestLoginURLCarriesState(t *testing.T) {
	g := NewGoogle("client-id", "secret", "http://127.0.0.1:8080/cb", nil, nil)

	loginURL := g.LoginURL()
	parsed, err := url.Parse(loginURL)
	if err != nil {
		t.Fatalf("parse login url: %v", err)
	}

	state := parsed.Query().Get("state")
	if state == "" {
		t.Fatal("expected a state parameter")
	}
	if !g.consumeState(state) {
		t.Fatal("expected state to be registered")
	}
	if g.consumeState(state) {
		t.Fatal("expected state to be single-use")
	}
}

func TestHandleCallbackRejectsUnknownState(t *testing.T) {
	g := NewGoogle("client-id", "secret", "http://127.0.0.1:8080/cb", nil, nil)

	if _, err := g.HandleCallback(context.Background(), "bogus", "code"); err == nil {
		t.Fatal("expected unknown state to be rejected")
	}
}

func TestHandleCallbackExchangesIDToken(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse token form: %v", err)
		}
		if got := r.FormValue("code"); got != "auth-code" {
			t.Errorf("unexpected code %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at",
			"token_type":   "Bearer",
			"id_token":     "jwt-id-token",
		})
	}))
	defer tokenSrv.Close()

	var sawToken string
	var sawUser string
	g := NewGoogle("client-id", "secret", "http://127.0.0.1:8080/cb",
		func(_ context.Context, idToken string) (string, error) {
			sawToken = idToken
			return "sub-42", nil
		},
		func(userID string) { sawUser = userID },
	)
	g.cfg.Endpoint = oauth2.Endpoint{TokenURL: tokenSrv.URL + "/token"}

	loginURL := g.LoginURL()
	state := mustQueryParam(t, loginURL, "state")

	userID, err := g.HandleCallback(context.Background(), state, "auth-code")
	if err != nil {
		t.Fatalf("HandleCallback failed: %v", err)
	}
	if userID != "sub-42" {
		t.Fatalf("unexpected user id %q", userID)
	}
	if sawToken != "jwt-id-token" {
		t.Fatalf("expected id_token forwarded to backend, got %q", sawToken)
	}
	if sawUser != "sub-42" {
		t.Fatalf("expected onUser hook to fire, got %q", sawUser)
	}
}

func TestHandleCallbackMissingIDToken(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "at", "token_type": "Bearer"})
	}))
	defer tokenSrv.Close()

	g := NewGoogle("client-id", "secret", "http://127.0.0.1:8080/cb", nil, nil)
	g.cfg.Endpoint = oauth2.Endpoint{TokenURL: tokenSrv.URL + "/token"}

	state := mustQueryParam(t, g.LoginURL(), "state")
	_, err := g.HandleCallback(context.Background(), state, "auth-code")
	if err == nil || !strings.Contains(err.Error(), "id_token") {
		t.Fatalf("expected missing id_token error, got %v", err)
	}
}

func mustQueryParam(t *testing.T, rawURL, key string) string {
	t.Helper()
	parsed, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	value := parsed.Query().Get(key)
	if value == "" {
		t.Fatalf("expected %q parameter in %s", key, rawURL)
	}
	return value
}
