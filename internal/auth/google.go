// Package auth runs the optional Google sign-in flow: a loopback oauth2
// authorization-code exchange whose resulting ID token is traded with the
// backend for the stable user id that selects a personal voice model.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const stateTTL = 10 * time.Minute

// ExchangeFunc trades a Google ID token for the backend's user id.
type ExchangeFunc func(ctx context.Context, idToken string) (string, error)

type Google struct {
	cfg      *oauth2.Config
	exchange ExchangeFunc
	onUser   func(userID string)

	mu     sync.Mutex
	states map[string]time.Time
}

// NewGoogle builds the sign-in helper. It returns nil when no client id is
// configured, which disables the feature.
func NewGoogle(clientID, clientSecret, redirectURL string, exchange ExchangeFunc, onUser func(string)) *Google {
	if clientID == "" {
		return nil
	}
	return &Google{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email"},
			Endpoint:     google.Endpoint,
		},
		exchange: exchange,
		onUser:   onUser,
		states:   map[string]time.Time{},
	}
}

// LoginURL returns the Google consent page URL with a fresh state token.
func (g *Google) LoginURL() string {
	state := newState()

	g.mu.Lock()
	g.states[state] = time.Now().Add(stateTTL)
	g.mu.Unlock()

	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// HandleCallback completes the flow: verifies the state token, exchanges
// the authorization code, extracts the ID token, and trades it with the
// backend for a user id.
func (g *Google) HandleCallback(ctx context.Context, state, code string) (string, error) {
	if !g.consumeState(state) {
		return "", errors.New("unknown or expired oauth state")
	}

	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange authorization code: %w", err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return "", errors.New("token response carried no id_token")
	}

	userID, err := g.exchange(ctx, idToken)
	if err != nil {
		return "", err
	}

	if g.onUser != nil {
		g.onUser(userID)
	}
	return userID, nil
}

func (g *Google) consumeState(state string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	expires, ok := g.states[state]
	delete(g.states, state)
	return ok && time.Now().Before(expires)
}

func newState() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
