package oauth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	ggoogle "golang.org/x/oauth2/google"
)

const (
	googleIssuer  = "https://accounts.google.com"
	googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

type GoogleOAuth struct {
	cfg      *oauth2.Config
	verifier *oidc.IDTokenVerifier
	stateKey []byte
}

// NewGoogle builds the code-flow client. Google's signing keys are fetched
// lazily on first verification, so construction does no network I/O.
func NewGoogle(ctx context.Context, clientID, clientSecret, redirectURI, stateSecret string) *GoogleOAuth {
	keys := oidc.NewRemoteKeySet(ctx, googleJWKSURL)
	return &GoogleOAuth{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
			Endpoint:     ggoogle.Endpoint,
		},
		verifier: oidc.NewVerifier(googleIssuer, keys, &oidc.Config{ClientID: clientID}),
		stateKey: []byte(stateSecret),
	}
}

// NewState returns a random HMAC-signed state value for CSRF protection.
func (g *GoogleOAuth) NewState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return g.MakeState(base64.RawURLEncoding.EncodeToString(b)), nil
}

func (g *GoogleOAuth) MakeState(raw string) string {
	mac := hmac.New(sha256.New, g.stateKey)
	mac.Write([]byte(raw))
	return raw + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (g *GoogleOAuth) VerifyState(got string) bool {
	raw, sig, ok := strings.Cut(got, ".")
	if !ok || raw == "" {
		return false
	}
	sigb, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, g.stateKey)
	mac.Write([]byte(raw))
	return hmac.Equal(mac.Sum(nil), sigb)
}

func (g *GoogleOAuth) AuthURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

type GoogleUser struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// ExchangeAndVerify trades an authorization code for tokens and verifies the returned id_token.
func (g *GoogleOAuth) ExchangeAndVerify(ctx context.Context, code string) (*GoogleUser, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("no id_token")
	}
	return g.VerifyIDToken(ctx, rawIDToken)
}

// VerifyIDToken checks signature, issuer, audience and expiry of a Google
// id_token and returns its identity claims.
func (g *GoogleOAuth) VerifyIDToken(ctx context.Context, raw string) (*GoogleUser, error) {
	idt, err := g.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}
	var u GoogleUser
	if err := idt.Claims(&u); err != nil {
		return nil, fmt.Errorf("parse id_token claims: %w", err)
	}
	if u.Email == "" || u.Sub == "" {
		return nil, errors.New("missing email/sub")
	}
	if !u.EmailVerified {
		return nil, errors.New("email not verified")
	}
	return &u, nil
}
