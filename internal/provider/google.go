// Package provider implements the Google OAuth2/OIDC client used to exchange
// authorization codes and verify ID tokens.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/mobydigital/login-service/internal/domain"
)

// Config holds the Google OAuth client settings.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// Issuer is the OIDC issuer URL, discovered via its .well-known endpoint.
	Issuer string

	// Timeout bounds each outbound provider call: discovery, JWKS fetches,
	// and the token exchange. Zero means no client-side bound.
	Timeout time.Duration
}

// Client exchanges authorization codes for tokens and verifies ID tokens
// against the provider's signing keys.
//
// The verifier is built once at construction with the real client ID as the
// expected audience. Safe for concurrent use.
type Client struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	httpClient   *http.Client
}

// New discovers the provider configuration from the issuer and builds the
// OAuth2 config and ID token verifier. All provider traffic, including the
// JWKS fetches behind the verifier, goes through an http.Client bounded by
// cfg.Timeout.
func New(ctx context.Context, cfg Config) (*Client, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	oidcProvider, err := oidc.NewProvider(oidc.ClientContext(ctx, httpClient), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("discover OIDC provider %s: %w", cfg.Issuer, err)
	}

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	verifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: cfg.ClientID,
	})

	return newClient(oauth2Config, verifier, httpClient), nil
}

func newClient(oauth2Config *oauth2.Config, verifier *oidc.IDTokenVerifier, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		oauth2Config: oauth2Config,
		verifier:     verifier,
		httpClient:   httpClient,
	}
}

// Exchange trades an authorization code for a token bundle at the provider's
// token endpoint. The redirect URI sent is the one registered at construction.
//
// Some provider error responses arrive with HTTP success and an empty token
// field; that case is reported as domain.ErrTokenNotReceived so callers can
// distinguish it from transport failures.
func (c *Client) Exchange(ctx context.Context, code string) (domain.TokenBundle, error) {
	if code == "" {
		return domain.TokenBundle{}, fmt.Errorf("authorization code is empty")
	}

	// x/oauth2 picks its transport up from the context.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.oauth2Config.Exchange(ctx, code)
	if err != nil {
		// x/oauth2 turns a 2xx response without an access token into this
		// specific error; everything else is a real exchange failure.
		if strings.Contains(err.Error(), "missing access_token") {
			return domain.TokenBundle{}, domain.ErrTokenNotReceived
		}
		return domain.TokenBundle{}, fmt.Errorf("exchange authorization code: %w", err)
	}

	bundle := domain.TokenBundle{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if raw, ok := token.Extra("id_token").(string); ok {
		bundle.IDToken = raw
	}
	return bundle, nil
}

// Verify validates the ID token's signature, audience, and expiry, then
// extracts the identity claims.
func (c *Client) Verify(ctx context.Context, rawIDToken string) (domain.IdentityClaims, error) {
	if rawIDToken == "" {
		return domain.IdentityClaims{}, fmt.Errorf("ID token is empty")
	}

	idToken, err := c.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return domain.IdentityClaims{}, fmt.Errorf("verify ID token: %w", err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return domain.IdentityClaims{}, fmt.Errorf("parse ID token claims: %w", err)
	}

	return domain.IdentityClaims{
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		GivenName:     claims.GivenName,
		FamilyName:    claims.FamilyName,
		PictureURL:    claims.Picture,
	}, nil
}
