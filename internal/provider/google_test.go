package provider

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/mobydigital/login-service/internal/domain"
)

const (
	testIssuer   = "https://accounts.example.com"
	testClientID = "login-service-client"
)

func newExchangeClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &oauth2.Config{
		ClientID:     testClientID,
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/api/auth/google/callback",
		Endpoint: oauth2.Endpoint{
			TokenURL:  server.URL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	return newClient(cfg, nil, nil)
}

func TestExchange_Success(t *testing.T) {
	client := newExchangeClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "auth-code", r.Form.Get("code"))
		assert.Equal(t, "http://localhost:8080/api/auth/google/callback", r.Form.Get("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "at-123",
			"refresh_token": "rt-456",
			"id_token": "idt-789",
			"token_type": "Bearer",
			"expires_in": 3600
		}`))
	})

	bundle, err := client.Exchange(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "at-123", bundle.AccessToken)
	assert.Equal(t, "rt-456", bundle.RefreshToken)
	assert.Equal(t, "idt-789", bundle.IDToken)
}

func TestExchange_EmptyCode(t *testing.T) {
	client := newExchangeClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("token endpoint must not be called for an empty code")
	})

	_, err := client.Exchange(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestExchange_MissingAccessToken(t *testing.T) {
	client := newExchangeClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token_type": "Bearer", "id_token": "idt-789"}`))
	})

	_, err := client.Exchange(context.Background(), "auth-code")
	require.ErrorIs(t, err, domain.ErrTokenNotReceived)
}

func TestExchange_ProviderError(t *testing.T) {
	client := newExchangeClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
	})

	_, err := client.Exchange(context.Background(), "auth-code")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrTokenNotReceived)
	assert.Contains(t, err.Error(), "exchange authorization code")
}

func TestExchange_HonorsConfiguredTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "at-123", "token_type": "Bearer"}`))
	}))
	t.Cleanup(server.Close)

	cfg := &oauth2.Config{
		ClientID:     testClientID,
		ClientSecret: "secret",
		Endpoint: oauth2.Endpoint{
			TokenURL:  server.URL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	client := newClient(cfg, nil, &http.Client{Timeout: 50 * time.Millisecond})

	_, err := client.Exchange(context.Background(), "auth-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exchange authorization code")
}

func TestExchange_WithoutIDToken(t *testing.T) {
	client := newExchangeClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "at-123", "token_type": "Bearer"}`))
	})

	bundle, err := client.Exchange(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "at-123", bundle.AccessToken)
	assert.Empty(t, bundle.IDToken)
}

// verifyFixture holds a signing key and a matching static-keyset client.
type verifyFixture struct {
	key    *rsa.PrivateKey
	client *Client
}

func newVerifyFixture(t *testing.T) *verifyFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	verifier := oidc.NewVerifier(testIssuer,
		&oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}},
		&oidc.Config{ClientID: testClientID},
	)
	return &verifyFixture{key: key, client: newClient(nil, verifier, nil)}
}

func (f *verifyFixture) signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	raw, err := token.SignedString(f.key)
	require.NoError(t, err)
	return raw
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            testIssuer,
		"aud":            testClientID,
		"sub":            "google-user-1",
		"iat":            time.Now().Unix(),
		"exp":            time.Now().Add(time.Hour).Unix(),
		"email":          "ana@moby.com",
		"email_verified": true,
		"given_name":     "Ana",
		"family_name":    "Garcia",
		"picture":        "https://cdn.example.com/ana.png",
	}
}

func TestVerify_Success(t *testing.T) {
	f := newVerifyFixture(t)
	raw := f.signToken(t, baseClaims())

	claims, err := f.client.Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "ana@moby.com", claims.Email)
	assert.True(t, claims.EmailVerified)
	assert.Equal(t, "Ana", claims.GivenName)
	assert.Equal(t, "Garcia", claims.FamilyName)
	assert.Equal(t, "https://cdn.example.com/ana.png", claims.PictureURL)
}

func TestVerify_EmptyToken(t *testing.T) {
	f := newVerifyFixture(t)

	_, err := f.client.Verify(context.Background(), "")
	require.Error(t, err)
}

func TestVerify_WrongAudience(t *testing.T) {
	f := newVerifyFixture(t)
	claims := baseClaims()
	claims["aud"] = "some-other-client"
	raw := f.signToken(t, claims)

	_, err := f.client.Verify(context.Background(), raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verify ID token")
}

func TestVerify_ExpiredToken(t *testing.T) {
	f := newVerifyFixture(t)
	claims := baseClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	raw := f.signToken(t, claims)

	_, err := f.client.Verify(context.Background(), raw)
	require.Error(t, err)
}

func TestVerify_WrongSigningKey(t *testing.T) {
	f := newVerifyFixture(t)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, baseClaims())
	raw, err := token.SignedString(otherKey)
	require.NoError(t, err)

	_, err = f.client.Verify(context.Background(), raw)
	require.Error(t, err)
}

func TestVerify_UnverifiedEmailClaimPreserved(t *testing.T) {
	f := newVerifyFixture(t)
	claims := baseClaims()
	claims["email_verified"] = false
	raw := f.signToken(t, claims)

	got, err := f.client.Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.False(t, got.EmailVerified)
}
