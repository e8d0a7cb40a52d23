package http

import (
	"net/http"
	"time"
)

const sessionCookieName = "session_id"

// CookieConfig holds the environment-dependent session cookie attributes.
type CookieConfig struct {
	Secure   bool
	SameSite http.SameSite

	// TTL bounds the cookie lifetime to the server-side session TTL.
	TTL time.Duration
}

// setSessionCookie hands the session ID to the client. The cookie is always
// HttpOnly; Secure and SameSite follow the deployment environment.
func setSessionCookie(w http.ResponseWriter, sessionID string, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}

// clearSessionCookie expires the session cookie on the client.
func clearSessionCookie(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}

// sessionIDFromRequest extracts the session ID from the request cookie.
// Returns an empty string when the cookie is absent.
func sessionIDFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
