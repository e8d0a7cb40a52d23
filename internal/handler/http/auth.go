package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mobydigital/login-service/internal/domain"
	apperrors "github.com/mobydigital/login-service/pkg/errors"
)

// LoginFlow is the orchestration surface the HTTP layer depends on.
type LoginFlow interface {
	Login(ctx context.Context, code string) (*domain.Session, error)
	CurrentUser(ctx context.Context, sessionID string) (domain.UserProfile, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandler handles the authentication HTTP endpoints.
type AuthHandler struct {
	service      LoginFlow
	logger       *slog.Logger
	redirectBase string
	cookies      CookieConfig
}

// NewAuthHandler creates the authentication HTTP handler. redirectBase is the
// frontend base URL that post-login redirects point at.
func NewAuthHandler(svc LoginFlow, logger *slog.Logger, redirectBase string, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{
		service:      svc,
		logger:       logger,
		redirectBase: redirectBase,
		cookies:      cookies,
	}
}

// --- Response envelope ---

type response struct {
	Data  any            `json:"data,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Handlers ---

// Callback handles GET /api/auth/google/callback.
//
// The provider's own error parameter short-circuits to a 400 before any
// exchange begins. Flow failures become a redirect back to the frontend login
// page carrying a coarse classification; the response never leaks internal
// error detail.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if providerErr := query.Get("error"); providerErr != "" {
		h.logger.WarnContext(r.Context(), "provider returned error on callback",
			slog.String("provider_error", providerErr),
		)
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "PROVIDER_ERROR", Message: "authentication was not completed"},
		})
		return
	}

	code := query.Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "code query parameter is required"},
		})
		return
	}

	// The state parameter is issued by the frontend; it is logged for
	// diagnosis but carries no server-side binding to validate against.
	if state := query.Get("state"); state != "" {
		h.logger.DebugContext(r.Context(), "callback state received",
			slog.String("state", state),
		)
	}

	session, err := h.service.Login(r.Context(), code)
	if err != nil {
		http.Redirect(w, r, failureRedirect(h.redirectBase, err), http.StatusFound)
		return
	}

	setSessionCookie(w, session.ID, h.cookies)
	http.Redirect(w, r, h.redirectBase+"/home?auth=success", http.StatusFound)
}

// Me handles GET /api/auth/me. Without a valid session it answers 403.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromRequest(r)

	profile, err := h.service.CurrentUser(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrUnauthorized) {
			writeJSON(w, http.StatusForbidden, response{
				Error: &errorResponse{Code: "FORBIDDEN", Message: "no active session"},
			})
			return
		}
		h.writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: profile})
}

// Logout handles POST /api/auth/logout. Logging out without an active
// session answers 404.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromRequest(r)

	if err := h.service.Logout(r.Context(), sessionID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, response{
				Error: &errorResponse{Code: "NOT_FOUND", Message: "no active session"},
			})
			return
		}
		h.writeInternalError(w, r, err)
		return
	}

	clearSessionCookie(w, h.cookies)
	writeJSON(w, http.StatusOK, response{Data: map[string]string{"status": "logged_out"}})
}

// failureRedirect maps a login failure onto exactly one frontend redirect.
// Only the coarse classification crosses the boundary.
func failureRedirect(base string, err error) string {
	var flowErr *domain.FlowError
	if errors.As(err, &flowErr) {
		switch flowErr.Kind {
		case domain.FlowTokenNotReceived:
			return base + "/login?auth=error&message=token_not_received"
		case domain.FlowInvalidEmail:
			return base + "/login?auth=error&type=invalid_email"
		}
	}
	return base + "/login?auth=error&type=server_error"
}

func (h *AuthHandler) writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "internal error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
	writeJSON(w, http.StatusInternalServerError, response{
		Error: &errorResponse{Code: "INTERNAL_ERROR", Message: "an internal error occurred"},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}
