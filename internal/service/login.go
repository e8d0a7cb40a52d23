package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mobydigital/login-service/internal/domain"
	"github.com/mobydigital/login-service/internal/repository"
	apperrors "github.com/mobydigital/login-service/pkg/errors"
)

var loginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Total number of login attempts by outcome",
	},
	[]string{"result"},
)

// TokenExchanger exchanges an authorization code for a token bundle.
type TokenExchanger interface {
	Exchange(ctx context.Context, code string) (domain.TokenBundle, error)
}

// IdentityVerifier validates an ID token and extracts its claims.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (domain.IdentityClaims, error)
}

// DirectoryClient looks up and creates directory records.
type DirectoryClient interface {
	FindByEmail(ctx context.Context, email string) (domain.DirectoryRecord, error)
	Migrate(ctx context.Context, payload domain.MigrationPayload) (domain.DirectoryRecord, error)
}

// RosterClient checks active membership in the legacy roster.
type RosterClient interface {
	IsActive(ctx context.Context, email string) (bool, error)
}

// EventPublisher publishes login domain events.
type EventPublisher interface {
	PublishUserLoggedIn(ctx context.Context, profile domain.UserProfile, sessionID string) error
	PublishUserMigrated(ctx context.Context, email, recordID string) error
}

// LoginService orchestrates the login flow: code exchange, token
// verification, domain policy, directory resolution, and session creation.
type LoginService struct {
	exchanger     TokenExchanger
	verifier      IdentityVerifier
	directory     DirectoryClient
	roster        RosterClient
	sessions      repository.SessionRepository
	events        EventPublisher
	logger        *slog.Logger
	allowedDomain string
}

// NewLoginService creates the login orchestration service.
func NewLoginService(
	exchanger TokenExchanger,
	verifier IdentityVerifier,
	directory DirectoryClient,
	roster RosterClient,
	sessions repository.SessionRepository,
	events EventPublisher,
	logger *slog.Logger,
	allowedDomain string,
) *LoginService {
	return &LoginService{
		exchanger:     exchanger,
		verifier:      verifier,
		directory:     directory,
		roster:        roster,
		sessions:      sessions,
		events:        events,
		logger:        logger,
		allowedDomain: allowedDomain,
	}
}

// Login runs the authentication flow for an authorization code and returns
// the established session. The flow is strictly linear; the first failing
// stage aborts the attempt with a classified FlowError and no session is
// created.
func (s *LoginService) Login(ctx context.Context, code string) (*domain.Session, error) {
	bundle, err := s.exchanger.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotReceived) {
			return nil, s.fail(ctx, domain.FlowTokenNotReceived, "exchanging", err, "")
		}
		return nil, s.fail(ctx, domain.FlowProviderError, "exchanging", err, "")
	}
	if bundle.AccessToken == "" {
		return nil, s.fail(ctx, domain.FlowTokenNotReceived, "exchanging", domain.ErrTokenNotReceived, "")
	}

	claims, err := s.verifier.Verify(ctx, bundle.IDToken)
	if err != nil {
		return nil, s.fail(ctx, domain.FlowInvalidToken, "verifying", err, "")
	}

	if err := domain.CheckDomainPolicy(claims, s.allowedDomain); err != nil {
		return nil, s.fail(ctx, domain.FlowInvalidEmail, "policy", err, claims.Email)
	}

	profile, err := s.resolveProfile(ctx, claims)
	if err != nil {
		var flowErr *domain.FlowError
		if errors.As(err, &flowErr) {
			loginAttemptsTotal.WithLabelValues(string(flowErr.Kind)).Inc()
			s.logFailure(ctx, flowErr, claims.Email)
			return nil, flowErr
		}
		return nil, s.fail(ctx, domain.FlowServerError, "resolving", err, claims.Email)
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		Tokens:    bundle,
		Profile:   profile,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, s.fail(ctx, domain.FlowServerError, "session", err, claims.Email)
	}

	// Event publishing is best effort; a broker outage must not fail a login.
	if err := s.events.PublishUserLoggedIn(ctx, profile, session.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to publish login event",
			slog.String("email", profile.Email),
			slog.String("error", err.Error()),
		)
	}

	loginAttemptsTotal.WithLabelValues("success").Inc()
	s.logger.InfoContext(ctx, "login established",
		slog.String("email", profile.Email),
		slog.String("session_id", session.ID),
	)

	return session, nil
}

// resolveProfile finds the user in the directory, falling back to the legacy
// roster gate and migration for first-time logins. The directory is
// authoritative once a record exists; the roster is consulted only on a
// directory miss and never again after migration succeeds.
func (s *LoginService) resolveProfile(ctx context.Context, claims domain.IdentityClaims) (domain.UserProfile, error) {
	record, err := s.directory.FindByEmail(ctx, claims.Email)
	if err == nil {
		return record.ToProfile(), nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return domain.UserProfile{}, domain.NewFlowError(domain.FlowServerError, "resolving",
			fmt.Errorf("directory lookup: %w", err))
	}

	active, err := s.roster.IsActive(ctx, claims.Email)
	if err != nil {
		return domain.UserProfile{}, domain.NewFlowError(domain.FlowServerError, "resolving",
			fmt.Errorf("roster check: %w", err))
	}
	if !active {
		return domain.UserProfile{}, domain.NewFlowError(domain.FlowInvalidEmail, "resolving",
			fmt.Errorf("email %s is not enabled in the active roster", claims.Email))
	}

	migrated, err := s.directory.Migrate(ctx, domain.NewMigrationPayload(claims))
	if err != nil {
		return domain.UserProfile{}, domain.NewFlowError(domain.FlowServerError, "resolving",
			fmt.Errorf("migrate legacy user: %w", err))
	}

	if err := s.events.PublishUserMigrated(ctx, claims.Email, migrated.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to publish migration event",
			slog.String("email", claims.Email),
			slog.String("error", err.Error()),
		)
	}

	// A freshly migrated record may echo back with sparse fields; the
	// verified claims are the only other source for them.
	profile := migrated.ToProfile()
	if profile.Name == "" {
		profile.Name = claims.FullName()
	}
	if profile.Email == "" {
		profile.Email = claims.Email
	}
	if profile.ProfilePictureURL == "" {
		profile.ProfilePictureURL = claims.PictureURL
	}
	return profile, nil
}

// CurrentUser returns the profile stored in the session. It reads only what
// was written at login and never touches the directory or provider.
func (s *LoginService) CurrentUser(ctx context.Context, sessionID string) (domain.UserProfile, error) {
	if sessionID == "" {
		return domain.UserProfile{}, apperrors.Unauthorized("no session")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.UserProfile{}, err
	}
	return session.Profile, nil
}

// Logout invalidates the session. Logging out a session that does not exist
// reports not-found rather than succeeding silently.
func (s *LoginService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.NotFound("session", "")
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "session invalidated",
		slog.String("session_id", sessionID),
	)
	return nil
}

func (s *LoginService) fail(ctx context.Context, kind domain.FlowKind, stage string, err error, email string) *domain.FlowError {
	flowErr := domain.NewFlowError(kind, stage, err)
	loginAttemptsTotal.WithLabelValues(string(kind)).Inc()
	s.logFailure(ctx, flowErr, email)
	return flowErr
}

func (s *LoginService) logFailure(ctx context.Context, flowErr *domain.FlowError, email string) {
	attrs := []any{
		slog.String("stage", flowErr.Stage),
		slog.String("kind", string(flowErr.Kind)),
		slog.String("error", flowErr.Error()),
	}
	if email != "" {
		attrs = append(attrs, slog.String("email", email))
	}
	s.logger.WarnContext(ctx, "login attempt failed", attrs...)
}
