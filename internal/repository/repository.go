package repository

import (
	"context"

	"github.com/mobydigital/login-service/internal/domain"
)

// SessionRepository defines the interface for session persistence operations.
type SessionRepository interface {
	// Save persists a session under its ID with the store's TTL.
	Save(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by its ID. A missing or expired session is
	// reported as a not-found error.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes a session by its ID. Deleting a session that does not
	// exist is reported as not-found, not as a failure.
	Delete(ctx context.Context, sessionID string) error
}
