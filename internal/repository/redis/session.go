package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mobydigital/login-service/internal/domain"
	apperrors "github.com/mobydigital/login-service/pkg/errors"
)

const keyPrefix = "session:"

// SessionRepository implements repository.SessionRepository using Redis.
// Expiry is enforced by the key TTL, so an expired session simply disappears.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository creates a Redis-backed session repository.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

// Save persists a session with the configured TTL and stamps its expiry.
func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	key := keyPrefix + session.ID
	session.ExpiresAt = time.Now().UTC().Add(r.ttl)

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID.
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	key := keyPrefix + sessionID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("session", sessionID)
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &session, nil
}

// Delete removes a session by ID. The deleted-key count distinguishes a real
// logout from a logout against a session that never existed or already expired.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	key := keyPrefix + sessionID

	deleted, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	if deleted == 0 {
		return apperrors.NotFound("session", sessionID)
	}

	return nil
}
