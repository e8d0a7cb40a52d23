package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mobydigital/login-service/internal/domain"
	pkgkafka "github.com/mobydigital/login-service/pkg/kafka"
)

// Kafka topic constants for login domain events.
const (
	TopicUserLoggedIn = "intranet.user.logged_in"
	TopicUserMigrated = "intranet.user.migrated"
)

// Aggregate type constant.
const AggregateTypeUser = "user"

// Source identifier for events originating from the login service.
const SourceLoginService = "login-service"

// UserLoggedInData is the payload for a user.logged_in event.
type UserLoggedInData struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	SessionID string `json:"session_id"`
}

// UserMigratedData is the payload for a user.migrated event.
type UserMigratedData struct {
	Email    string `json:"email"`
	RecordID string `json:"record_id"`
}

// Producer publishes login domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the login service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserLoggedIn publishes a user.logged_in event.
func (p *Producer) PublishUserLoggedIn(ctx context.Context, profile domain.UserProfile, sessionID string) error {
	data := UserLoggedInData{
		Email:     profile.Email,
		Name:      profile.Name,
		SessionID: sessionID,
	}

	event, err := pkgkafka.NewEvent(TopicUserLoggedIn, profile.Email, AggregateTypeUser, SourceLoginService, data)
	if err != nil {
		return fmt.Errorf("create user.logged_in event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserLoggedIn, event); err != nil {
		return fmt.Errorf("publish user.logged_in event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.logged_in",
		slog.String("email", profile.Email),
	)
	return nil
}

// PublishUserMigrated publishes a user.migrated event.
func (p *Producer) PublishUserMigrated(ctx context.Context, email, recordID string) error {
	data := UserMigratedData{
		Email:    email,
		RecordID: recordID,
	}

	event, err := pkgkafka.NewEvent(TopicUserMigrated, email, AggregateTypeUser, SourceLoginService, data)
	if err != nil {
		return fmt.Errorf("create user.migrated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserMigrated, event); err != nil {
		return fmt.Errorf("publish user.migrated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.migrated",
		slog.String("email", email),
		slog.String("record_id", recordID),
	)
	return nil
}
