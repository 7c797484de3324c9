// Package events publishes user lifecycle events to a message broker.
// Backends exist for RabbitMQ and Google Cloud Pub/Sub; the service runs
// without a broker when none is configured.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/melo-app/accounts/types"
)

// ChannelUserEvents is the queue/topic user events are published to.
const ChannelUserEvents = "user-events"

// Event types.
const (
	TypeUserCreated = "user.created"
	TypeUserUpdated = "user.updated"
)

// UserEvent is the wire payload for a user lifecycle event. The password
// hash is never part of it.
type UserEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	UserID     int       `json:"user_id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Role       string    `json:"role"`
}

// Backend defines the broker-agnostic publish operation.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) error
	Close() error
}

// Publisher wraps a backend with typed user-event helpers.
type Publisher struct {
	backend Backend
}

func NewPublisher(backend Backend) *Publisher {
	return &Publisher{backend: backend}
}

// UserCreated publishes a user.created event.
func (p *Publisher) UserCreated(ctx context.Context, user types.User) error {
	return p.publish(ctx, TypeUserCreated, user)
}

// UserUpdated publishes a user.updated event.
func (p *Publisher) UserUpdated(ctx context.Context, user types.User) error {
	return p.publish(ctx, TypeUserUpdated, user)
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	return p.backend.Close()
}

func (p *Publisher) publish(ctx context.Context, eventType string, user types.User) error {
	event := UserEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		UserID:     user.ID,
		Email:      user.Email,
		FullName:   user.FullName,
		Role:       user.Role,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	attrs := map[string]string{"type": eventType, "event_id": event.ID}
	return p.backend.Publish(ctx, ChannelUserEvents, data, attrs)
}
