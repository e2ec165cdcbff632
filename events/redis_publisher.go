package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/goliatone/go-access/pkg/types"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel role changes are published on.
const DefaultChannel = "access.roles"

// Envelope is the JSON payload published to Redis.
type Envelope struct {
	Type       types.EventType `json:"type"`
	Role       types.Role      `json:"role"`
	Account    types.Account   `json:"account"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// RedisPublisherConfig configures the publisher.
type RedisPublisherConfig struct {
	Client  redis.UniversalClient
	Channel string
	Clock   types.Clock
}

// RedisPublisher broadcasts role changes over Redis pub/sub.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
	clock   types.Clock
}

// NewRedisPublisher constructs the publisher.
func NewRedisPublisher(cfg RedisPublisherConfig) (*RedisPublisher, error) {
	if cfg.Client == nil {
		return nil, errors.New("events: redis client required")
	}
	channel := cfg.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &RedisPublisher{client: cfg.Client, channel: channel, clock: clock}, nil
}

var _ types.EventSink = (*RedisPublisher)(nil)

// Channel returns the channel events are published on.
func (p *RedisPublisher) Channel() string {
	return p.channel
}

// Publish implements types.EventSink.
func (p *RedisPublisher) Publish(ctx context.Context, event types.Event) error {
	if event == nil {
		return nil
	}
	role, account := event.Subject()
	payload, err := json.Marshal(Envelope{
		Type:       event.Type(),
		Role:       role,
		Account:    account,
		OccurredAt: p.clock.Now(),
	})
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}

// DecodeEnvelope parses a payload received from the channel.
func DecodeEnvelope(payload string) (types.Event, error) {
	var envelope Envelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return nil, err
	}
	return toEvent(&LogEntry{
		Type:    string(envelope.Type),
		Role:    string(envelope.Role),
		Account: string(envelope.Account),
	})
}
