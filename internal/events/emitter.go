package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// Event types published to downstream collaborators (notifications,
// gamification) over Redis pub/sub.
const (
	AttemptGraded  = "attempt.graded"
	MasteryUpdated = "mastery.updated"
)

type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// Emitter publishes domain events. Emission is best-effort: the attempt
// lifecycle never fails because a notification channel is down.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

type RedisEmitter struct {
	rdb     *redis.Client
	channel string
}

func NewRedisEmitter(rdb *redis.Client, channel string) *RedisEmitter {
	if channel == "" {
		channel = "assessment.events"
	}
	return &RedisEmitter{rdb: rdb, channel: channel}
}

func (e *RedisEmitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	body, err := json.Marshal(Event{
		Type:       eventType,
		OccurredAt: time.Now(),
		Payload:    payload,
	})
	if err != nil {
		return err
	}
	return e.rdb.Publish(ctx, e.channel, body).Err()
}

// NopEmitter discards events; used in tests and when Redis is disabled.
type NopEmitter struct{}

func (NopEmitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	return nil
}
