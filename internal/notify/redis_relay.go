package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const DefaultRedisChannel = "inventory:changes"

type relayMessage struct {
	Origin string `json:"origin"`
	Scope  string `json:"scope"`
}

// RedisRelay extends a Hub across processes sharing one database: local
// signals are published on a Redis channel and signals from other processes
// are replayed into the local hub.
type RedisRelay struct {
	rdb     *redis.Client
	channel string
	origin  string
	hub     *Hub
	outbox  chan Scope
	log     logrus.FieldLogger
}

func NewRedisRelay(rdb *redis.Client, channel string, hub *Hub, log logrus.FieldLogger) *RedisRelay {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisRelay{
		rdb:     rdb,
		channel: channel,
		origin:  uuid.NewString(),
		hub:     hub,
		outbox:  make(chan Scope, 256),
		log:     log.WithField("component", "redis-relay"),
	}
}

// Notify signals local subscribers immediately and queues the signal for
// other processes. It never blocks on Redis.
func (r *RedisRelay) Notify(scope Scope) {
	r.hub.Notify(scope)
	select {
	case r.outbox <- scope:
	default:
		r.log.WithField("scope", scope.String()).Warn("relay outbox full, dropping remote signal")
	}
}

// Run pumps signals in both directions until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.rdb.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	msgs := pubsub.Channel()
	r.log.WithField("channel", r.channel).Info("relaying change notifications")

	for {
		select {
		case <-ctx.Done():
			return nil
		case scope := <-r.outbox:
			r.publish(ctx, scope)
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			r.receive(msg.Payload)
		}
	}
}

func (r *RedisRelay) publish(ctx context.Context, scope Scope) {
	data, _ := json.Marshal(relayMessage{Origin: r.origin, Scope: scope.String()})

	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := r.rdb.Publish(pubCtx, r.channel, data).Err(); err != nil {
		r.log.WithError(err).Warn("failed to publish change notification")
	}
}

func (r *RedisRelay) receive(payload string) {
	var m relayMessage
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		r.log.WithError(err).Warn("ignoring malformed relay message")
		return
	}
	if m.Origin == r.origin {
		return
	}
	scope, err := ParseScope(m.Scope)
	if err != nil {
		r.log.WithError(err).Warn("ignoring relay message with bad scope")
		return
	}
	r.hub.Notify(scope)
}
