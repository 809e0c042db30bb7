package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/puzzlehunt/internal/progress"
)

const redisEventsChannel = "puzzlehunt:events"

type redisEnvelope struct {
	Code  string         `json:"code"`
	Event progress.Event `json:"event"`
}

// RedisBroker fans progression events out to every server process sharing
// one Redis. Publish goes through Redis; Run copies messages into the local
// Broker that SSE and WebSocket subscribers listen on.
type RedisBroker struct {
	local  *Broker
	rdb    *redis.Client
	logger *slog.Logger
}

func NewRedisBroker(rdb *redis.Client, logger *slog.Logger) *RedisBroker {
	return &RedisBroker{local: NewBroker(), rdb: rdb, logger: logger}
}

func (b *RedisBroker) Subscribe(code string) chan []byte { return b.local.Subscribe(code) }

func (b *RedisBroker) Unsubscribe(code string, ch chan []byte) { b.local.Unsubscribe(code, ch) }

// Publish falls back to local delivery when Redis is unreachable.
func (b *RedisBroker) Publish(code string, ev progress.Event) {
	data, _ := json.Marshal(redisEnvelope{Code: code, Event: ev})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.rdb.Publish(ctx, redisEventsChannel, data).Err(); err != nil {
		b.logger.Warn("redis publish failed, delivering locally", "code", code, "error", err)
		b.local.Publish(code, ev)
	}
}

// Run pumps messages from Redis into the local broker until ctx is done.
func (b *RedisBroker) Run(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, redisEventsChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env redisEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Warn("dropping malformed event", "error", err)
				continue
			}
			b.local.Publish(env.Code, env.Event)
		}
	}
}

// Check reports Redis reachability for the health endpoint.
func (b *RedisBroker) Check(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}
