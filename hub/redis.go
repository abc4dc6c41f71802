package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/yeremiapane/restaurant-tables/utils"
)

const DefaultChannel = "restaurant:floor"

// NewRedisClient builds a client from REDIS_URL-style settings (host:port).
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// RedisPublisher fans floor events out to every server instance. Each
// instance relays what it receives into its local Hub, including its own
// messages, so publishers never write to the local Hub directly. Once the
// relay dies the publisher delivers to the local Hub itself.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	timeout time.Duration
	// set when Relay stops without ctx being done
	fallback atomic.Pointer[Hub]
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel, timeout: 2 * time.Second}
}

func (p *RedisPublisher) Broadcast(msg Message) {
	if local := p.fallback.Load(); local != nil {
		local.Broadcast(msg)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("redis hub: marshal %s: %v", msg.Event, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		// live updates are best effort, the board reloads on next navigation
		utils.ErrorLogger.Warnf("redis hub: publish %s: %v", msg.Event, err)
	}
}

// Relay subscribes to the channel and forwards every message to local until
// ctx is done. Any other exit switches Broadcast to local delivery and
// returns the cause.
func (p *RedisPublisher) Relay(ctx context.Context, local *Hub) error {
	sub := p.client.Subscribe(ctx, p.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return p.fallBack(ctx, local, err)
	}
	utils.InfoLogger.WithField("channel", p.channel).Info("redis hub: relaying floor events")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return p.fallBack(ctx, local, errors.New("subscription closed"))
			}
			var msg Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				utils.ErrorLogger.Warnf("redis hub: bad payload: %v", err)
				continue
			}
			local.deliver(msg.RestaurantID, []byte(m.Payload))
		}
	}
}

func (p *RedisPublisher) fallBack(ctx context.Context, local *Hub, cause error) error {
	if ctx.Err() != nil {
		return nil
	}
	p.fallback.Store(local)
	utils.ErrorLogger.Warnf("redis hub: relay down, delivering locally: %v", cause)
	return cause
}
