package gateway

import (
	"context"
	"log/slog"

	goredis "github.com/go-redis/redis/v8"
)

// PubSubRouter relays verdicts published on Redis channels to the hub, so
// evaluations run by other processes reach this daemon's clients.
type PubSubRouter struct {
	hub      *Hub
	rdb      *goredis.Client
	channels []string
}

// NewPubSubRouter creates a router for the given channels.
func NewPubSubRouter(hub *Hub, rdb *goredis.Client, channels ...string) *PubSubRouter {
	return &PubSubRouter{hub: hub, rdb: rdb, channels: channels}
}

// Run subscribes and relays messages. Blocks until ctx is cancelled.
func (r *PubSubRouter) Run(ctx context.Context) {
	if len(r.channels) == 0 {
		r.hub.log.Warn("[gateway] no PubSub channels to subscribe to")
		return
	}

	pubsub := r.rdb.Subscribe(ctx, r.channels...)
	defer pubsub.Close()

	r.hub.log.Info("[gateway] subscribed to PubSub", slog.Any("channels", r.channels))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.hub.Relay([]byte(msg.Payload))
		}
	}
}
