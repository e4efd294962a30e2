package redis

import (
	"context"
	"fmt"

	goredis "github.com/go-redis/redis/v8"

	"niftysignal/internal/model"
)

// ChannelPrefix prefixes the per-instrument verdict PubSub channel.
const ChannelPrefix = "pub:signal:"

// Channel returns the PubSub channel verdicts for instrument are published on.
func Channel(instrument string) string { return ChannelPrefix + instrument }

// Publisher publishes verdict JSON so any daemon subscribed to the channel
// can stream it to its WebSocket clients.
type Publisher struct {
	client *goredis.Client
}

// NewPublisher wraps an existing client.
func NewPublisher(client *goredis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishVerdict publishes v on Channel(v.Instrument).
func (p *Publisher) PublishVerdict(ctx context.Context, v model.Verdict) error {
	if err := p.client.Publish(ctx, Channel(v.Instrument), v.JSON()).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", Channel(v.Instrument), err)
	}
	return nil
}
