package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher appends events to a Redis stream.
type RedisPublisher struct {
	client *redis.Client
	stream string
}

func NewRedisPublisher(ctx context.Context, addr, stream string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisPublisher{client: client, stream: stream}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"id":       ev.ID,
			"type":     ev.Type,
			"post_id":  ev.PostID,
			"username": ev.Username,
			"at":       ev.At.UnixMilli(),
		},
	}).Err()
}

func (p *RedisPublisher) Close() error { return p.client.Close() }
