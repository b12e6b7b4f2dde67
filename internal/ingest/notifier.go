package ingest

import (
	"context"

	"github.com/redis/go-redis/v9"

	"newshub/internal/model"
)

// RedisNotifier pushes the URL of each newly stored article onto a list for
// downstream consumers.
type RedisNotifier struct {
	client   *redis.Client
	queueKey string
}

func NewRedisNotifier(client *redis.Client, queueKey string) *RedisNotifier {
	return &RedisNotifier{client: client, queueKey: queueKey}
}

func (n *RedisNotifier) Notify(ctx context.Context, article model.Article) error {
	return n.client.LPush(ctx, n.queueKey, article.URL).Err()
}
