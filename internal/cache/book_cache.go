package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/library-engine/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BookCache keeps book rows close to the catalog pages. A miss is reported
// as (nil, nil).
type BookCache interface {
	Get(ctx context.Context, id int64) (*domain.Book, error)
	Set(ctx context.Context, book *domain.Book) error
	Invalidate(ctx context.Context, id int64) error
}

type redisBookCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBookCache stores books as JSON under book:<id> for ttl
func NewRedisBookCache(client *redis.Client, ttl time.Duration) BookCache {
	return &redisBookCache{client: client, ttl: ttl}
}

func bookKey(id int64) string {
	return fmt.Sprintf("book:%d", id)
}

func (c *redisBookCache) Get(ctx context.Context, id int64) (*domain.Book, error) {
	raw, err := c.client.Get(ctx, bookKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return decodeBook(raw)
}

func (c *redisBookCache) Set(ctx context.Context, book *domain.Book) error {
	raw, err := encodeBook(book)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, bookKey(book.ID), raw, c.ttl).Err()
}

func (c *redisBookCache) Invalidate(ctx context.Context, id int64) error {
	return c.client.Del(ctx, bookKey(id)).Err()
}

func encodeBook(book *domain.Book) ([]byte, error) {
	return json.Marshal(book)
}

func decodeBook(raw []byte) (*domain.Book, error) {
	var book domain.Book
	if err := json.Unmarshal(raw, &book); err != nil {
		return nil, fmt.Errorf("decode cached book: %w", err)
	}
	return &book, nil
}
