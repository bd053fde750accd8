package storage

import (
	"context"
	stderrors "errors"
	"sort"

	"github.com/redis/go-redis/v9"
)

// Redis stores values as plain redis strings under "namespace:key".
type Redis struct {
	client *redis.Client
	prefix prefixer
}

func NewRedis(url, password string, db int, namespace string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     url,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, storageErr("redis ping", err)
	}

	return &Redis{client: client, prefix: prefixer{namespace: namespace}}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix.key(key)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("redis get", err)
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return storageErr("redis set", r.client.Set(ctx, r.prefix.key(key), value, 0).Err())
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	return storageErr("redis del", r.client.Del(ctx, r.prefix.key(key)).Err())
}

func (r *Redis) Clear(ctx context.Context) error {
	keys, err := r.scan(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return storageErr("redis del", r.client.Del(ctx, keys...).Err())
}

func (r *Redis) HasKey(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix.key(key)).Result()
	if err != nil {
		return false, storageErr("redis exists", err)
	}
	return n > 0, nil
}

func (r *Redis) ListKeys(ctx context.Context) ([]string, error) {
	raw, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, r.prefix.strip(k))
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *Redis) scan(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix.prefix()+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, storageErr("redis scan", err)
	}
	return keys, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
