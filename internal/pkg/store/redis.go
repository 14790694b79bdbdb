package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/redis/go-redis/v9"
)

// Redis keeps a collection in a single hash: field = id, value = JSON body.
type Redis[T any] struct {
	client *redis.Client
	key    string
}

// NewRedis creates a Redis-backed store. The hash key is "<prefix>:<collection>".
func NewRedis[T any](client *redis.Client, prefix, collection string) *Redis[T] {
	if prefix == "" {
		prefix = "stay"
	}
	return &Redis[T]{client: client, key: prefix + ":" + collection}
}

func (r *Redis[T]) Save(ctx context.Context, id string, v T) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ok, err := r.client.HSetNX(ctx, r.key, id, body).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrDuplicate
	}
	return nil
}

func (r *Redis[T]) Find(ctx context.Context, id string) (T, error) {
	var v T
	body, err := r.client.HGet(ctx, r.key, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, ErrNotFound
	}
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(body, &v)
	return v, err
}

var updateScript = redis.NewScript(`
if redis.call("HEXISTS", KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
return 1
`)

func (r *Redis[T]) Update(ctx context.Context, id string, v T) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	n, err := updateScript.Run(ctx, r.client, []string{r.key}, id, body).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Redis[T]) Delete(ctx context.Context, id string) error {
	return r.client.HDel(ctx, r.key, id).Err()
}

func (r *Redis[T]) List(ctx context.Context) ([]T, error) {
	all, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		var v T
		if err := json.Unmarshal([]byte(all[id]), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
