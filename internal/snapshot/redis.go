package snapshot

import (
	"context"

	redis "github.com/redis/go-redis/v9"
)

// RedisStore keeps one snapshot document per terminal under the fixed
// namespace key. Snapshots have no TTL; they live until overwritten.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string, password string, db int) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: client}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Load(ctx context.Context, terminalID string) (State, bool, error) {
	raw, err := s.client.Get(ctx, Key(terminalID)).Bytes()
	if err == redis.Nil {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, err
	}
	state, err := Decode(raw)
	if err != nil {
		return State{}, false, err
	}
	return state, true, nil
}

func (s *RedisStore) Save(ctx context.Context, terminalID string, state State) error {
	payload, err := Encode(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, Key(terminalID), payload, 0).Err()
}
