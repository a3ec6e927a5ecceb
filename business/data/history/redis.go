package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// cyclesKey is the redis list holding serialized records, newest first.
const cyclesKey = "compounder:cycles"

// Redis is a redis-backed implementation of the Store interface so the audit
// trail survives agent restarts.
type Redis struct {
	client *redis.Client
}

// NewRedis constructs a redis-backed cycle store.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	return &Redis{
		client: client,
	}
}

// Save stores the record at the head of the cycle list.
func (r *Redis) Save(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	if err := r.client.LPush(ctx, cyclesKey, data).Err(); err != nil {
		return fmt.Errorf("pushing record: %w", err)
	}

	return nil
}

// List returns all recorded cycles, newest first.
func (r *Redis) List(ctx context.Context) ([]Record, error) {
	raw, err := r.client.LRange(ctx, cyclesKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for _, data := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("unmarshaling record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// Last returns the most recent record.
func (r *Redis) Last(ctx context.Context) (Record, error) {
	data, err := r.client.LIndex(ctx, cyclesKey, 0).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("reading record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return Record{}, fmt.Errorf("unmarshaling record: %w", err)
	}

	return rec, nil
}
