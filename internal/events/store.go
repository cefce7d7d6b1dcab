package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mqsieve/internal/constants"
	"mqsieve/pkg/metrics"
)

const TypeMessagePublished = "message_published"

type Event struct {
	Timestamp time.Time              `json:"timestamp"`
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
}

type Stats struct {
	TotalMessages int            `json:"total_messages"`
	ByRoutingKey  map[string]int `json:"by_routing_key"`
}

// Store keeps a capped event history in a Redis list, newest first.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Log(ctx context.Context, eventType string, data map[string]interface{}) error {
	event := Event{
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Data:      data,
	}

	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, constants.EventListKey, raw)
	pipe.LTrim(ctx, constants.EventListKey, 0, constants.EventListMaxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.EventStoreWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to write event: %w", err)
	}

	metrics.EventStoreWritesTotal.WithLabelValues("success").Inc()
	return nil
}

func (s *Store) Recent(ctx context.Context, n int) ([]Event, error) {
	raws, err := s.client.LRange(ctx, constants.EventListKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	events := make([]Event, 0, len(raws))
	for _, raw := range raws {
		var event Event
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		events = append(events, event)
	}

	return events, nil
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	raws, err := s.client.LRange(ctx, constants.EventListKey, 0, -1).Result()
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read events: %w", err)
	}

	stats := Stats{
		TotalMessages: len(raws),
		ByRoutingKey:  make(map[string]int),
	}

	for _, raw := range raws {
		var event Event
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			continue
		}
		if event.Type != TypeMessagePublished {
			continue
		}

		key := "unknown"
		if rk, ok := event.Data["routing_key"].(string); ok && rk != "" {
			key = rk
		}
		stats.ByRoutingKey[key]++
	}

	return stats, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
