package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"caseclosure/pkg/behavior"
)

// historyCache keeps a per-session rolling window of event summaries in
// Redis so the hot ingest path does not hit Postgres for every
// evaluation. The cache is optional; a nil cache makes every call a
// no-op and callers fall back to the database.
type historyCache struct {
	rdb    *redis.Client
	window int
	ttl    time.Duration
}

// historyEntry is the summarized event form kept in the cache. Only the
// fields the evaluators read from history are retained.
type historyEntry struct {
	EventType behavior.EventType `json:"event_type"`
	Timestamp time.Time          `json:"timestamp"`
}

func newHistoryCache(addr string, window int) *historyCache {
	if addr == "" {
		return nil
	}
	return &historyCache{
		rdb:    redis.NewClient(&redis.Options{Addr: addr}),
		window: window,
		ttl:    30 * time.Minute,
	}
}

func (h *historyCache) key(sessionID string) string {
	return "tracker:history:" + sessionID
}

// Window returns the cached most-recent-first history for a session. A
// nil slice with nil error means the cache has nothing (or is disabled).
func (h *historyCache) Window(ctx context.Context, sessionID string) (behavior.HistoryWindow, error) {
	if h == nil {
		return nil, nil
	}
	raw, err := h.rdb.LRange(ctx, h.key(sessionID), 0, int64(h.window-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("history lrange: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	window := make(behavior.HistoryWindow, 0, len(raw))
	for _, item := range raw {
		var entry historyEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue // skip corrupt entries rather than fail the evaluation
		}
		window = append(window, behavior.InteractionEvent{
			SessionID: sessionID,
			Type:      entry.EventType,
			Timestamp: entry.Timestamp,
		})
	}
	return window, nil
}

// Push prepends one event summary and trims the window.
func (h *historyCache) Push(ctx context.Context, ev behavior.InteractionEvent) error {
	if h == nil {
		return nil
	}
	entry, err := json.Marshal(historyEntry{EventType: ev.Type, Timestamp: ev.Timestamp})
	if err != nil {
		return err
	}
	key := h.key(ev.SessionID)
	pipe := h.rdb.TxPipeline()
	pipe.LPush(ctx, key, entry)
	pipe.LTrim(ctx, key, 0, int64(h.window-1))
	pipe.Expire(ctx, key, h.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("history push: %w", err)
	}
	return nil
}

func (h *historyCache) Close() error {
	if h == nil {
		return nil
	}
	return h.rdb.Close()
}
