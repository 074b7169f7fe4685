// Package history persists completed scan reports so past results can be
// recalled across invocations. Recording is best-effort: the CLI only
// writes history when a Redis address is configured.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d1childress/neoTUI/scanner"
)

// ErrNotFound indicates the requested scan is not in the store.
var ErrNotFound = errors.New("scan not found")

// recentLimit caps how many scan IDs the recency list keeps.
const recentLimit = 100

// Entry is one recorded scan invocation.
type Entry struct {
	ID        string          `json:"id"`
	Host      string          `json:"host"`
	PortSpec  string          `json:"port_spec"`
	CreatedAt time.Time       `json:"created_at"`
	Duration  string          `json:"duration"`
	Report    *scanner.Report `json:"report"`
}

// Store defines persistence operations for scan history.
type Store interface {
	SaveScan(ctx context.Context, entry *Entry) error
	GetScan(ctx context.Context, id string) (*Entry, error)
	RecentScans(ctx context.Context, n int) ([]*Entry, error)
}

// RedisStore implements Store on Redis: one hash per scan plus a trimmed
// recency list of IDs.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed history store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) scanKey(id string) string {
	return fmt.Sprintf("history:scan:%s", id)
}

// SaveScan persists the entry and pushes its ID onto the recency list.
func (s *RedisStore) SaveScan(ctx context.Context, entry *Entry) error {
	data, err := serializeEntry(entry)
	if err != nil {
		return err
	}
	if err := s.client.HSet(ctx, s.scanKey(entry.ID), data).Err(); err != nil {
		return fmt.Errorf("persist scan %s: %w", entry.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, "history:recent", entry.ID)
	pipe.LTrim(ctx, "history:recent", 0, recentLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update recency list: %w", err)
	}
	return nil
}

// GetScan retrieves one recorded scan by ID.
func (s *RedisStore) GetScan(ctx context.Context, id string) (*Entry, error) {
	res, err := s.client.HGetAll(ctx, s.scanKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, ErrNotFound
	}
	return deserializeEntry(res)
}

// RecentScans returns up to n most recent entries, newest first. Entries
// whose hash has expired or been deleted are skipped.
func (s *RedisStore) RecentScans(ctx context.Context, n int) ([]*Entry, error) {
	if n <= 0 || n > recentLimit {
		n = recentLimit
	}
	ids, err := s.client.LRange(ctx, "history:recent", 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, len(ids))
	for _, id := range ids {
		entry, err := s.GetScan(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func serializeEntry(entry *Entry) (map[string]interface{}, error) {
	report, err := json.Marshal(entry.Report)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return map[string]interface{}{
		"id":         entry.ID,
		"host":       entry.Host,
		"port_spec":  entry.PortSpec,
		"created_at": entry.CreatedAt.Format(time.RFC3339Nano),
		"duration":   entry.Duration,
		"report":     string(report),
	}, nil
}

func deserializeEntry(data map[string]string) (*Entry, error) {
	entry := &Entry{
		ID:       data["id"],
		Host:     data["host"],
		PortSpec: data["port_spec"],
		Duration: data["duration"],
	}

	if raw := data["created_at"]; raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		entry.CreatedAt = t
	}

	if raw := data["report"]; raw != "" {
		var report scanner.Report
		if err := json.Unmarshal([]byte(raw), &report); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		entry.Report = &report
	}

	return entry, nil
}
