// Package entryfeed publishes committed journal entries and reconciliation
// alerts to Redis lists for downstream consumers.
package entryfeed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-petr/trade-ledger/internal/domain"
	"github.com/go-redis/redis/v8"
)

// Event types.
const (
	EventEntryCommitted    = "entry.committed"
	EventInvariantViolated = "ledger.invariant_violated"
)

// Event is the JSON document pushed to the feed.
type Event struct {
	Type   string                  `json:"type"`
	Entry  *domain.Entry           `json:"entry,omitempty"`
	Report *domain.ReconcileReport `json:"report,omitempty"`
}

// Feed pushes events to a Redis list; alerts go to a sibling list suffixed ":alerts".
type Feed struct {
	rdb      redis.Cmdable
	key      string
	alertKey string
}

// New returns a Feed pushing to the list named key.
func New(rdb redis.Cmdable, key string) *Feed {
	return &Feed{
		rdb:      rdb,
		key:      key,
		alertKey: key + ":alerts",
	}
}

// Connect returns a Redis client after checking that the server answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}

	return rdb, nil
}

// PublishEntry pushes a committed entry event.
func (f *Feed) PublishEntry(ctx context.Context, e domain.Entry) error {
	return f.push(ctx, f.key, Event{Type: EventEntryCommitted, Entry: &e})
}

// PublishAlert pushes a failed reconciliation report.
func (f *Feed) PublishAlert(ctx context.Context, report domain.ReconcileReport) error {
	return f.push(ctx, f.alertKey, Event{Type: EventInvariantViolated, Report: &report})
}

func (f *Feed) push(ctx context.Context, key string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return f.rdb.RPush(ctx, key, data).Err()
}
