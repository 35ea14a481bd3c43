// Package cache keeps departure lists in Redis for a short TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/tripline/internal/trip"
)

const DefaultTTL = 15 * time.Second

type Departures struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ trip.Cache = (*Departures)(nil)

func New(rdb *redis.Client, ttl time.Duration) *Departures {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Departures{rdb: rdb, ttl: ttl}
}

// Connect builds a client for addr and pings it. A failed ping returns an
// error so callers can run without a cache.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func Key(date time.Time) string {
	return "departures:" + date.Format(time.DateOnly)
}

func (c *Departures) GetDepartures(ctx context.Context, date time.Time) ([]trip.Departure, bool) {
	b, err := c.rdb.Get(ctx, Key(date)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("departures cache read failed", "date", date.Format(time.DateOnly), "error", err)
		}

		return nil, false
	}

	var deps []trip.Departure
	if err := json.Unmarshal(b, &deps); err != nil {
		slog.Warn("discarding unreadable departures cache entry", "key", Key(date), "error", err)
		return nil, false
	}

	return deps, true
}

func (c *Departures) SetDepartures(ctx context.Context, date time.Time, deps []trip.Departure) {
	b, err := json.Marshal(deps)
	if err != nil {
		slog.Warn("failed to encode departures", "error", err)
		return
	}

	if err := c.rdb.Set(ctx, Key(date), b, c.ttl).Err(); err != nil {
		slog.Warn("departures cache write failed", "key", Key(date), "error", err)
	}
}
