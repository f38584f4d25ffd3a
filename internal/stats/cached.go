package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"tally/internal/cache"
	"tally/internal/core"

	"golang.org/x/sync/singleflight"
)

// Reporter is the set of breakdowns served to the API.
type Reporter interface {
	CategoryBreakdown(ctx context.Context, userID string, rng *core.DateRange) ([]core.CategoryStat, error)
	DailyBreakdown(ctx context.Context, userID string, year, month int) ([]core.DayStat, error)
	MonthlyBreakdown(ctx context.Context, userID string, year int) ([]core.MonthStat, error)
	YearlyBreakdown(ctx context.Context, userID string) ([]core.YearStat, error)
}

// computeTimeout bounds a shared computation, which no longer follows any single caller.
const computeTimeout = 30 * time.Second

// Cached serves breakdowns from a GroupStore keyed by user, computing misses once even when
// many requests ask for the same key at the same time. Every mutation of a user's data must
// call Invalidate.
type Cached struct {
	engine  Reporter
	store   cache.GroupStore
	group   singleflight.Group
	timeout time.Duration
}

func NewCached(engine Reporter, store cache.GroupStore) *Cached {
	if store == nil {
		store = cache.Nop{}
	}
	return &Cached{engine: engine, store: store, timeout: computeTimeout}
}

// Invalidate drops every cached breakdown of userID. Computations already running for userID
// finish for their own callers but are not stored, and later reads start fresh ones.
func (c *Cached) Invalidate(ctx context.Context, userID string) {
	c.store.DropGroup(ctx, userID)
}

func (c *Cached) CategoryBreakdown(ctx context.Context, userID string, rng *core.DateRange) ([]core.CategoryStat, error) {
	key := "categories:all"
	if rng != nil {
		key = "categories:" + rng.String()
	}
	return load(ctx, c, userID, key, func(ctx context.Context) ([]core.CategoryStat, error) {
		return c.engine.CategoryBreakdown(ctx, userID, rng)
	})
}

func (c *Cached) DailyBreakdown(ctx context.Context, userID string, year, month int) ([]core.DayStat, error) {
	return load(ctx, c, userID, fmt.Sprintf("daily:%04d-%02d", year, month), func(ctx context.Context) ([]core.DayStat, error) {
		return c.engine.DailyBreakdown(ctx, userID, year, month)
	})
}

func (c *Cached) MonthlyBreakdown(ctx context.Context, userID string, year int) ([]core.MonthStat, error) {
	return load(ctx, c, userID, fmt.Sprintf("monthly:%04d", year), func(ctx context.Context) ([]core.MonthStat, error) {
		return c.engine.MonthlyBreakdown(ctx, userID, year)
	})
}

func (c *Cached) YearlyBreakdown(ctx context.Context, userID string) ([]core.YearStat, error) {
	return load(ctx, c, userID, "yearly", func(ctx context.Context) ([]core.YearStat, error) {
		return c.engine.YearlyBreakdown(ctx, userID)
	})
}

func load[T any](ctx context.Context, c *Cached, userID, key string, compute func(context.Context) ([]T, error)) ([]T, error) {
	if raw, ok := c.store.Get(ctx, userID, key); ok {
		var out []T
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
		slog.WarnContext(ctx, "Discarding undecodable stats cache entry", "component", "stats", "key", key)
	}

	// The generation is read before computing; requests arriving after an invalidation see a
	// newer one and never join a computation that may have read older data.
	gen, storable := c.store.Generation(ctx, userID)
	flight := fmt.Sprintf("%s|%d|%s", userID, gen, key)
	if !storable {
		flight = fmt.Sprintf("%s|nogen|%s", userID, key)
	}

	ch := c.group.DoChan(flight, func() (any, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		out, err := compute(cctx)
		if err != nil {
			return nil, err
		}
		if storable {
			if raw, err := json.Marshal(out); err == nil {
				c.store.Set(cctx, userID, key, gen, raw)
			}
		}
		return out, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]T), nil
	}
}
