package stats

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tally/internal/cache"
	"tally/internal/core"
)

type countingReporter struct {
	Reporter
	yearly atomic.Int32
	gate   chan struct{}
}

func (c *countingReporter) YearlyBreakdown(ctx context.Context, userID string) ([]core.YearStat, error) {
	c.yearly.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	return []core.YearStat{{Year: 2025, TotalExpenses: 1, Balance: -1}}, nil
}

func TestCachedServesRepeatReadsFromStore(t *testing.T) {
	ctx := context.Background()
	inner := &countingReporter{}
	c := NewCached(inner, cache.NewLocalGroups(cache.NewLRUCache[[]byte](10, time.Minute)))

	for i := 0; i < 3; i++ {
		got, err := c.YearlyBreakdown(ctx, "u1")
		if err != nil || len(got) != 1 || got[0].Year != 2025 {
			t.Fatalf("unexpected result %+v, %v", got, err)
		}
	}
	if n := inner.yearly.Load(); n != 1 {
		t.Fatalf("engine called %d times, want 1", n)
	}

	c.Invalidate(ctx, "u1")
	if _, err := c.YearlyBreakdown(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if n := inner.yearly.Load(); n != 2 {
		t.Fatalf("engine called %d times after invalidation, want 2", n)
	}
}

func TestCachedCollapsesConcurrentMisses(t *testing.T) {
	inner := &countingReporter{gate: make(chan struct{})}
	c := NewCached(inner, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.YearlyBreakdown(context.Background(), "u1")
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(inner.gate)
	wg.Wait()

	if n := inner.yearly.Load(); n < 1 || n > 5 {
		t.Fatalf("unexpected call count %d", n)
	}
}

func TestCachedEndToEndWithEngine(t *testing.T) {
	e := seededEngine(t)
	c := NewCached(e, cache.NewLocalGroups(cache.NewLRUCache[[]byte](10, time.Minute)))
	got, err := c.MonthlyBreakdown(context.Background(), "u1", 2025)
	if err != nil || len(got) != 12 || got[0].Balance != 482500 {
		t.Fatalf("unexpected %+v, %v", got, err)
	}
	again, _ := c.MonthlyBreakdown(context.Background(), "u1", 2025)
	if again[0] != got[0] {
		t.Fatalf("cached value differs: %+v vs %+v", again[0], got[0])
	}
}

// storageReporter reads a mutable total at call time and then waits for release or for its
// context to end.
type storageReporter struct {
	Reporter
	total   atomic.Int64
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func newStorageReporter(total int64) *storageReporter {
	r := &storageReporter{started: make(chan struct{}, 8), release: make(chan struct{})}
	r.total.Store(total)
	return r
}

func (r *storageReporter) MonthlyBreakdown(ctx context.Context, userID string, year int) ([]core.MonthStat, error) {
	r.calls.Add(1)
	read := r.total.Load()
	r.started <- struct{}{}
	select {
	case <-r.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return []core.MonthStat{{Month: 1, TotalExpenses: read}}, nil
}

func TestCachedDoesNotStoreFillThatStartedBeforeInvalidate(t *testing.T) {
	ctx := context.Background()
	inner := newStorageReporter(100)
	c := NewCached(inner, cache.NewLocalGroups(cache.NewLRUCache[[]byte](10, time.Minute)))

	done := make(chan []core.MonthStat)
	go func() {
		got, _ := c.MonthlyBreakdown(ctx, "u", 2025)
		done <- got
	}()
	<-inner.started

	inner.total.Store(200)
	c.Invalidate(ctx, "u")

	after := make(chan []core.MonthStat)
	go func() {
		got, _ := c.MonthlyBreakdown(ctx, "u", 2025)
		after <- got
	}()
	<-inner.started

	close(inner.release)
	if got := <-done; got[0].TotalExpenses != 100 {
		t.Fatalf("first reader got %d, want 100", got[0].TotalExpenses)
	}
	if got := <-after; got[0].TotalExpenses != 200 {
		t.Fatalf("reader after invalidation joined the old computation: got %d", got[0].TotalExpenses)
	}

	got, err := c.MonthlyBreakdown(ctx, "u", 2025)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].TotalExpenses != 200 {
		t.Fatalf("cached total = %d after write and invalidate, storage holds 200", got[0].TotalExpenses)
	}
	if n := inner.calls.Load(); n != 2 {
		t.Fatalf("engine called %d times, want 2", n)
	}
}

func TestCachedCancelledCallerDoesNotFailOthers(t *testing.T) {
	inner := newStorageReporter(100)
	c := NewCached(inner, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error)
	go func() {
		_, err := c.MonthlyBreakdown(ctxA, "u", 2025)
		errA <- err
	}()
	<-inner.started

	type result struct {
		stats []core.MonthStat
		err   error
	}
	resB := make(chan result)
	go func() {
		got, err := c.MonthlyBreakdown(context.Background(), "u", 2025)
		resB <- result{got, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller got %v", err)
	}

	close(inner.release)
	b := <-resB
	if b.err != nil {
		t.Fatalf("caller sharing the computation got %v", b.err)
	}
	if b.stats[0].TotalExpenses != 100 {
		t.Fatalf("unexpected %+v", b.stats)
	}
	if n := inner.calls.Load(); n != 1 {
		t.Fatalf("engine called %d times, want 1", n)
	}
}
