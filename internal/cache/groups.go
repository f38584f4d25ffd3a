package cache

import (
	"context"
	"strings"
	"sync"
)

const groupSep = "\x00"

// LocalGroups is a GroupStore over an in-process LRU.
type LocalGroups struct {
	lru *LRUCache[[]byte]

	mu   sync.Mutex
	gens map[string]uint64
}

func NewLocalGroups(lru *LRUCache[[]byte]) *LocalGroups {
	return &LocalGroups{lru: lru, gens: make(map[string]uint64)}
}

func (g *LocalGroups) Get(_ context.Context, group, key string) ([]byte, bool) {
	return g.lru.Get(group + groupSep + key)
}

func (g *LocalGroups) Generation(_ context.Context, group string) (uint64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gens[group], true
}

func (g *LocalGroups) Set(_ context.Context, group, key string, gen uint64, value []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gens[group] != gen {
		return
	}
	g.lru.Set(group+groupSep+key, value)
}

func (g *LocalGroups) DropGroup(_ context.Context, group string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gens[group]++
	prefix := group + groupSep
	g.lru.DeleteFunc(func(key string) bool { return strings.HasPrefix(key, prefix) })
}

// Nop caches nothing.
type Nop struct{}

func (Nop) Get(context.Context, string, string) ([]byte, bool) { return nil, false }

func (Nop) Generation(context.Context, string) (uint64, bool) { return 0, false }

func (Nop) Set(context.Context, string, string, uint64, []byte) {}

func (Nop) DropGroup(context.Context, string) {}
