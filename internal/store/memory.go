package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/serroba/shortn/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Store.
type MemoryStore struct {
	mu   sync.RWMutex
	urls map[shortener.ID]string // id -> url
	ids  map[string]shortener.ID // url -> id
	opts Options
}

// NewMemoryStore creates a new in-memory link store.
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		urls: make(map[shortener.ID]string),
		ids:  make(map[string]shortener.ID),
		opts: opts,
	}
}

func (m *MemoryStore) EnsureSchema(_ context.Context) error {
	return nil
}

func (m *MemoryStore) Put(ctx context.Context, url string) (shortener.ID, error) {
	return shortener.Assign(ctx, "store.MemoryStore.Put", m.opts.NewID, m.opts.IDRetries, url, m.upsert)
}

func (m *MemoryStore) upsert(_ context.Context, id shortener.ID, url string) (shortener.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.urls[id]; ok && current != url {
		return "", fmt.Errorf("id %q: %w", id, shortener.ErrIDCollision)
	}

	if old, ok := m.ids[url]; ok {
		delete(m.urls, old)
	}

	m.urls[id] = url
	m.ids[url] = id

	return id, nil
}

func (m *MemoryStore) Get(_ context.Context, id shortener.ID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	url, ok := m.urls[id]
	if !ok {
		return "", shortener.E("store.MemoryStore.Get", shortener.KindNotFound, fmt.Errorf("id %q", id))
	}

	return url, nil
}

func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Len returns the number of stored links.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.urls)
}
