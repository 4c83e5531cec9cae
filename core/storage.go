package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRecentConnectorStore is the default RecentConnectorStore. It
// keeps values in process memory, suitable for tests and single-run
// embedders that do not need reconnect across restarts.
type MemoryRecentConnectorStore struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryRecentConnectorStore() *MemoryRecentConnectorStore {
	return &MemoryRecentConnectorStore{items: map[string]string{}}
}

func (s *MemoryRecentConnectorStore) SetItem(_ context.Context, key string, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items == nil {
		s.items = map[string]string{}
	}
	s.items[key] = value
	return nil
}

func (s *MemoryRecentConnectorStore) GetItem(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[strings.TrimSpace(key)]
	return value, ok, nil
}

func (s *MemoryRecentConnectorStore) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, strings.TrimSpace(key))
	return nil
}

var _ RecentConnectorStore = (*MemoryRecentConnectorStore)(nil)

// MemoryWalletActivitySink buffers audit entries in memory, newest
// first, with the same paging semantics as the SQL sink.
type MemoryWalletActivitySink struct {
	mu      sync.RWMutex
	entries []WalletActivityEntry
}

func NewMemoryWalletActivitySink() *MemoryWalletActivitySink {
	return &MemoryWalletActivitySink{}
}

func (s *MemoryWalletActivitySink) Record(_ context.Context, entry WalletActivityEntry) error {
	if strings.TrimSpace(entry.ID) == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.Metadata = copyAnyMap(entry.Metadata)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemoryWalletActivitySink) List(_ context.Context, filter WalletActivityFilter) (WalletActivityPage, error) {
	// Record appends chronologically, so reverse insertion order is
	// newest first even when timestamps collide.
	s.mu.RLock()
	matched := make([]WalletActivityEntry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		entry := s.entries[i]
		if !activityMatches(entry, filter) {
			continue
		}
		cloned := entry
		cloned.Metadata = copyAnyMap(entry.Metadata)
		matched = append(matched, cloned)
	}
	s.mu.RUnlock()

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 25
	}
	offset := (page - 1) * perPage
	total := len(matched)

	items := []WalletActivityEntry{}
	if offset < total {
		end := offset + perPage
		if end > total {
			end = total
		}
		items = matched[offset:end]
	}

	return WalletActivityPage{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		HasNext: offset+len(items) < total,
	}, nil
}

func activityMatches(entry WalletActivityEntry, filter WalletActivityFilter) bool {
	if operation := normalizeOperation(filter.Operation); operation != "" && entry.Operation != operation {
		return false
	}
	if connectorID := strings.TrimSpace(filter.ConnectorID); connectorID != "" && entry.ConnectorID != connectorID {
		return false
	}
	if filter.Status != "" && entry.Status != filter.Status {
		return false
	}
	if filter.From != nil && entry.CreatedAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && entry.CreatedAt.After(*filter.To) {
		return false
	}
	return true
}

func copyAnyMap(values map[string]any) map[string]any {
	if len(values) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(values))
	for key, value := range values {
		copied[key] = value
	}
	return copied
}

var _ WalletActivitySink = (*MemoryWalletActivitySink)(nil)
