package core

import (
	"fmt"
	"strings"
	"sync"
)

type subscriptionKey struct {
	uid   string
	event string
}

// SubscriptionTable tracks which handler is attached to each
// connector's emitter per event, so connect-family rewiring stays
// idempotent: subscribing twice for the same uid/event replaces the
// previous handler instead of stacking a duplicate.
type SubscriptionTable struct {
	mu      sync.Mutex
	entries map[subscriptionKey]any
}

func NewSubscriptionTable() *SubscriptionTable {
	return &SubscriptionTable{entries: map[subscriptionKey]any{}}
}

func (t *SubscriptionTable) Subscribe(emitter *Emitter, event string, handler any) error {
	if t == nil {
		return fmt.Errorf("core: subscription table is not configured")
	}
	if emitter == nil {
		return fmt.Errorf("core: emitter is required")
	}
	if handler == nil {
		return fmt.Errorf("core: handler is required")
	}
	event = strings.TrimSpace(event)
	key := subscriptionKey{uid: emitter.UID(), event: event}

	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.entries[key]; ok {
		// Bus rejects unsubscribing handlers it no longer holds; that
		// still leaves the table consistent.
		_ = emitter.Off(event, existing)
		delete(t.entries, key)
	}
	if err := emitter.On(event, handler); err != nil {
		return err
	}
	t.entries[key] = handler
	return nil
}

func (t *SubscriptionTable) Unsubscribe(emitter *Emitter, event string) {
	if t == nil || emitter == nil {
		return
	}
	event = strings.TrimSpace(event)
	key := subscriptionKey{uid: emitter.UID(), event: event}

	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.entries[key]; ok {
		_ = emitter.Off(event, existing)
		delete(t.entries, key)
	}
}

// Clear drops every subscription held for the emitter's uid.
func (t *SubscriptionTable) Clear(emitter *Emitter) {
	if t == nil || emitter == nil {
		return
	}
	uid := emitter.UID()

	t.mu.Lock()
	defer t.mu.Unlock()
	for key, handler := range t.entries {
		if key.uid != uid {
			continue
		}
		_ = emitter.Off(key.event, handler)
		delete(t.entries, key)
	}
}

// Subscribed reports whether a handler is attached for the uid/event
// pair.
func (t *SubscriptionTable) Subscribed(uid string, event string) bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[subscriptionKey{uid: strings.TrimSpace(uid), event: strings.TrimSpace(event)}]
	return ok
}
