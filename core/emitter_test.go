package core

import (
	"testing"

	evbus "github.com/asaskevich/EventBus"
)

func TestEmitterScopesTopicsByUID(t *testing.T) {
	bus := evbus.New()
	first := NewEmitter("uid-1", bus)
	second := NewEmitter("uid-2", bus)

	var got []string
	if err := first.On(EventMessage, func(evt MessageEvent) {
		got = append(got, "first:"+evt.Type)
	}); err != nil {
		t.Fatalf("On returned error: %v", err)
	}
	if err := second.On(EventMessage, func(evt MessageEvent) {
		got = append(got, "second:"+evt.Type)
	}); err != nil {
		t.Fatalf("On returned error: %v", err)
	}

	first.Emit(EventMessage, MessageEvent{Type: MessageTypeConnecting})

	if len(got) != 1 || got[0] != "first:connecting" {
		t.Fatalf("expected only the first emitter's handler, got %v", got)
	}
}

func TestEmitterOffStopsDelivery(t *testing.T) {
	emitter := NewEmitter("uid-1", evbus.New())
	calls := 0
	handler := func(DisconnectEvent) { calls++ }

	if err := emitter.On(EventDisconnect, handler); err != nil {
		t.Fatalf("On returned error: %v", err)
	}
	emitter.Emit(EventDisconnect, DisconnectEvent{})
	if err := emitter.Off(EventDisconnect, handler); err != nil {
		t.Fatalf("Off returned error: %v", err)
	}
	emitter.Emit(EventDisconnect, DisconnectEvent{})

	if calls != 1 {
		t.Fatalf("expected one delivery, got %d", calls)
	}
}

func TestSubscriptionTableReplacesHandlers(t *testing.T) {
	emitter := NewEmitter("uid-1", evbus.New())
	table := NewSubscriptionTable()

	firstCalls := 0
	secondCalls := 0
	if err := table.Subscribe(emitter, EventChange, func(ChangeEvent) { firstCalls++ }); err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	if err := table.Subscribe(emitter, EventChange, func(ChangeEvent) { secondCalls++ }); err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	emitter.Emit(EventChange, ChangeEvent{})
	if firstCalls != 0 || secondCalls != 1 {
		t.Fatalf("expected replacement, got first=%d second=%d", firstCalls, secondCalls)
	}
	if !table.Subscribed("uid-1", EventChange) {
		t.Fatal("expected change subscription tracked")
	}
}

func TestSubscriptionTableClearDropsAllForUID(t *testing.T) {
	emitter := NewEmitter("uid-1", evbus.New())
	table := NewSubscriptionTable()

	calls := 0
	if err := table.Subscribe(emitter, EventChange, func(ChangeEvent) { calls++ }); err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	if err := table.Subscribe(emitter, EventDisconnect, func(DisconnectEvent) { calls++ }); err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	table.Clear(emitter)

	emitter.Emit(EventChange, ChangeEvent{})
	emitter.Emit(EventDisconnect, DisconnectEvent{})
	if calls != 0 {
		t.Fatalf("expected no deliveries after clear, got %d", calls)
	}
	if table.Subscribed("uid-1", EventChange) || table.Subscribed("uid-1", EventDisconnect) {
		t.Fatal("expected table emptied for uid")
	}
}
