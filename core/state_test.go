package core

import (
	"testing"

	evbus "github.com/asaskevich/EventBus"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		current Status
		next    Status
		allowed bool
	}{
		{StatusDisconnected, StatusConnecting, true},
		{StatusDisconnected, StatusReconnecting, true},
		{StatusDisconnected, StatusConnected, false},
		{StatusConnecting, StatusConnected, true},
		{StatusConnecting, StatusDisconnected, true},
		{StatusConnecting, StatusReconnecting, false},
		{StatusConnected, StatusConnecting, true},
		{StatusConnected, StatusDisconnected, true},
		{StatusConnected, StatusReconnecting, false},
		{StatusReconnecting, StatusConnected, true},
		{StatusReconnecting, StatusDisconnected, true},
		{StatusConnected, StatusConnected, true},
	}
	for _, tc := range cases {
		if got := StatusTransitionAllowed(tc.current, tc.next); got != tc.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tc.current, tc.next, tc.allowed, got)
		}
	}
}

func TestStateValidate(t *testing.T) {
	bus := evbus.New()
	connector := newFakeConnector(bus, "metamask", 1, testAccountA)

	state := NewState(1)
	if err := state.Validate(); err != nil {
		t.Fatalf("fresh state should validate: %v", err)
	}

	state.Status = StatusConnected
	if err := state.Validate(); err == nil {
		t.Fatal("connected without current must be invalid")
	}

	state.Current = connector.UID()
	state.Connections[connector.UID()] = Connection{
		Accounts:  []Address{testAccountA},
		ChainID:   1,
		Connector: connector,
	}
	if err := state.Validate(); err != nil {
		t.Fatalf("connected state should validate: %v", err)
	}

	state.Status = StatusDisconnected
	if err := state.Validate(); err == nil {
		t.Fatal("current set while disconnected must be invalid")
	}
}

func TestStateCloneIsDeep(t *testing.T) {
	bus := evbus.New()
	connector := newFakeConnector(bus, "metamask", 1, testAccountA)

	state := NewState(1)
	state.Connections[connector.UID()] = Connection{
		Accounts:  []Address{testAccountA},
		ChainID:   1,
		Connector: connector,
	}

	cloned := state.Clone()
	cloned.Connections[connector.UID()] = Connection{
		Accounts:  []Address{testAccountB},
		ChainID:   5,
		Connector: connector,
	}

	original := state.Connections[connector.UID()]
	if original.Accounts[0] != testAccountA || original.ChainID != 1 {
		t.Fatalf("clone mutation leaked into the original: %+v", original)
	}
}

func TestStateStoreSwapInstallsDerivedState(t *testing.T) {
	store := NewStateStore(NewState(1))

	installed := store.Swap(func(s State) State {
		s.Status = StatusConnecting
		return s
	})
	if installed.Status != StatusConnecting {
		t.Fatalf("expected connecting, got %s", installed.Status)
	}
	if snapshot := store.Snapshot(); snapshot.Status != StatusConnecting {
		t.Fatalf("swap not installed, snapshot is %s", snapshot.Status)
	}
}

func TestStateStoreSnapshotIsIsolated(t *testing.T) {
	bus := evbus.New()
	connector := newFakeConnector(bus, "metamask", 1, testAccountA)

	store := NewStateStore(NewState(1))
	store.Swap(func(s State) State {
		s.Connections[connector.UID()] = Connection{
			Accounts:  []Address{testAccountA},
			ChainID:   1,
			Connector: connector,
		}
		return s
	})

	snapshot := store.Snapshot()
	delete(snapshot.Connections, connector.UID())

	if _, ok := store.Snapshot().Connection(connector.UID()); !ok {
		t.Fatal("snapshot mutation leaked into the store")
	}
}

func TestDropConnectionPromotesDeterministically(t *testing.T) {
	bus := evbus.New()
	a := newFakeConnector(bus, "a", 1, testAccountA)
	b := newFakeConnector(bus, "b", 5, testAccountB)
	a.uid = "uid-a"
	b.uid = "uid-b"

	state := NewState(1)
	state.Status = StatusConnected
	state.Current = "uid-b"
	state.ChainID = 5
	state.Connections["uid-a"] = Connection{Accounts: []Address{testAccountA}, ChainID: 1, Connector: a}
	state.Connections["uid-b"] = Connection{Accounts: []Address{testAccountB}, ChainID: 5, Connector: b}

	next := dropConnection(state.Clone(), "uid-b")
	if next.Current != "uid-a" || next.Status != StatusConnected {
		t.Fatalf("expected promotion to uid-a, got %+v", next)
	}
	if next.ChainID != 1 {
		t.Fatalf("active chain should follow the promoted connection, got %d", next.ChainID)
	}

	final := dropConnection(next, "uid-a")
	if final.Status != StatusDisconnected || final.Current != "" {
		t.Fatalf("expected disconnected, got %+v", final)
	}
}
