package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInvalidStatusTransition = errors.New("core: invalid connection status transition")
	ErrEmptyAccounts           = errors.New("core: connection requires at least one account")
	ErrInvalidState            = errors.New("core: connection state is inconsistent")
)

// Address identifies a wallet account on chain.
type Address = common.Address

// ChainID identifies an EVM chain.
type ChainID uint64

// Chain describes a chain the manager knows about. Descriptors for
// chains absent from configuration are synthesized on demand.
type Chain struct {
	ID   ChainID
	Name string
}

func SynthesizeChain(id ChainID) Chain {
	return Chain{ID: id, Name: fmt.Sprintf("Chain %d", id)}
}

type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusReconnecting Status = "reconnecting"
)

// StatusTransitionAllowed reports whether the lifecycle permits moving
// from current to next. "connected" admits "connecting" so a second
// connector may be attached while a session is live; a failed attempt
// rolls back to "connected" through the same table.
func StatusTransitionAllowed(current, next Status) bool {
	allowed := map[Status]map[Status]struct{}{
		StatusDisconnected: {
			StatusConnecting:   {},
			StatusReconnecting: {},
		},
		StatusConnecting: {
			StatusConnected:    {},
			StatusDisconnected: {},
		},
		StatusConnected: {
			StatusConnecting:   {},
			StatusDisconnected: {},
		},
		StatusReconnecting: {
			StatusConnected:    {},
			StatusDisconnected: {},
		},
	}
	if current == next {
		return true
	}
	_, ok := allowed[current][next]
	return ok
}

// Connection binds the accounts and chain reported by a connector
// session to the connector that produced them.
type Connection struct {
	Accounts  []Address
	ChainID   ChainID
	Connector Connector
}

func (c Connection) Validate() error {
	if len(c.Accounts) == 0 {
		return ErrEmptyAccounts
	}
	if c.Connector == nil {
		return fmt.Errorf("%w: connection has no connector", ErrInvalidState)
	}
	return nil
}

// State is the whole-process connection state. It is only mutated
// through StateStore.Swap with derived copies.
type State struct {
	Status      Status
	Current     string
	ChainID     ChainID
	Connections map[string]Connection
}

func NewState(chainID ChainID) State {
	return State{
		Status:      StatusDisconnected,
		ChainID:     chainID,
		Connections: map[string]Connection{},
	}
}

func (s State) Clone() State {
	next := s
	next.Connections = make(map[string]Connection, len(s.Connections))
	for uid, connection := range s.Connections {
		cloned := connection
		cloned.Accounts = append([]Address(nil), connection.Accounts...)
		next.Connections[uid] = cloned
	}
	return next
}

func (s State) Connection(uid string) (Connection, bool) {
	connection, ok := s.Connections[strings.TrimSpace(uid)]
	return connection, ok
}

func (s State) CurrentConnection() (Connection, bool) {
	if strings.TrimSpace(s.Current) == "" {
		return Connection{}, false
	}
	return s.Connection(s.Current)
}

// Validate enforces the state invariant: Current is set iff the status
// is "connected", and a non-empty connection exists for Current.
func (s State) Validate() error {
	switch s.Status {
	case StatusDisconnected, StatusConnecting, StatusConnected, StatusReconnecting:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidState, s.Status)
	}
	if s.Status == StatusConnected {
		connection, ok := s.CurrentConnection()
		if !ok {
			return fmt.Errorf("%w: connected without a current connection", ErrInvalidState)
		}
		return connection.Validate()
	}
	if strings.TrimSpace(s.Current) != "" {
		return fmt.Errorf("%w: current connector set while %s", ErrInvalidState, s.Status)
	}
	return nil
}

type WalletActivityStatus string

const (
	WalletActivityStatusOK    WalletActivityStatus = "ok"
	WalletActivityStatusError WalletActivityStatus = "error"
)

// WalletActivityEntry is one audit record per manager operation.
type WalletActivityEntry struct {
	ID           string
	Operation    string
	ConnectorID  string
	ConnectorUID string
	Accounts     int
	ChainID      ChainID
	Status       WalletActivityStatus
	Error        string
	Metadata     map[string]any
	CreatedAt    time.Time
}

type WalletActivityFilter struct {
	Operation   string
	ConnectorID string
	Status      WalletActivityStatus
	From        *time.Time
	To          *time.Time
	Page        int
	PerPage     int
}

type WalletActivityPage struct {
	Items   []WalletActivityEntry
	Page    int
	PerPage int
	Total   int
	HasNext bool
}
