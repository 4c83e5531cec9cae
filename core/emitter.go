package core

import (
	"fmt"
	"strings"

	evbus "github.com/asaskevich/EventBus"
)

// Connector lifecycle events.
const (
	EventMessage    = "message"
	EventConnect    = "connect"
	EventChange     = "change"
	EventDisconnect = "disconnect"
)

// MessageTypeConnecting is emitted on a connector's emitter when a
// connect-family operation enters the "connecting" phase.
const MessageTypeConnecting = "connecting"

type ConnectEvent struct {
	Accounts []Address
	ChainID  ChainID
}

// ChangeEvent carries a partial update: a nil ChainID means the chain
// did not change, an empty Accounts slice means the accounts did not.
type ChangeEvent struct {
	Accounts []Address
	ChainID  *ChainID
}

type DisconnectEvent struct {
	Err error
}

type MessageEvent struct {
	Type string
	Data any
}

// Emitter scopes a shared event bus to a single connector uid. Topics
// are namespaced as "<uid>.<event>" so many connectors can share one
// bus.
type Emitter struct {
	uid string
	bus evbus.Bus
}

func NewEmitter(uid string, bus evbus.Bus) *Emitter {
	if bus == nil {
		bus = evbus.New()
	}
	return &Emitter{uid: strings.TrimSpace(uid), bus: bus}
}

func (e *Emitter) UID() string {
	if e == nil {
		return ""
	}
	return e.uid
}

func (e *Emitter) topic(event string) string {
	return e.uid + "." + strings.TrimSpace(event)
}

func (e *Emitter) Emit(event string, payload any) {
	if e == nil || e.bus == nil {
		return
	}
	e.bus.Publish(e.topic(event), payload)
}

func (e *Emitter) On(event string, handler any) error {
	if e == nil || e.bus == nil {
		return fmt.Errorf("core: emitter is not configured")
	}
	return e.bus.Subscribe(e.topic(event), handler)
}

func (e *Emitter) Off(event string, handler any) error {
	if e == nil || e.bus == nil {
		return fmt.Errorf("core: emitter is not configured")
	}
	return e.bus.Unsubscribe(e.topic(event), handler)
}
