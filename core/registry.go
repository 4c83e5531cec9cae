package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	evbus "github.com/asaskevich/EventBus"
	"github.com/google/uuid"
)

// ConnectorRegistry mints uids, wires emitters and keeps track of
// every connector the manager may be asked to use.
type ConnectorRegistry struct {
	mu         sync.RWMutex
	bus        evbus.Bus
	chains     []Chain
	logger     Logger
	connectors map[string]Connector
}

type RegistrySetup struct {
	Bus    evbus.Bus
	Chains []Chain
	Logger Logger
}

func NewConnectorRegistry(setup RegistrySetup) *ConnectorRegistry {
	bus := setup.Bus
	if bus == nil {
		bus = evbus.New()
	}
	return &ConnectorRegistry{
		bus:        bus,
		chains:     append([]Chain(nil), setup.Chains...),
		logger:     setup.Logger,
		connectors: make(map[string]Connector),
	}
}

// Setup instantiates a connector from its factory, handing it a fresh
// uid and an emitter scoped to that uid, then registers it.
func (r *ConnectorRegistry) Setup(factory ConnectorFactory) (Connector, error) {
	if r == nil {
		return nil, fmt.Errorf("core: connector registry is not configured")
	}
	if factory == nil {
		return nil, fmt.Errorf("core: connector factory is required")
	}

	uid := uuid.NewString()
	connector, err := factory(ConnectorSetup{
		UID:     uid,
		Emitter: NewEmitter(uid, r.bus),
		Chains:  append([]Chain(nil), r.chains...),
		Logger:  r.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("core: connector setup failed: %w", err)
	}
	if connector == nil {
		return nil, fmt.Errorf("core: connector factory returned nil")
	}
	if connector.UID() != uid {
		return nil, fmt.Errorf("core: connector %q did not adopt its assigned uid", connector.ID())
	}
	if err := r.Register(connector); err != nil {
		return nil, err
	}
	return connector, nil
}

// Register adds an externally constructed connector. Registering the
// same uid twice is a no-op as long as it is the same instance.
func (r *ConnectorRegistry) Register(connector Connector) error {
	if r == nil {
		return fmt.Errorf("core: connector registry is not configured")
	}
	if connector == nil {
		return fmt.Errorf("core: connector is nil")
	}
	uid := strings.TrimSpace(connector.UID())
	if uid == "" {
		return fmt.Errorf("core: connector uid is required")
	}
	if strings.TrimSpace(connector.ID()) == "" {
		return fmt.Errorf("core: connector id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.connectors[uid]; ok {
		if existing != connector {
			return fmt.Errorf("core: connector uid already registered: %s", uid)
		}
		return nil
	}
	r.connectors[uid] = connector
	return nil
}

func (r *ConnectorRegistry) Get(uid string) (Connector, bool) {
	if r == nil {
		return nil, false
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, false
	}
	r.mu.RLock()
	connector, ok := r.connectors[uid]
	r.mu.RUnlock()
	return connector, ok
}

// List returns registered connectors ordered by id, then uid, so
// iteration order is deterministic.
func (r *ConnectorRegistry) List() []Connector {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	out := make([]Connector, 0, len(r.connectors))
	for _, connector := range r.connectors {
		out = append(out, connector)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ID() != out[j].ID() {
			return out[i].ID() < out[j].ID()
		}
		return out[i].UID() < out[j].UID()
	})
	return out
}

// Bus exposes the shared event bus so callers can construct emitters
// for connectors built outside the registry.
func (r *ConnectorRegistry) Bus() evbus.Bus {
	if r == nil {
		return nil
	}
	return r.bus
}

var _ Registry = (*ConnectorRegistry)(nil)
