package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/ethereum/go-ethereum/common/hexutil"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Manager owns the wallet connection lifecycle: it resolves
// connectors, establishes sessions, tracks the process-wide state and
// brokers permission calls through connector-bound clients.
type Manager struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	persistenceClient any
	repositoryFactory any
	bus               evbus.Bus
	registry          Registry
	state             *StateStore
	subscriptions     *SubscriptionTable
	recentStore       RecentConnectorStore
	activitySink      WalletActivitySink
	clientResolver    ClientResolver
	terminator        SessionTerminator

	// opMu serializes connect-family mutations so state swaps compose
	// into one logical transition per operation.
	opMu sync.Mutex
}

func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	builder := defaultManagerBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("wallet", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("wallet"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.bus == nil {
		builder.bus = evbus.New()
	}
	if builder.registry == nil {
		builder.registry = NewConnectorRegistry(RegistrySetup{
			Bus:    builder.bus,
			Chains: finalConfig.chainList(),
			Logger: logger,
		})
	}
	if builder.stateStore == nil {
		builder.stateStore = NewStateStore(NewState(finalConfig.DefaultChainID()))
	}
	if builder.subscriptions == nil {
		builder.subscriptions = NewSubscriptionTable()
	}

	if (builder.recentStore == nil || builder.activitySink == nil) && builder.repositoryFactory != nil {
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			stores, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			if stores != nil {
				if builder.recentStore == nil {
					builder.recentStore = stores.RecentConnectorStore()
				}
				if builder.activitySink == nil {
					builder.activitySink = stores.ActivitySink()
				}
			}
		} else if stores, ok := builder.repositoryFactory.(StoreProvider); ok {
			if builder.recentStore == nil {
				builder.recentStore = stores.RecentConnectorStore()
			}
			if builder.activitySink == nil {
				builder.activitySink = stores.ActivitySink()
			}
		}
	}
	if builder.recentStore == nil {
		builder.recentStore = NewMemoryRecentConnectorStore()
	}
	if builder.activitySink == nil {
		builder.activitySink = NewMemoryWalletActivitySink()
	}
	if builder.terminator == nil {
		builder.terminator = connectorSessionTerminator{subscriptions: builder.subscriptions}
	}

	manager := &Manager{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorFactory:      builder.errorFactory,
		errorMapper:       builder.errorMapper,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		persistenceClient: builder.persistenceClient,
		repositoryFactory: builder.repositoryFactory,
		bus:               builder.bus,
		registry:          builder.registry,
		state:             builder.stateStore,
		subscriptions:     builder.subscriptions,
		recentStore:       builder.recentStore,
		activitySink:      builder.activitySink,
		clientResolver:    builder.clientResolver,
		terminator:        builder.terminator,
	}
	if manager.clientResolver == nil {
		manager.clientResolver = stateClientResolver{manager: manager}
	}
	return manager, nil
}

func Setup(cfg Config, opts ...Option) (*Manager, error) {
	return NewManager(cfg, opts...)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}

func (m *Manager) Config() Config {
	if m == nil {
		return Config{}
	}
	return m.config
}

func (m *Manager) Registry() Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// State returns a deep copy of the current connection state.
func (m *Manager) State() State {
	if m == nil {
		return NewState(0)
	}
	return m.state.Snapshot()
}

func (m *Manager) mapError(err error) error {
	if err == nil {
		return nil
	}
	if m == nil || m.errorMapper == nil {
		return err
	}
	if mapped := m.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}

func (m *Manager) badInput(message string) error {
	factory := m.errorFactory
	if factory == nil {
		factory = goerrors.New
	}
	return factory(message, goerrors.CategoryBadInput).WithTextCode(WalletErrorBadInput)
}

// Connect establishes a session for the referenced connector and makes
// it current. Requesting the connector that is already current fails
// with ErrAlreadyConnected; requesting a chain other than the active
// one while another session is live fails with ErrChainMismatch. Both
// checks run before any status change, so a rejected request leaves
// the state untouched.
func (m *Manager) Connect(ctx context.Context, req ConnectRequest) (result ConnectResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		err = m.mapError(err)
		m.observeOperation(ctx, startedAt, "connect", err, fields)
	}()

	connector, err := m.resolveConnectorRef(req.Connector)
	if err != nil {
		return ConnectResult{}, err
	}
	fields["connector_id"] = connector.ID()
	fields["connector_uid"] = connector.UID()

	session, err := m.connectWith(ctx, connector, req.ChainID, func(ctx context.Context, provider Provider) error {
		params := walletConnectParams{
			Capabilities: connectCapabilities{
				GrantPermissions: req.GrantPermissions,
				CreateAccount:    req.CreateAccount,
			},
		}
		_, reqErr := provider.Request(ctx, MethodWalletConnect, rpcParams(params))
		return reqErr
	})
	if err != nil {
		return ConnectResult{}, err
	}

	fields["accounts"] = len(session.Accounts)
	fields["chain_id"] = uint64(session.ChainID)
	return ConnectResult{Accounts: session.Accounts, ChainID: session.ChainID}, nil
}

// CreateAccount provisions a fresh account through the connector's
// provider and then connects it, following the same lifecycle as
// Connect.
func (m *Manager) CreateAccount(ctx context.Context, req CreateAccountRequest) (result ConnectResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		err = m.mapError(err)
		m.observeOperation(ctx, startedAt, "create_account", err, fields)
	}()

	connector, err := m.resolveConnectorRef(req.Connector)
	if err != nil {
		return ConnectResult{}, err
	}
	fields["connector_id"] = connector.ID()
	fields["connector_uid"] = connector.UID()

	session, err := m.connectWith(ctx, connector, req.ChainID, func(ctx context.Context, provider Provider) error {
		_, reqErr := provider.Request(ctx, MethodCreateAccount, rpcParams(createAccountParams{Label: req.Label}))
		return reqErr
	})
	if err != nil {
		return ConnectResult{}, err
	}

	fields["accounts"] = len(session.Accounts)
	fields["chain_id"] = uint64(session.ChainID)
	return ConnectResult{Accounts: session.Accounts, ChainID: session.ChainID}, nil
}

// UpgradeAccount upgrades an externally held account into a wallet
// account via the two-phase prepare/finalize flow, then connects the
// connector. Sign payloads are signed concurrently but their order is
// preserved in the finalize call.
func (m *Manager) UpgradeAccount(ctx context.Context, req UpgradeAccountRequest) (result ConnectResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		err = m.mapError(err)
		m.observeOperation(ctx, startedAt, "upgrade_account", err, fields)
	}()

	if req.Account == nil {
		return ConnectResult{}, m.badInput("upgrade requires a signing account")
	}
	connector, err := m.resolveConnectorRef(req.Connector)
	if err != nil {
		return ConnectResult{}, err
	}
	fields["connector_id"] = connector.ID()
	fields["connector_uid"] = connector.UID()
	fields["address"] = req.Account.Address().Hex()

	session, err := m.connectWith(ctx, connector, req.ChainID, func(ctx context.Context, provider Provider) error {
		prepParams := prepareCreateAccountParams{
			Address: req.Account.Address(),
			Capabilities: prepareCreateAccountCapabilities{
				GrantPermissions: req.GrantPermissions,
			},
			Label: req.Label,
		}
		raw, reqErr := provider.Request(ctx, MethodPrepareCreateAccount, rpcParams(prepParams))
		if reqErr != nil {
			return reqErr
		}
		var prep PrepareCreateAccountResult
		if unmarshalErr := json.Unmarshal(raw, &prep); unmarshalErr != nil {
			return fmt.Errorf("core: prepare response decode failed: %w", unmarshalErr)
		}

		signatures, signErr := signPayloads(ctx, req.Account, prep.SignPayloads)
		if signErr != nil {
			return signErr
		}

		_, reqErr = provider.Request(ctx, MethodCreateAccount, rpcParams(finalizeCreateAccountParams{
			Context:    prep.Context,
			Signatures: signatures,
		}))
		return reqErr
	})
	if err != nil {
		return ConnectResult{}, err
	}

	fields["accounts"] = len(session.Accounts)
	fields["chain_id"] = uint64(session.ChainID)
	return ConnectResult{Accounts: session.Accounts, ChainID: session.ChainID}, nil
}

// signPayloads signs every payload concurrently. The returned slice
// keeps the payload order regardless of completion order; the first
// failure by index wins.
func signPayloads(ctx context.Context, account SigningAccount, payloads []hexutil.Bytes) ([]hexutil.Bytes, error) {
	signatures := make([]hexutil.Bytes, len(payloads))
	errs := make([]error, len(payloads))

	var wg sync.WaitGroup
	for i, payload := range payloads {
		wg.Add(1)
		go func(i int, payload hexutil.Bytes) {
			defer wg.Done()
			signatures[i], errs[i] = account.SignPayload(ctx, payload)
		}(i, payload)
	}
	wg.Wait()

	for _, signErr := range errs {
		if signErr != nil {
			return nil, signErr
		}
	}
	return signatures, nil
}

// connectWith runs the shared connect lifecycle: precondition checks,
// the connecting transition, provider resolution, capability
// negotiation, connector session establishment and the final state
// commit. A failure after the connecting transition rolls the status
// back without touching connections or the current connector.
func (m *Manager) connectWith(
	ctx context.Context,
	connector Connector,
	chainID *ChainID,
	negotiate func(ctx context.Context, provider Provider) error,
) (Session, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	state := m.state.Snapshot()
	if state.Status == StatusConnected && state.Current == connector.UID() {
		return Session{}, newAlreadyConnectedError(connector)
	}

	requested := m.config.ResolveChain(state.ChainID)
	if chainID != nil {
		requested = m.config.ResolveChain(*chainID)
	}
	if requested.ID != state.ChainID {
		return Session{}, newChainMismatchError(requested, state.ChainID)
	}

	_, hadSession := state.Connection(connector.UID())

	m.state.Swap(func(s State) State {
		s.Status = StatusConnecting
		return s
	})
	connector.Emitter().Emit(EventMessage, MessageEvent{Type: MessageTypeConnecting})

	session, err := m.establishSession(ctx, connector, sessionParams{
		chainID:      &requested.ID,
		reconnecting: hadSession,
		negotiate:    negotiate,
	})
	if err != nil {
		m.rollbackConnecting()
		return Session{}, err
	}
	return session, nil
}

type sessionParams struct {
	chainID      *ChainID
	reconnecting bool
	negotiate    func(ctx context.Context, provider Provider) error
}

// establishSession resolves the provider, negotiates capabilities,
// opens the connector session, rewires event subscriptions, records
// the connector as most recent and commits the connection. The state
// commit is the last step so any failure leaves prior connections
// intact.
func (m *Manager) establishSession(ctx context.Context, connector Connector, params sessionParams) (Session, error) {
	provider, err := connector.GetProvider(ctx)
	if err != nil || provider == nil {
		return Session{}, newProviderNotFoundError(connector)
	}

	if params.negotiate != nil {
		if err := params.negotiate(ctx, provider); err != nil {
			return Session{}, err
		}
	}

	session, err := connector.Connect(ctx, ConnectorConnectOptions{
		ChainID:        params.chainID,
		IsReconnecting: params.reconnecting,
	})
	if err != nil {
		return Session{}, err
	}
	if len(session.Accounts) == 0 {
		return Session{}, ErrEmptyAccounts
	}

	m.rewireSubscriptions(connector)

	if m.recentStore != nil {
		if err := m.recentStore.SetItem(ctx, m.config.Storage.RecentConnectorKey, connector.ID()); err != nil {
			m.logError(ctx, "recent connector write failed", map[string]any{
				"connector_id": connector.ID(),
				"error":        err.Error(),
			})
		}
	}

	uid := connector.UID()
	m.state.Swap(func(s State) State {
		s.Connections[uid] = Connection{
			Accounts:  append([]Address(nil), session.Accounts...),
			ChainID:   session.ChainID,
			Connector: connector,
		}
		s.Current = uid
		s.ChainID = session.ChainID
		s.Status = StatusConnected
		return s
	})

	connector.Emitter().Emit(EventConnect, ConnectEvent{
		Accounts: append([]Address(nil), session.Accounts...),
		ChainID:  session.ChainID,
	})
	return session, nil
}

// rollbackConnecting reverts a failed connecting transition. If a
// prior session is still current the status returns to connected,
// otherwise to disconnected. Connections and the current connector
// are never touched here.
func (m *Manager) rollbackConnecting() {
	m.state.Swap(func(s State) State {
		if strings.TrimSpace(s.Current) != "" {
			s.Status = StatusConnected
			return s
		}
		s.Status = StatusDisconnected
		return s
	})
}

// rewireSubscriptions drops the connect handler and attaches change
// and disconnect handlers for the connector's uid. Re-subscribing the
// same uid replaces the previous handlers, so repeated connects stay
// idempotent.
func (m *Manager) rewireSubscriptions(connector Connector) {
	emitter := connector.Emitter()
	if emitter == nil || m.subscriptions == nil {
		return
	}
	uid := connector.UID()
	m.subscriptions.Unsubscribe(emitter, EventConnect)
	if err := m.subscriptions.Subscribe(emitter, EventChange, m.changeHandler(uid)); err != nil {
		m.logError(context.Background(), "change subscription failed", map[string]any{
			"connector_uid": uid,
			"error":         err.Error(),
		})
	}
	if err := m.subscriptions.Subscribe(emitter, EventDisconnect, m.disconnectHandler(connector)); err != nil {
		m.logError(context.Background(), "disconnect subscription failed", map[string]any{
			"connector_uid": uid,
			"error":         err.Error(),
		})
	}
}

// changeHandler applies a connector's partial session update to its
// tracked connection. Empty accounts mean unchanged accounts; a nil
// chain means an unchanged chain.
func (m *Manager) changeHandler(uid string) func(ChangeEvent) {
	return func(evt ChangeEvent) {
		m.state.Swap(func(s State) State {
			connection, ok := s.Connections[uid]
			if !ok {
				return s
			}
			if len(evt.Accounts) > 0 {
				connection.Accounts = append([]Address(nil), evt.Accounts...)
			}
			if evt.ChainID != nil {
				connection.ChainID = *evt.ChainID
				if s.Current == uid {
					s.ChainID = *evt.ChainID
				}
			}
			s.Connections[uid] = connection
			return s
		})
	}
}

// disconnectHandler removes the connector's connection when the
// connector reports its session gone. If it was current, another live
// connection is promoted deterministically; with none left the state
// returns to disconnected.
func (m *Manager) disconnectHandler(connector Connector) func(DisconnectEvent) {
	uid := connector.UID()
	return func(DisconnectEvent) {
		m.state.Swap(func(s State) State {
			return dropConnection(s, uid)
		})
		// The bus holds its lock while delivering events, so the
		// unsubscribe must happen off the dispatch goroutine.
		if emitter := connector.Emitter(); emitter != nil && m.subscriptions != nil {
			go m.subscriptions.Clear(emitter)
		}
	}
}

// dropConnection removes uid from the state and repairs current and
// status. Promotion picks the lexicographically smallest remaining uid
// so the outcome does not depend on map order.
func dropConnection(s State, uid string) State {
	delete(s.Connections, uid)
	if s.Current != uid {
		return s
	}
	s.Current = ""
	remaining := make([]string, 0, len(s.Connections))
	for candidate := range s.Connections {
		remaining = append(remaining, candidate)
	}
	if len(remaining) == 0 {
		s.Status = StatusDisconnected
		return s
	}
	sort.Strings(remaining)
	s.Current = remaining[0]
	s.ChainID = s.Connections[s.Current].ChainID
	s.Status = StatusConnected
	return s
}

// Disconnect tears down the referenced connector's session, or the
// current one when no connector is given. Provider-side and store-side
// cleanup is best-effort; disconnecting with nothing connected is a
// no-op.
func (m *Manager) Disconnect(ctx context.Context, req DisconnectRequest) (err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		err = m.mapError(err)
		m.observeOperation(ctx, startedAt, "disconnect", err, fields)
	}()

	m.opMu.Lock()
	defer m.opMu.Unlock()

	connector := req.Connector
	if connector == nil {
		if connection, ok := m.state.Snapshot().CurrentConnection(); ok {
			connector = connection.Connector
		}
	}
	if connector == nil {
		return nil
	}
	fields["connector_id"] = connector.ID()
	fields["connector_uid"] = connector.UID()

	// Resolve the provider before teardown closes the session.
	provider, providerErr := connector.GetProvider(ctx)
	if providerErr != nil {
		provider = nil
	}

	if m.terminator != nil {
		if err := m.terminator.Teardown(ctx, connector); err != nil {
			return err
		}
	}

	if provider != nil {
		if _, reqErr := provider.Request(ctx, MethodWalletDisconnect, nil); reqErr != nil {
			m.logError(ctx, "wallet_disconnect failed", map[string]any{
				"connector_id": connector.ID(),
				"error":        reqErr.Error(),
			})
		}
	}

	uid := connector.UID()
	wasCurrent := false
	m.state.Swap(func(s State) State {
		wasCurrent = s.Current == uid
		return dropConnection(s, uid)
	})

	if wasCurrent && m.recentStore != nil {
		if err := m.recentStore.RemoveItem(ctx, m.config.Storage.RecentConnectorKey); err != nil {
			m.logError(ctx, "recent connector clear failed", map[string]any{
				"connector_id": connector.ID(),
				"error":        err.Error(),
			})
		}
	}

	connector.Emitter().Emit(EventDisconnect, DisconnectEvent{})
	return nil
}

// Reconnect restores sessions for previously used connectors without
// user interaction. The most recently used connector, as recorded in
// the RecentConnectorStore, is tried first; connectors that fail to
// produce a provider or a session are skipped.
func (m *Manager) Reconnect(ctx context.Context, req ReconnectRequest) (result ReconnectResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		err = m.mapError(err)
		m.observeOperation(ctx, startedAt, "reconnect", err, fields)
	}()

	m.opMu.Lock()
	defer m.opMu.Unlock()

	state := m.state.Snapshot()
	if state.Status == StatusConnected {
		for _, uid := range sortedConnectionUIDs(state) {
			connection := state.Connections[uid]
			result.Connections = append(result.Connections, RestoredConnection{
				ConnectorUID: uid,
				ConnectorID:  connection.Connector.ID(),
				Accounts:     append([]Address(nil), connection.Accounts...),
				ChainID:      connection.ChainID,
			})
		}
		fields["restored"] = len(result.Connections)
		return result, nil
	}

	candidates := req.Connectors
	if len(candidates) == 0 {
		candidates = m.registry.List()
	}
	if len(candidates) == 0 {
		fields["restored"] = 0
		return ReconnectResult{}, nil
	}

	if m.recentStore != nil {
		if recentID, ok, getErr := m.recentStore.GetItem(ctx, m.config.Storage.RecentConnectorKey); getErr == nil && ok {
			candidates = moveConnectorFirst(candidates, recentID)
		}
	}

	m.state.Swap(func(s State) State {
		s.Status = StatusReconnecting
		return s
	})

	for _, connector := range candidates {
		if connector == nil {
			continue
		}
		provider, providerErr := connector.GetProvider(ctx)
		if providerErr != nil || provider == nil {
			continue
		}
		session, connectErr := connector.Connect(ctx, ConnectorConnectOptions{IsReconnecting: true})
		if connectErr != nil || len(session.Accounts) == 0 {
			continue
		}

		m.rewireSubscriptions(connector)

		uid := connector.UID()
		first := len(result.Connections) == 0
		m.state.Swap(func(s State) State {
			s.Connections[uid] = Connection{
				Accounts:  append([]Address(nil), session.Accounts...),
				ChainID:   session.ChainID,
				Connector: connector,
			}
			if first {
				s.Current = uid
				s.ChainID = session.ChainID
			}
			return s
		})
		result.Connections = append(result.Connections, RestoredConnection{
			ConnectorUID: uid,
			ConnectorID:  connector.ID(),
			Accounts:     append([]Address(nil), session.Accounts...),
			ChainID:      session.ChainID,
		})
	}

	m.state.Swap(func(s State) State {
		if strings.TrimSpace(s.Current) != "" {
			s.Status = StatusConnected
			return s
		}
		s.Status = StatusDisconnected
		return s
	})

	fields["restored"] = len(result.Connections)
	return result, nil
}

func sortedConnectionUIDs(s State) []string {
	uids := make([]string, 0, len(s.Connections))
	for uid := range s.Connections {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids
}

// moveConnectorFirst reorders candidates so the connector whose id
// matches recentID comes first, keeping the relative order of the
// rest.
func moveConnectorFirst(candidates []Connector, recentID string) []Connector {
	recentID = strings.TrimSpace(recentID)
	if recentID == "" {
		return candidates
	}
	for i, connector := range candidates {
		if connector == nil || connector.ID() != recentID {
			continue
		}
		if i == 0 {
			return candidates
		}
		reordered := make([]Connector, 0, len(candidates))
		reordered = append(reordered, connector)
		reordered = append(reordered, candidates[:i]...)
		reordered = append(reordered, candidates[i+1:]...)
		return reordered
	}
	return candidates
}

// GrantPermissions asks the wallet to grant the given permission set.
// Address and chain default to the resolved client's account and the
// active chain when the spec leaves them unset.
func (m *Manager) GrantPermissions(ctx context.Context, req GrantPermissionsRequest) (grant PermissionGrant, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		err = m.mapError(err)
		m.observeOperation(ctx, startedAt, "grant_permissions", err, fields)
	}()

	if len(req.Spec.Permissions) == 0 {
		return PermissionGrant{}, m.badInput("permission grant requires at least one permission")
	}

	client, err := m.resolveClient(ctx, ClientRequest{
		Address:   req.Address,
		ChainID:   req.ChainID,
		Connector: req.Connector,
	})
	if err != nil {
		return PermissionGrant{}, err
	}

	spec := req.Spec
	if spec.Address == nil {
		account := client.Account()
		spec.Address = &account
	}
	if spec.ChainID == nil {
		spec.ChainID = req.ChainID
	}
	fields["address"] = spec.Address.Hex()

	raw, err := client.Request(ctx, MethodGrantPermissions, rpcParams(spec))
	if err != nil {
		return PermissionGrant{}, err
	}
	if err := json.Unmarshal(raw, &grant); err != nil {
		return PermissionGrant{}, fmt.Errorf("core: grant response decode failed: %w", err)
	}
	fields["grant_id"] = grant.ID
	return grant, nil
}

// Permissions lists the wallet's active permission grants. The read
// always goes to the wallet, never to a local cache, so revocations
// made elsewhere are visible immediately.
func (m *Manager) Permissions(ctx context.Context, query PermissionsQuery) (grants []PermissionGrant, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		err = m.mapError(err)
		m.observeOperation(ctx, startedAt, "permissions", err, fields)
	}()

	client, err := m.resolveClient(ctx, ClientRequest{
		Address:   query.Address,
		ChainID:   query.ChainID,
		Connector: query.Connector,
	})
	if err != nil {
		return nil, err
	}

	raw, err := client.Request(ctx, MethodPermissions, rpcParams(permissionsParams{Address: query.Address}))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &grants); err != nil {
		return nil, fmt.Errorf("core: permissions response decode failed: %w", err)
	}
	fields["grants"] = len(grants)
	return grants, nil
}

// RevokePermissions revokes a single grant by id and returns the
// wallet's raw response.
func (m *Manager) RevokePermissions(ctx context.Context, req RevokePermissionsRequest) (raw json.RawMessage, err error) {
	startedAt := time.Now()
	fields := map[string]any{"grant_id": req.ID}
	defer func() {
		err = m.mapError(err)
		m.observeOperation(ctx, startedAt, "revoke_permissions", err, fields)
	}()

	if strings.TrimSpace(req.ID) == "" {
		return nil, m.badInput("permission revocation requires a grant id")
	}

	client, err := m.resolveClient(ctx, ClientRequest{
		Address:   req.Address,
		ChainID:   req.ChainID,
		Connector: req.Connector,
	})
	if err != nil {
		return nil, err
	}

	raw, err = client.Request(ctx, MethodRevokePermissions, rpcParams(revokePermissionsParams{
		Address: req.Address,
		ID:      req.ID,
	}))
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Activity pages through the audit trail recorded by the activity
// sink.
func (m *Manager) Activity(ctx context.Context, filter WalletActivityFilter) (page WalletActivityPage, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		err = m.mapError(err)
		m.observeOperation(ctx, startedAt, "activity", err, fields)
	}()

	if m.activitySink == nil {
		return WalletActivityPage{Page: 1, PerPage: 25, Items: []WalletActivityEntry{}}, nil
	}
	page, err = m.activitySink.List(ctx, filter)
	if err != nil {
		return WalletActivityPage{}, err
	}
	fields["items"] = len(page.Items)
	return page, nil
}

func (m *Manager) resolveClient(ctx context.Context, req ClientRequest) (Client, error) {
	resolver := m.clientResolver
	if resolver == nil {
		resolver = stateClientResolver{manager: m}
	}
	return resolver.GetConnectorClient(ctx, req)
}

// resolveConnectorRef normalizes the "connector or factory" parameter
// into a registered connector instance.
func (m *Manager) resolveConnectorRef(ref ConnectorRef) (Connector, error) {
	if ref.IsZero() {
		return nil, m.badInput("a connector or connector factory is required")
	}
	if ref.connector != nil {
		if err := m.registry.Register(ref.connector); err != nil {
			return nil, err
		}
		return ref.connector, nil
	}
	return m.registry.Setup(ref.factory)
}

// stateClientResolver is the default ClientResolver: it binds the
// provider of the requested (or current) connector to the requested
// (or first session) account.
type stateClientResolver struct {
	manager *Manager
}

func (r stateClientResolver) GetConnectorClient(ctx context.Context, req ClientRequest) (Client, error) {
	state := r.manager.state.Snapshot()

	connector := req.Connector
	var connection Connection
	if connector != nil {
		connection, _ = state.Connection(connector.UID())
	} else {
		current, ok := state.CurrentConnection()
		if !ok {
			return nil, newClientProviderNotFound()
		}
		connector = current.Connector
		connection = current
	}

	provider, err := connector.GetProvider(ctx)
	if err != nil || provider == nil {
		return nil, newProviderNotFoundError(connector)
	}

	var account Address
	if req.Address != nil {
		account = *req.Address
	} else if len(connection.Accounts) > 0 {
		account = connection.Accounts[0]
	}
	return providerClient{provider: provider, account: account}, nil
}

func newClientProviderNotFound() error {
	return goerrors.Wrap(
		ErrProviderNotFound,
		goerrors.CategoryNotFound,
		"no connector is connected",
	).WithTextCode(WalletErrorProviderNotFound)
}

type providerClient struct {
	provider Provider
	account  Address
}

func (c providerClient) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return c.provider.Request(ctx, method, params)
}

func (c providerClient) Account() Address {
	return c.account
}

// connectorSessionTerminator is the default SessionTerminator: it
// clears the manager's subscriptions for the connector and closes the
// connector session.
type connectorSessionTerminator struct {
	subscriptions *SubscriptionTable
}

func (t connectorSessionTerminator) Teardown(ctx context.Context, connector Connector) error {
	if connector == nil {
		return nil
	}
	if emitter := connector.Emitter(); emitter != nil && t.subscriptions != nil {
		t.subscriptions.Clear(emitter)
	}
	return connector.Disconnect(ctx)
}

var (
	_ WalletService     = (*Manager)(nil)
	_ ClientResolver    = stateClientResolver{}
	_ Client            = providerClient{}
	_ SessionTerminator = connectorSessionTerminator{}
)
