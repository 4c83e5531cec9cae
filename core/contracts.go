package core

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
	glog "github.com/goliatone/go-logger/glog"
)

// Provider accepts JSON-RPC style requests against the wallet.
type Provider interface {
	Request(ctx context.Context, method string, params any) (json.RawMessage, error)
}

// Session is what a connector reports after establishing (or
// re-establishing) a wallet session.
type Session struct {
	Accounts []Address
	ChainID  ChainID
}

type ConnectorConnectOptions struct {
	ChainID        *ChainID
	IsReconnecting bool
}

// Connector abstracts a wallet integration capable of producing a
// provider and a session. Implementations receive their uid and
// emitter from the registry at setup time and must echo the uid back.
type Connector interface {
	UID() string
	ID() string
	GetProvider(ctx context.Context) (Provider, error)
	Connect(ctx context.Context, opts ConnectorConnectOptions) (Session, error)
	Disconnect(ctx context.Context) error
	Emitter() *Emitter
}

// ConnectorSetup is handed to a ConnectorFactory when the registry
// instantiates a concrete connector.
type ConnectorSetup struct {
	UID     string
	Emitter *Emitter
	Chains  []Chain
	Logger  Logger
}

type ConnectorFactory func(setup ConnectorSetup) (Connector, error)

// ConnectorRef is the tagged "connector or factory" parameter:
// exactly one of the two variants is set, resolved once at entry.
type ConnectorRef struct {
	connector Connector
	factory   ConnectorFactory
}

func ExistingConnector(connector Connector) ConnectorRef {
	return ConnectorRef{connector: connector}
}

func FactoryConnector(factory ConnectorFactory) ConnectorRef {
	return ConnectorRef{factory: factory}
}

func (r ConnectorRef) IsZero() bool {
	return r.connector == nil && r.factory == nil
}

type Registry interface {
	Setup(factory ConnectorFactory) (Connector, error)
	Register(connector Connector) error
	Get(uid string) (Connector, bool)
	List() []Connector
}

// RecentConnectorStore persists the most recently used connector id.
// All writes are best-effort from the manager's point of view.
type RecentConnectorStore interface {
	SetItem(ctx context.Context, key string, value string) error
	GetItem(ctx context.Context, key string) (string, bool, error)
	RemoveItem(ctx context.Context, key string) error
}

// SigningAccount is the externally supplied account used by the
// two-phase account upgrade.
type SigningAccount interface {
	Address() Address
	SignPayload(ctx context.Context, payload hexutil.Bytes) (hexutil.Bytes, error)
}

// Client is a request capability bound to an account, chain and
// connector, produced by the ClientResolver.
type Client interface {
	Provider
	Account() Address
}

type ClientRequest struct {
	Address   *Address
	ChainID   *ChainID
	Connector Connector
}

type ClientResolver interface {
	GetConnectorClient(ctx context.Context, req ClientRequest) (Client, error)
}

// SessionTerminator performs connector-level teardown: closing the
// connector session, dropping listeners and clearing shared state.
type SessionTerminator interface {
	Teardown(ctx context.Context, connector Connector) error
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type WalletActivitySink interface {
	Record(ctx context.Context, entry WalletActivityEntry) error
	List(ctx context.Context, filter WalletActivityFilter) (WalletActivityPage, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// ConnectRequest drives Connect. Capabilities are negotiated through
// wallet_connect before the connector session is established.
type ConnectRequest struct {
	Connector        ConnectorRef
	ChainID          *ChainID
	GrantPermissions *PermissionsRequest
	CreateAccount    *CreateAccountCapability
}

type ConnectResult struct {
	Accounts []Address
	ChainID  ChainID
}

type CreateAccountCapability struct {
	Label string `json:"label,omitempty"`
}

type CreateAccountRequest struct {
	Connector ConnectorRef
	ChainID   *ChainID
	Label     string
}

type UpgradeAccountRequest struct {
	Connector        ConnectorRef
	Account          SigningAccount
	ChainID          *ChainID
	GrantPermissions *PermissionsRequest
	Label            string
}

type DisconnectRequest struct {
	Connector Connector
}

type ReconnectRequest struct {
	Connectors []Connector
}

type RestoredConnection struct {
	ConnectorUID string
	ConnectorID  string
	Accounts     []Address
	ChainID      ChainID
}

type ReconnectResult struct {
	Connections []RestoredConnection
}

type GrantPermissionsRequest struct {
	Address   *Address
	ChainID   *ChainID
	Connector Connector
	Spec      PermissionsRequest
}

type PermissionsQuery struct {
	Address   *Address
	ChainID   *ChainID
	Connector Connector
}

type RevokePermissionsRequest struct {
	Address   *Address
	ChainID   *ChainID
	Connector Connector
	ID        string
}

// WalletService is the full surface the facade composes over.
type WalletService interface {
	Connect(ctx context.Context, req ConnectRequest) (ConnectResult, error)
	CreateAccount(ctx context.Context, req CreateAccountRequest) (ConnectResult, error)
	UpgradeAccount(ctx context.Context, req UpgradeAccountRequest) (ConnectResult, error)
	Disconnect(ctx context.Context, req DisconnectRequest) error
	Reconnect(ctx context.Context, req ReconnectRequest) (ReconnectResult, error)
	GrantPermissions(ctx context.Context, req GrantPermissionsRequest) (PermissionGrant, error)
	Permissions(ctx context.Context, req PermissionsQuery) ([]PermissionGrant, error)
	RevokePermissions(ctx context.Context, req RevokePermissionsRequest) (json.RawMessage, error)
}
