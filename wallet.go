package wallet

import "github.com/goliatone/go-wallet/core"

type Config = core.Config

type ChainConfig = core.ChainConfig

type Option = core.Option

type Manager = core.Manager

type Connector = core.Connector
type ConnectorRef = core.ConnectorRef
type Provider = core.Provider
type Session = core.Session
type SigningAccount = core.SigningAccount
type RecentConnectorStore = core.RecentConnectorStore
type WalletActivitySink = core.WalletActivitySink

type Address = core.Address
type ChainID = core.ChainID
type Status = core.Status
type State = core.State
type Connection = core.Connection
type PermissionGrant = core.PermissionGrant

type ConnectRequest = core.ConnectRequest
type ConnectResult = core.ConnectResult
type CreateAccountRequest = core.CreateAccountRequest
type UpgradeAccountRequest = core.UpgradeAccountRequest
type DisconnectRequest = core.DisconnectRequest
type ReconnectRequest = core.ReconnectRequest
type ReconnectResult = core.ReconnectResult
type GrantPermissionsRequest = core.GrantPermissionsRequest
type PermissionsQuery = core.PermissionsQuery
type RevokePermissionsRequest = core.RevokePermissionsRequest
type WalletActivityEntry = core.WalletActivityEntry
type WalletActivityFilter = core.WalletActivityFilter
type WalletActivityPage = core.WalletActivityPage

var (
	ExistingConnector = core.ExistingConnector
	FactoryConnector  = core.FactoryConnector

	WithLogger               = core.WithLogger
	WithLoggerProvider       = core.WithLoggerProvider
	WithMetricsRecorder      = core.WithMetricsRecorder
	WithErrorFactory         = core.WithErrorFactory
	WithErrorMapper          = core.WithErrorMapper
	WithConfigProvider       = core.WithConfigProvider
	WithOptionsResolver      = core.WithOptionsResolver
	WithEventBus             = core.WithEventBus
	WithRegistry             = core.WithRegistry
	WithStateStore           = core.WithStateStore
	WithSubscriptionTable    = core.WithSubscriptionTable
	WithRecentConnectorStore = core.WithRecentConnectorStore
	WithActivitySink         = core.WithActivitySink
	WithClientResolver       = core.WithClientResolver
	WithSessionTerminator    = core.WithSessionTerminator
	WithPersistenceClient    = core.WithPersistenceClient
	WithRepositoryFactory    = core.WithRepositoryFactory
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	return core.NewManager(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Manager, error) {
	return core.Setup(cfg, opts...)
}
