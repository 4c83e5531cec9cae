package core

import (
	"context"
	"fmt"
	"strings"

	evbus "github.com/asaskevich/EventBus"
	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

// StoreProvider hands out the persistence-backed stores built by a
// repository factory.
type StoreProvider interface {
	RecentConnectorStore() RecentConnectorStore
	ActivitySink() WalletActivitySink
}

// RepositoryStoreFactory builds stores from a persistence client,
// usually a *bun.DB or a go-persistence-bun client wrapping one.
type RepositoryStoreFactory interface {
	BuildStores(client any) (StoreProvider, error)
}

type managerBuilder struct {
	runtimeConfig     Config
	persistenceClient any
	repositoryFactory any
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	bus               evbus.Bus
	registry          Registry
	stateStore        *StateStore
	subscriptions     *SubscriptionTable
	recentStore       RecentConnectorStore
	activitySink      WalletActivitySink
	clientResolver    ClientResolver
	terminator        SessionTerminator
}

type Option func(*managerBuilder)

func WithLogger(logger Logger) Option {
	return func(b *managerBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *managerBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *managerBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *managerBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *managerBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *managerBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *managerBuilder) {
		b.optionsResolver = resolver
	}
}

func WithEventBus(bus evbus.Bus) Option {
	return func(b *managerBuilder) {
		b.bus = bus
	}
}

func WithRegistry(registry Registry) Option {
	return func(b *managerBuilder) {
		b.registry = registry
	}
}

func WithStateStore(store *StateStore) Option {
	return func(b *managerBuilder) {
		b.stateStore = store
	}
}

func WithSubscriptionTable(table *SubscriptionTable) Option {
	return func(b *managerBuilder) {
		b.subscriptions = table
	}
}

func WithRecentConnectorStore(store RecentConnectorStore) Option {
	return func(b *managerBuilder) {
		b.recentStore = store
	}
}

func WithActivitySink(sink WalletActivitySink) Option {
	return func(b *managerBuilder) {
		b.activitySink = sink
	}
}

func WithClientResolver(resolver ClientResolver) Option {
	return func(b *managerBuilder) {
		b.clientResolver = resolver
	}
}

func WithSessionTerminator(terminator SessionTerminator) Option {
	return func(b *managerBuilder) {
		b.terminator = terminator
	}
}

func WithPersistenceClient(client any) Option {
	return func(b *managerBuilder) {
		b.persistenceClient = client
	}
}

func WithRepositoryFactory(factory any) Option {
	return func(b *managerBuilder) {
		b.repositoryFactory = factory
	}
}

func defaultManagerBuilder(runtime Config) managerBuilder {
	loggerProvider, logger := glog.Resolve("wallet", nil, nil)
	return managerBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorFactory:    goerrors.New,
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return walletErrorMapper(err)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}
	if includeZero || len(cfg.Chains) > 0 {
		chains := make([]map[string]any, 0, len(cfg.Chains))
		for _, chain := range cfg.Chains {
			chains = append(chains, map[string]any{
				"id":   chain.ID,
				"name": chain.Name,
			})
		}
		layer["chains"] = chains
	}
	if includeZero || strings.TrimSpace(cfg.Storage.RecentConnectorKey) != "" {
		layer["storage"] = map[string]any{
			"recent_connector_key": cfg.Storage.RecentConnectorKey,
		}
	}
	return layer
}
