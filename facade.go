package wallet

import (
	"fmt"

	walletcommand "github.com/goliatone/go-wallet/command"
	walletquery "github.com/goliatone/go-wallet/query"
)

// CommandQueryService is the surface the facade dispatches against. The
// core Manager satisfies it out of the box.
type CommandQueryService interface {
	walletcommand.MutatingService
	walletquery.PermissionsReader
	walletquery.StateReader
}

type Commands struct {
	Connect           *walletcommand.ConnectCommand
	CreateAccount     *walletcommand.CreateAccountCommand
	UpgradeAccount    *walletcommand.UpgradeAccountCommand
	Disconnect        *walletcommand.DisconnectCommand
	Reconnect         *walletcommand.ReconnectCommand
	GrantPermissions  *walletcommand.GrantPermissionsCommand
	RevokePermissions *walletcommand.RevokePermissionsCommand
}

type Queries struct {
	Permissions        *walletquery.PermissionsQuery
	State              *walletquery.StateQuery
	ListWalletActivity *walletquery.ListWalletActivityQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	activityReader walletquery.WalletActivityReader
}

func WithActivityReader(reader walletquery.WalletActivityReader) FacadeOption {
	return func(options *facadeOptions) {
		options.activityReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("wallet: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.activityReader
	if reader == nil {
		reader, _ = service.(walletquery.WalletActivityReader)
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		Connect:           walletcommand.NewConnectCommand(service),
		CreateAccount:     walletcommand.NewCreateAccountCommand(service),
		UpgradeAccount:    walletcommand.NewUpgradeAccountCommand(service),
		Disconnect:        walletcommand.NewDisconnectCommand(service),
		Reconnect:         walletcommand.NewReconnectCommand(service),
		GrantPermissions:  walletcommand.NewGrantPermissionsCommand(service),
		RevokePermissions: walletcommand.NewRevokePermissionsCommand(service),
	}
	facade.queries = Queries{
		Permissions:        walletquery.NewPermissionsQuery(service),
		State:              walletquery.NewStateQuery(service),
		ListWalletActivity: walletquery.NewListWalletActivityQuery(reader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
