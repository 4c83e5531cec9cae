package command

import (
	"context"
	"encoding/json"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-wallet/core"
)

type MutatingService interface {
	Connect(ctx context.Context, req core.ConnectRequest) (core.ConnectResult, error)
	CreateAccount(ctx context.Context, req core.CreateAccountRequest) (core.ConnectResult, error)
	UpgradeAccount(ctx context.Context, req core.UpgradeAccountRequest) (core.ConnectResult, error)
	Disconnect(ctx context.Context, req core.DisconnectRequest) error
	Reconnect(ctx context.Context, req core.ReconnectRequest) (core.ReconnectResult, error)
	GrantPermissions(ctx context.Context, req core.GrantPermissionsRequest) (core.PermissionGrant, error)
	RevokePermissions(ctx context.Context, req core.RevokePermissionsRequest) (json.RawMessage, error)
}

type ConnectCommand struct {
	service MutatingService
}

func NewConnectCommand(service MutatingService) *ConnectCommand {
	return &ConnectCommand{service: service}
}

func (c *ConnectCommand) Execute(ctx context.Context, msg ConnectMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: connect service is required")
	}
	out, err := c.service.Connect(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateAccountCommand struct {
	service MutatingService
}

func NewCreateAccountCommand(service MutatingService) *CreateAccountCommand {
	return &CreateAccountCommand{service: service}
}

func (c *CreateAccountCommand) Execute(ctx context.Context, msg CreateAccountMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: create account service is required")
	}
	out, err := c.service.CreateAccount(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpgradeAccountCommand struct {
	service MutatingService
}

func NewUpgradeAccountCommand(service MutatingService) *UpgradeAccountCommand {
	return &UpgradeAccountCommand{service: service}
}

func (c *UpgradeAccountCommand) Execute(ctx context.Context, msg UpgradeAccountMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: upgrade account service is required")
	}
	out, err := c.service.UpgradeAccount(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DisconnectCommand struct {
	service MutatingService
}

func NewDisconnectCommand(service MutatingService) *DisconnectCommand {
	return &DisconnectCommand{service: service}
}

func (c *DisconnectCommand) Execute(ctx context.Context, msg DisconnectMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: disconnect service is required")
	}
	return c.service.Disconnect(ctx, msg.Request)
}

type ReconnectCommand struct {
	service MutatingService
}

func NewReconnectCommand(service MutatingService) *ReconnectCommand {
	return &ReconnectCommand{service: service}
}

func (c *ReconnectCommand) Execute(ctx context.Context, msg ReconnectMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: reconnect service is required")
	}
	out, err := c.service.Reconnect(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type GrantPermissionsCommand struct {
	service MutatingService
}

func NewGrantPermissionsCommand(service MutatingService) *GrantPermissionsCommand {
	return &GrantPermissionsCommand{service: service}
}

func (c *GrantPermissionsCommand) Execute(ctx context.Context, msg GrantPermissionsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: grant permissions service is required")
	}
	out, err := c.service.GrantPermissions(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RevokePermissionsCommand struct {
	service MutatingService
}

func NewRevokePermissionsCommand(service MutatingService) *RevokePermissionsCommand {
	return &RevokePermissionsCommand{service: service}
}

func (c *RevokePermissionsCommand) Execute(ctx context.Context, msg RevokePermissionsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: revoke permissions service is required")
	}
	out, err := c.service.RevokePermissions(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
