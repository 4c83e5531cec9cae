package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-wallet/core"
)

const (
	TypeConnect           = "wallet.command.connect"
	TypeCreateAccount     = "wallet.command.account.create"
	TypeUpgradeAccount    = "wallet.command.account.upgrade"
	TypeDisconnect        = "wallet.command.disconnect"
	TypeReconnect         = "wallet.command.reconnect"
	TypeGrantPermissions  = "wallet.command.permissions.grant"
	TypeRevokePermissions = "wallet.command.permissions.revoke"
)

type ConnectMessage struct {
	Request core.ConnectRequest
}

func (ConnectMessage) Type() string { return TypeConnect }

func (m ConnectMessage) Validate() error {
	if m.Request.Connector.IsZero() {
		return fmt.Errorf("command: a connector or connector factory is required")
	}
	return nil
}

type CreateAccountMessage struct {
	Request core.CreateAccountRequest
}

func (CreateAccountMessage) Type() string { return TypeCreateAccount }

func (m CreateAccountMessage) Validate() error {
	if m.Request.Connector.IsZero() {
		return fmt.Errorf("command: a connector or connector factory is required")
	}
	return nil
}

type UpgradeAccountMessage struct {
	Request core.UpgradeAccountRequest
}

func (UpgradeAccountMessage) Type() string { return TypeUpgradeAccount }

func (m UpgradeAccountMessage) Validate() error {
	if m.Request.Connector.IsZero() {
		return fmt.Errorf("command: a connector or connector factory is required")
	}
	if m.Request.Account == nil {
		return fmt.Errorf("command: a signing account is required")
	}
	return nil
}

type DisconnectMessage struct {
	Request core.DisconnectRequest
}

func (DisconnectMessage) Type() string { return TypeDisconnect }

// Validate accepts an empty request: disconnecting without a connector
// targets the current session.
func (DisconnectMessage) Validate() error {
	return nil
}

type ReconnectMessage struct {
	Request core.ReconnectRequest
}

func (ReconnectMessage) Type() string { return TypeReconnect }

func (ReconnectMessage) Validate() error {
	return nil
}

type GrantPermissionsMessage struct {
	Request core.GrantPermissionsRequest
}

func (GrantPermissionsMessage) Type() string { return TypeGrantPermissions }

func (m GrantPermissionsMessage) Validate() error {
	if len(m.Request.Spec.Permissions) == 0 {
		return fmt.Errorf("command: at least one permission is required")
	}
	return nil
}

type RevokePermissionsMessage struct {
	Request core.RevokePermissionsRequest
}

func (RevokePermissionsMessage) Type() string { return TypeRevokePermissions }

func (m RevokePermissionsMessage) Validate() error {
	if strings.TrimSpace(m.Request.ID) == "" {
		return fmt.Errorf("command: a grant id is required")
	}
	return nil
}
