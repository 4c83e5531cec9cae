package core

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Wallet RPC methods consumed by the manager. Every call is issued as
// a single-element params array against the resolved provider or
// client.
const (
	MethodWalletConnect        = "wallet_connect"
	MethodWalletDisconnect     = "wallet_disconnect"
	MethodCreateAccount        = "experimental_createAccount"
	MethodPrepareCreateAccount = "experimental_prepareCreateAccount"
	MethodGrantPermissions     = "experimental_grantPermissions"
	MethodPermissions          = "experimental_permissions"
	MethodRevokePermissions    = "experimental_revokePermissions"
)

type connectCapabilities struct {
	GrantPermissions *PermissionsRequest      `json:"grantPermissions,omitempty"`
	CreateAccount    *CreateAccountCapability `json:"createAccount,omitempty"`
}

type walletConnectParams struct {
	Capabilities connectCapabilities `json:"capabilities"`
}

type createAccountParams struct {
	Label string `json:"label,omitempty"`
}

type prepareCreateAccountCapabilities struct {
	GrantPermissions *PermissionsRequest `json:"grantPermissions,omitempty"`
}

type prepareCreateAccountParams struct {
	Address      Address                          `json:"address"`
	Capabilities prepareCreateAccountCapabilities `json:"capabilities"`
	Label        string                           `json:"label,omitempty"`
}

type finalizeCreateAccountParams struct {
	Context    json.RawMessage `json:"context"`
	Signatures []hexutil.Bytes `json:"signatures"`
}

type permissionsParams struct {
	Address *Address `json:"address,omitempty"`
}

type revokePermissionsParams struct {
	Address *Address `json:"address,omitempty"`
	ID      string   `json:"id"`
}

func rpcParams(payload any) []any {
	if payload == nil {
		return nil
	}
	return []any{payload}
}
