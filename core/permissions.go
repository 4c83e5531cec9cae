package core

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// PermissionKey identifies the session key a permission grant is bound
// to.
type PermissionKey struct {
	PublicKey string `json:"publicKey"`
	Type      string `json:"type"`
}

// Permission is a single permission entry. Data is provider defined
// and passed through untouched.
type Permission struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// PermissionsRequest is the permission spec spread into
// wallet_connect capabilities and experimental_grantPermissions.
type PermissionsRequest struct {
	Address     *Address       `json:"address,omitempty"`
	ChainID     *ChainID       `json:"chainId,omitempty"`
	Expiry      int64          `json:"expiry,omitempty"`
	Key         *PermissionKey `json:"key,omitempty"`
	Permissions []Permission   `json:"permissions,omitempty"`
}

// PermissionGrant is the wallet's record of a granted permission set.
type PermissionGrant struct {
	Address     Address        `json:"address"`
	ChainID     *ChainID       `json:"chainId,omitempty"`
	Expiry      int64          `json:"expiry"`
	ID          string         `json:"id"`
	Key         PermissionKey  `json:"key"`
	Permissions []Permission   `json:"permissions"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// PrepareCreateAccountResult is the outcome of the prepare phase of a
// two-phase account upgrade. SignPayloads order is significant: the
// finalize call must present signatures in the same order.
type PrepareCreateAccountResult struct {
	Context      json.RawMessage `json:"context"`
	SignPayloads []hexutil.Bytes `json:"signPayloads"`
}
