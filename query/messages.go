package query

import (
	"fmt"

	"github.com/goliatone/go-wallet/core"
)

const (
	TypePermissions        = "wallet.query.permissions.list"
	TypeState              = "wallet.query.state.get"
	TypeListWalletActivity = "wallet.query.activity.list"
)

type PermissionsMessage struct {
	Query core.PermissionsQuery
}

func (PermissionsMessage) Type() string { return TypePermissions }

// Validate accepts an empty query: address, chain and connector all
// default to the current session.
func (PermissionsMessage) Validate() error {
	return nil
}

type StateMessage struct{}

func (StateMessage) Type() string { return TypeState }

func (StateMessage) Validate() error { return nil }

type ListWalletActivityMessage struct {
	Filter core.WalletActivityFilter
}

func (ListWalletActivityMessage) Type() string { return TypeListWalletActivity }

func (m ListWalletActivityMessage) Validate() error {
	if m.Filter.Page < 0 {
		return fmt.Errorf("query: page must be >= 0")
	}
	if m.Filter.PerPage < 0 {
		return fmt.Errorf("query: per_page must be >= 0")
	}
	return nil
}
