package query

import (
	"context"

	"github.com/goliatone/go-wallet/core"
)

type PermissionsReader interface {
	Permissions(ctx context.Context, query core.PermissionsQuery) ([]core.PermissionGrant, error)
}

type StateReader interface {
	State() core.State
}

type WalletActivityReader interface {
	Activity(ctx context.Context, filter core.WalletActivityFilter) (core.WalletActivityPage, error)
}

type PermissionsQuery struct {
	reader PermissionsReader
}

func NewPermissionsQuery(reader PermissionsReader) *PermissionsQuery {
	return &PermissionsQuery{reader: reader}
}

func (q *PermissionsQuery) Query(ctx context.Context, msg PermissionsMessage) ([]core.PermissionGrant, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: permissions reader is required")
	}
	return q.reader.Permissions(ctx, msg.Query)
}

type StateQuery struct {
	reader StateReader
}

func NewStateQuery(reader StateReader) *StateQuery {
	return &StateQuery{reader: reader}
}

func (q *StateQuery) Query(_ context.Context, _ StateMessage) (core.State, error) {
	if q == nil || q.reader == nil {
		return core.State{}, queryDependencyError("query: state reader is required")
	}
	return q.reader.State(), nil
}

type ListWalletActivityQuery struct {
	reader WalletActivityReader
}

func NewListWalletActivityQuery(reader WalletActivityReader) *ListWalletActivityQuery {
	return &ListWalletActivityQuery{reader: reader}
}

func (q *ListWalletActivityQuery) Query(
	ctx context.Context,
	msg ListWalletActivityMessage,
) (core.WalletActivityPage, error) {
	if q == nil || q.reader == nil {
		return core.WalletActivityPage{}, queryDependencyError("query: wallet activity reader is required")
	}
	return q.reader.Activity(ctx, msg.Filter)
}
