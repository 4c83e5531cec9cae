package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	WalletErrorBadInput         = "WALLET_BAD_INPUT"
	WalletErrorAlreadyConnected = "WALLET_ALREADY_CONNECTED"
	WalletErrorChainMismatch    = "WALLET_CHAIN_MISMATCH"
	WalletErrorProviderNotFound = "WALLET_PROVIDER_NOT_FOUND"
	WalletErrorInternal         = "WALLET_INTERNAL_ERROR"
)

var (
	// ErrAlreadyConnected is raised when a connect-family operation
	// targets the connector that is already current.
	ErrAlreadyConnected = errors.New("core: connector is already connected")
	// ErrChainMismatch is raised when a requested chain differs from
	// the active state chain.
	ErrChainMismatch = errors.New("core: requested chain does not match the active chain")
	// ErrProviderNotFound is raised when a connector yields no
	// provider during a connect-family operation.
	ErrProviderNotFound = errors.New("core: connector returned no provider")
)

func newAlreadyConnectedError(connector Connector) error {
	return goerrors.Wrap(
		ErrAlreadyConnected,
		goerrors.CategoryConflict,
		fmt.Sprintf("connector %q is already connected", connector.ID()),
	).
		WithTextCode(WalletErrorAlreadyConnected).
		WithMetadata(map[string]any{
			"connector_id":  connector.ID(),
			"connector_uid": connector.UID(),
		})
}

func newChainMismatchError(requested Chain, active ChainID) error {
	return goerrors.Wrap(
		ErrChainMismatch,
		goerrors.CategoryBadInput,
		fmt.Sprintf("requested chain %d (%s) does not match active chain %d", requested.ID, requested.Name, active),
	).
		WithTextCode(WalletErrorChainMismatch).
		WithMetadata(map[string]any{
			"requested_chain_id":   uint64(requested.ID),
			"requested_chain_name": requested.Name,
			"active_chain_id":      uint64(active),
		})
}

func newProviderNotFoundError(connector Connector) error {
	return goerrors.Wrap(
		ErrProviderNotFound,
		goerrors.CategoryNotFound,
		fmt.Sprintf("connector %q produced no provider", connector.ID()),
	).
		WithTextCode(WalletErrorProviderNotFound).
		WithMetadata(map[string]any{
			"connector_id":  connector.ID(),
			"connector_uid": connector.UID(),
		})
}

func walletErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureWalletErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrAlreadyConnected):
		return newWalletError(err.Error(), goerrors.CategoryConflict, WalletErrorAlreadyConnected)
	case errors.Is(err, ErrChainMismatch):
		return newWalletError(err.Error(), goerrors.CategoryBadInput, WalletErrorChainMismatch)
	case errors.Is(err, ErrProviderNotFound):
		return newWalletError(err.Error(), goerrors.CategoryNotFound, WalletErrorProviderNotFound)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "no provider"), strings.Contains(msg, "provider") && strings.Contains(msg, "not found"):
		return newWalletError(err.Error(), goerrors.CategoryNotFound, WalletErrorProviderNotFound)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newWalletError(err.Error(), goerrors.CategoryBadInput, WalletErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureWalletErrorEnvelope(mapped)
}

func newWalletError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureWalletErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureWalletErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = walletHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultWalletTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultWalletTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return WalletErrorBadInput
	case goerrors.CategoryNotFound:
		return WalletErrorProviderNotFound
	case goerrors.CategoryConflict:
		return WalletErrorAlreadyConnected
	default:
		return WalletErrorInternal
	}
}

func walletHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
