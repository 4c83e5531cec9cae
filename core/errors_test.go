package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	evbus "github.com/asaskevich/EventBus"
	goerrors "github.com/goliatone/go-errors"
)

func TestWalletErrorMapperSentinels(t *testing.T) {
	cases := []struct {
		err      error
		category goerrors.Category
		textCode string
		status   int
	}{
		{ErrAlreadyConnected, goerrors.CategoryConflict, WalletErrorAlreadyConnected, http.StatusConflict},
		{ErrChainMismatch, goerrors.CategoryBadInput, WalletErrorChainMismatch, http.StatusBadRequest},
		{ErrProviderNotFound, goerrors.CategoryNotFound, WalletErrorProviderNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		mapped := walletErrorMapper(tc.err)
		if mapped == nil {
			t.Fatalf("expected mapped error for %v", tc.err)
		}
		if mapped.Category != tc.category {
			t.Errorf("%v: expected category %s, got %s", tc.err, tc.category, mapped.Category)
		}
		if mapped.TextCode != tc.textCode {
			t.Errorf("%v: expected text code %s, got %s", tc.err, tc.textCode, mapped.TextCode)
		}
		if mapped.Code != tc.status {
			t.Errorf("%v: expected status %d, got %d", tc.err, tc.status, mapped.Code)
		}
	}
}

func TestWalletErrorMapperKeepsRichErrors(t *testing.T) {
	original := goerrors.New("bad address", goerrors.CategoryBadInput).WithTextCode("CUSTOM_CODE")
	mapped := walletErrorMapper(original)
	if mapped.TextCode != "CUSTOM_CODE" {
		t.Fatalf("mapper must not overwrite explicit text codes, got %s", mapped.TextCode)
	}
	if mapped.Code != http.StatusBadRequest {
		t.Fatalf("mapper should backfill the status code, got %d", mapped.Code)
	}
}

func TestWalletErrorMapperHeuristics(t *testing.T) {
	mapped := walletErrorMapper(fmt.Errorf("connector id is required"))
	if mapped.Category != goerrors.CategoryBadInput || mapped.TextCode != WalletErrorBadInput {
		t.Fatalf("expected bad input mapping, got %+v", mapped)
	}

	mapped = walletErrorMapper(fmt.Errorf("no provider available for session"))
	if mapped.Category != goerrors.CategoryNotFound || mapped.TextCode != WalletErrorProviderNotFound {
		t.Fatalf("expected provider mapping, got %+v", mapped)
	}
}

func TestConnectErrorsCarryMetadata(t *testing.T) {
	bus := evbus.New()
	connector := newFakeConnector(bus, "metamask", 1, testAccountA)

	err := newAlreadyConnectedError(connector)
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected rich error, got %T", err)
	}
	if richErr.Metadata["connector_id"] != "metamask" {
		t.Fatalf("metadata missing connector id: %+v", richErr.Metadata)
	}
	if !errors.Is(err, ErrAlreadyConnected) {
		t.Fatal("wrapped error must keep the sentinel")
	}

	err = newChainMismatchError(Chain{ID: 5, Name: "Chain 5"}, 1)
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected rich error, got %T", err)
	}
	if richErr.Metadata["requested_chain_id"] != uint64(5) || richErr.Metadata["active_chain_id"] != uint64(1) {
		t.Fatalf("chain metadata incomplete: %+v", richErr.Metadata)
	}
}

func TestDefaultWalletTextCodes(t *testing.T) {
	if code := defaultWalletTextCode(goerrors.CategoryValidation); code != WalletErrorBadInput {
		t.Fatalf("expected %s, got %s", WalletErrorBadInput, code)
	}
	if code := defaultWalletTextCode(goerrors.CategoryInternal); code != WalletErrorInternal {
		t.Fatalf("expected %s, got %s", WalletErrorInternal, code)
	}
}
