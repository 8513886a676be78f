package ledger

import (
	"context"

	"github.com/vietddude/tipbot/internal/core/domain"
)

// TokenBalance is one token position held by a wallet.
type TokenBalance struct {
	Symbol string  `json:"symbol"`
	Amount float64 `json:"amount"`
}

// TransferOutcome is the remote result of a transfer.
type TransferOutcome struct {
	Signature     string `json:"signature"`
	WalletCreated bool   `json:"wallet_created"`
}

// TransactionInfo describes a confirmed or failed transaction.
type TransactionInfo struct {
	Status    string `json:"status"`
	FeeUnits  uint64 `json:"fee_units"`
	BlockTime *int64 `json:"block_time,omitempty"`
}

// AccountInfo describes an on-chain account.
type AccountInfo struct {
	BalanceUnits uint64 `json:"balance_units"`
	Owner        string `json:"owner"`
	Executable   bool   `json:"executable"`
}

// NetworkStatus describes the current state of the chain network.
type NetworkStatus struct {
	Health      string `json:"health"`
	Epoch       uint64 `json:"epoch"`
	BlockHeight uint64 `json:"block_height"`
	Slot        uint64 `json:"slot"`
}

// ExportResult is the remote response to a key-export request.
type ExportResult struct {
	Success bool   `json:"success"`
	Secret  string `json:"secret,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Price is a USD quote for one token.
type Price struct {
	USD float64 `json:"usd"`
}

// Service is the remote custodial ledger contract consumed by the bot.
// Every call fails with either a transport-kind or application-kind *Error
// so callers can tell "could not reach service" apart from "service
// reported invalid input".
type Service interface {
	GetWallet(ctx context.Context, platform domain.Platform, handle string) (address string, found bool, err error)
	GetOrCreateWallet(ctx context.Context, platform domain.Platform, handle string) (address string, err error)
	LinkWallet(ctx context.Context, platform domain.Platform, handle, address string) (bool, error)
	GetBalance(ctx context.Context, address string) (float64, error)
	GetTokenBalances(ctx context.Context, address string) ([]TokenBalance, error)
	TransferNative(ctx context.Context, sender, recipient domain.UserIdentity, amount float64) (TransferOutcome, error)
	TransferToken(ctx context.Context, sender, recipient domain.UserIdentity, mint string, amount float64, decimals int) (TransferOutcome, error)
	GetTransaction(ctx context.Context, signature string) (TransactionInfo, error)
	GetAccount(ctx context.Context, address string) (AccountInfo, error)
	GetNetworkStatus(ctx context.Context) (NetworkStatus, error)
	ExportPrivateKey(ctx context.Context, platform domain.Platform, handle string) (ExportResult, error)
	GetPrice(ctx context.Context, symbol string) (price Price, found bool, err error)
}
