package wallet

import (
	"context"
	"math"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/vietddude/tipbot/internal/core/domain"
	"github.com/vietddude/tipbot/internal/core/token"
	"github.com/vietddude/tipbot/internal/infra/ledger"
)

// DefaultFeeBuffer is added to native transfer amounts during the local
// pre-flight balance check, in SOL.
const DefaultFeeBuffer = 0.000005

// Orchestrator resolves wallets and drives transfers against the ledger,
// translating remote failures into the user-facing error taxonomy.
type Orchestrator struct {
	ledger    ledger.Service
	feeBuffer float64
}

// New creates an orchestrator. feeBuffer <= 0 selects the default.
func New(svc ledger.Service, feeBuffer float64) *Orchestrator {
	if feeBuffer <= 0 {
		feeBuffer = DefaultFeeBuffer
	}
	return &Orchestrator{ledger: svc, feeBuffer: feeBuffer}
}

// ValidAddress reports whether addr looks like a base58 Solana address:
// 32-44 characters decoding to a 32-byte public key. Checked locally
// before any network call.
func ValidAddress(addr string) bool {
	if len(addr) < 32 || len(addr) > 44 {
		return false
	}
	decoded, err := base58.Decode(addr)
	return err == nil && len(decoded) == 32
}

// ResolveWallet returns the wallet address for id, or found=false when the
// identity has no wallet yet.
func (o *Orchestrator) ResolveWallet(ctx context.Context, id domain.UserIdentity) (string, bool, error) {
	address, found, err := o.ledger.GetWallet(ctx, id.Platform, id.Handle)
	if err != nil {
		return "", false, o.translate(err)
	}
	return address, found, nil
}

// ResolveOrCreateWallet is idempotent: an existing wallet is returned
// unchanged, otherwise exactly one remote creation call is made.
// created reports whether a new wallet was provisioned.
func (o *Orchestrator) ResolveOrCreateWallet(ctx context.Context, id domain.UserIdentity) (address string, created bool, err error) {
	address, found, err := o.ledger.GetWallet(ctx, id.Platform, id.Handle)
	if err != nil {
		return "", false, o.translate(err)
	}
	if found {
		return address, false, nil
	}

	address, err = o.ledger.GetOrCreateWallet(ctx, id.Platform, id.Handle)
	if err != nil {
		return "", false, o.translate(err)
	}
	return address, true, nil
}

// LinkWallet connects an externally owned address to the identity. The
// address format is validated locally before any remote call.
func (o *Orchestrator) LinkWallet(ctx context.Context, id domain.UserIdentity, address string) error {
	if !ValidAddress(address) {
		return domain.ValidationErrorf("%q is not a valid wallet address.", address)
	}

	linked, err := o.ledger.LinkWallet(ctx, id.Platform, id.Handle, address)
	if err != nil {
		return o.translate(err)
	}
	if !linked {
		return domain.RemoteRejectionErrorf("The wallet service declined to link that address.")
	}
	return nil
}

// Transfer validates and dispatches a transfer. Validation order: sender
// wallet, amount, token. Only the native asset gets a local pre-flight
// balance check; for other tokens the remote service is authoritative.
func (o *Orchestrator) Transfer(ctx context.Context, sender, recipient domain.UserIdentity, amount float64, symbol string) (domain.TransferResult, error) {
	// Senders are never auto-provisioned; only recipients may be.
	senderAddr, found, err := o.ResolveWallet(ctx, sender)
	if err != nil {
		return domain.TransferResult{}, err
	}
	if !found {
		return domain.TransferResult{}, domain.WalletNotFoundErrorf("You don't have a wallet yet. Type register to create one.")
	}

	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return domain.TransferResult{}, domain.ValidationErrorf("The amount must be a positive number.")
	}

	info, ok := token.Lookup(symbol)
	if !ok {
		return domain.TransferResult{}, domain.UnsupportedTokenErrorf(
			"Unknown token %q. Supported tokens: %s.", symbol, strings.Join(token.Supported(), ", "))
	}

	var outcome ledger.TransferOutcome
	if token.IsNative(info.Symbol) {
		balance, err := o.ledger.GetBalance(ctx, senderAddr)
		if err != nil {
			return domain.TransferResult{}, o.translate(err)
		}
		required := amount + o.feeBuffer
		if balance < required {
			return domain.TransferResult{}, domain.InsufficientFundsErrorf(
				"Insufficient balance: you have %.6f SOL but need %.6f SOL (including fees).", balance, required)
		}
		outcome, err = o.ledger.TransferNative(ctx, sender, recipient, amount)
		if err != nil {
			return domain.TransferResult{}, o.translate(err)
		}
	} else {
		outcome, err = o.ledger.TransferToken(ctx, sender, recipient, info.Mint, amount, info.Decimals)
		if err != nil {
			return domain.TransferResult{}, o.translate(err)
		}
	}

	return domain.TransferResult{
		Signature:        outcome.Signature,
		WalletWasCreated: outcome.WalletCreated,
	}, nil
}

// translate maps ledger failures into the fixed user-facing taxonomy.
// Remote insolvency messages are folded into the insufficient-funds
// category so users see one consistent wording.
func (o *Orchestrator) translate(err error) error {
	if ledger.IsTransport(err) {
		return domain.TransportErrorf("The wallet service is unreachable right now. Please try again later.").WithCause(err)
	}
	msg := ledger.Message(err)
	if strings.Contains(strings.ToLower(msg), "insufficient") {
		return domain.InsufficientFundsErrorf("Insufficient balance: %s", msg).WithCause(err)
	}
	return domain.RemoteRejectionErrorf("Transaction failed: %s", msg).WithCause(err)
}
